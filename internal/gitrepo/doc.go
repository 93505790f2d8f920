// Package gitrepo opens git repositories as read-only commit graphs.
//
// Two backends are available. GoGitRepository reads the object database
// in-process through go-git and is the default. CLIRepository shells out to
// the git executable and caches parsed commits in an LRU cache. Opener selects
// a backend by name and reports open failures as RepositoryOpenError.
package gitrepo
