// Package commitgraph walks commit histories in a reproducible order.
//
// Repositories only need to resolve branch names and load single commits; Graph
// builds ancestor sets and ordered history walks on top of them and satisfies
// ancestry.CommitGraph. Walks pop the commit with the latest committer time
// first and break ties by ascending commit identifier, which mirrors the default
// reverse-chronological revision walk of git.
package commitgraph
