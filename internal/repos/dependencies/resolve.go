// Package dependencies supplies default collaborators for commands that accept optional overrides.
package dependencies

import (
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/branchrow/internal/execshell"
	"github.com/temirov/branchrow/internal/gitrepo"
	"github.com/temirov/branchrow/internal/repos/discovery"
)

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing afero.Fs) afero.Fs {
	if existing != nil {
		return existing
	}
	return afero.NewOsFs()
}

// ResolveWorkspaceLister returns a workspace lister reading from fileSystem.
func ResolveWorkspaceLister(fileSystem afero.Fs) *discovery.WorkspaceRepositoryLister {
	return discovery.NewWorkspaceRepositoryLister(ResolveFileSystem(fileSystem))
}

// ResolveGitExecutor returns the provided executor or constructs a shell-backed default.
func ResolveGitExecutor(existing gitrepo.GitExecutor, logger *zap.Logger) (gitrepo.GitExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	shellExecutor, creationError := execshell.NewShellExecutor(logger, commandRunner)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

// ResolveRepositoryOpener builds an opener for backend. The git executor is only resolved for the git backend.
func ResolveRepositoryOpener(backend gitrepo.Backend, existingExecutor gitrepo.GitExecutor, commitCacheSize int, logger *zap.Logger) (*gitrepo.Opener, error) {
	openerOptions := gitrepo.OpenerOptions{
		Backend:         backend,
		CommitCacheSize: commitCacheSize,
		Logger:          logger,
	}

	if backend == gitrepo.BackendGit {
		gitExecutor, executorError := ResolveGitExecutor(existingExecutor, logger)
		if executorError != nil {
			return nil, executorError
		}
		openerOptions.GitExecutor = gitExecutor
	}

	return gitrepo.NewOpener(openerOptions)
}
