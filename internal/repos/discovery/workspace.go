package discovery

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	workspacePathMissingMessageConstant = "workspace path must be provided"
	workspaceListingFailureTemplate     = "failed to list workspace %s: %w"
)

// ErrWorkspacePathRequired indicates an empty workspace path.
var ErrWorkspacePathRequired = errors.New(workspacePathMissingMessageConstant)

// WorkspaceRepositoryLister enumerates candidate repository directories.
type WorkspaceRepositoryLister struct {
	fileSystem afero.Fs
}

// NewWorkspaceRepositoryLister constructs a lister over fileSystem; nil selects the OS filesystem.
func NewWorkspaceRepositoryLister(fileSystem afero.Fs) *WorkspaceRepositoryLister {
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	return &WorkspaceRepositoryLister{fileSystem: fileSystem}
}

// ListRepositories returns the immediate subdirectories of workspacePath in name order.
// Entries are not checked for git metadata; symbolic links to directories are included.
func (lister *WorkspaceRepositoryLister) ListRepositories(workspacePath string) ([]string, error) {
	if len(strings.TrimSpace(workspacePath)) == 0 {
		return nil, ErrWorkspacePathRequired
	}

	directoryEntries, readError := afero.ReadDir(lister.fileSystem, workspacePath)
	if readError != nil {
		return nil, fmt.Errorf(workspaceListingFailureTemplate, workspacePath, readError)
	}

	repositoryPaths := make([]string, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		candidatePath := filepath.Join(workspacePath, directoryEntry.Name())
		candidateInfo, statError := lister.fileSystem.Stat(candidatePath)
		if statError != nil || !candidateInfo.IsDir() {
			continue
		}
		repositoryPaths = append(repositoryPaths, candidatePath)
	}
	return repositoryPaths, nil
}
