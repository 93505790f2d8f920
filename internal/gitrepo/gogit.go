package gitrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/temirov/branchrow/internal/ancestry"
	"github.com/temirov/branchrow/internal/commitgraph"
)

// GoGitRepository reads branches and commits through go-git.
type GoGitRepository struct {
	path       string
	repository *git.Repository
}

// OpenGoGitRepository opens the repository rooted at repositoryPath.
func OpenGoGitRepository(repositoryPath string) (*GoGitRepository, error) {
	repository, openError := git.PlainOpenWithOptions(repositoryPath, &git.PlainOpenOptions{DetectDotGit: false})
	if openError != nil {
		return nil, openError
	}
	return &GoGitRepository{path: repositoryPath, repository: repository}, nil
}

// Path returns the directory the repository was opened from.
func (repository *GoGitRepository) Path() string {
	return repository.path
}

// ResolveBranch returns the tip of the local branch branchName.
func (repository *GoGitRepository) ResolveBranch(executionContext context.Context, branchName string) (plumbing.Hash, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return plumbing.ZeroHash, contextError
	}

	reference, referenceError := repository.repository.Reference(plumbing.NewBranchReferenceName(branchName), true)
	if referenceError != nil {
		if errors.Is(referenceError, plumbing.ErrReferenceNotFound) {
			return plumbing.ZeroHash, &ancestry.BranchNotFoundError{Name: branchName}
		}
		return plumbing.ZeroHash, fmt.Errorf(branchResolutionFailureTemplateConstant, branchName, referenceError)
	}
	return reference.Hash(), nil
}

// LoadCommit reads a commit object and keeps its parents and committer time.
func (repository *GoGitRepository) LoadCommit(executionContext context.Context, commit plumbing.Hash) (commitgraph.CommitNode, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return commitgraph.CommitNode{}, contextError
	}

	commitObject, commitError := repository.repository.CommitObject(commit)
	if commitError != nil {
		return commitgraph.CommitNode{}, fmt.Errorf(commitLoadFailureTemplateConstant, commit, commitError)
	}
	return commitgraph.CommitNode{
		ID:         commitObject.Hash,
		Parents:    append([]plumbing.Hash(nil), commitObject.ParentHashes...),
		CommitTime: commitObject.Committer.When,
	}, nil
}
