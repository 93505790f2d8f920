package commitgraph

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/temirov/branchrow/internal/ancestry"
)

const commitNotFoundTemplateConstant = "%w: %s"

// ErrCommitNotFound indicates a commit identifier absent from a MemoryRepository.
var ErrCommitNotFound = errors.New("commit not found")

// MemoryRepository holds a hand-built commit graph.
type MemoryRepository struct {
	mutex    sync.RWMutex
	branches map[string]plumbing.Hash
	commits  map[plumbing.Hash]CommitNode
}

// NewMemoryRepository constructs an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		branches: make(map[string]plumbing.Hash),
		commits:  make(map[plumbing.Hash]CommitNode),
	}
}

// AddCommit records a commit with the provided parents and committer time.
func (repository *MemoryRepository) AddCommit(commit plumbing.Hash, commitTime time.Time, parents ...plumbing.Hash) {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()

	repository.commits[commit] = CommitNode{
		ID:         commit,
		Parents:    append([]plumbing.Hash(nil), parents...),
		CommitTime: commitTime,
	}
}

// SetBranch points branchName at commit.
func (repository *MemoryRepository) SetBranch(branchName string, commit plumbing.Hash) {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()

	repository.branches[branchName] = commit
}

// ResolveBranch returns the tip of branchName.
func (repository *MemoryRepository) ResolveBranch(_ context.Context, branchName string) (plumbing.Hash, error) {
	repository.mutex.RLock()
	defer repository.mutex.RUnlock()

	tip, exists := repository.branches[branchName]
	if !exists {
		return plumbing.ZeroHash, &ancestry.BranchNotFoundError{Name: branchName}
	}
	return tip, nil
}

// LoadCommit returns the recorded commit.
func (repository *MemoryRepository) LoadCommit(_ context.Context, commit plumbing.Hash) (CommitNode, error) {
	repository.mutex.RLock()
	defer repository.mutex.RUnlock()

	node, exists := repository.commits[commit]
	if !exists {
		return CommitNode{}, fmt.Errorf(commitNotFoundTemplateConstant, ErrCommitNotFound, commit)
	}
	return node, nil
}
