package commitgraph

import (
	"context"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
)

// CommitNode is the part of a commit the history walk needs.
type CommitNode struct {
	ID         plumbing.Hash
	Parents    []plumbing.Hash
	CommitTime time.Time
}

// BranchResolver resolves local branch names to their tip commits.
type BranchResolver interface {
	ResolveBranch(executionContext context.Context, branchName string) (plumbing.Hash, error)
}

// CommitLoader loads individual commits by identifier.
type CommitLoader interface {
	LoadCommit(executionContext context.Context, commit plumbing.Hash) (CommitNode, error)
}

// Repository combines branch resolution with commit loading.
type Repository interface {
	BranchResolver
	CommitLoader
}
