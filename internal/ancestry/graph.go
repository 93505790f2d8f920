package ancestry

import (
	"context"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/go-git/go-git/v5/plumbing"
)

// CommitVisitor receives commits during a walk and returns false to stop it.
type CommitVisitor func(commit plumbing.Hash) (bool, error)

// CommitGraph exposes the read-only repository queries needed by the classifier.
type CommitGraph interface {
	// ResolveBranch returns the tip commit of a local branch or a *BranchNotFoundError.
	ResolveBranch(executionContext context.Context, branchName string) (plumbing.Hash, error)
	// AncestorSet returns every commit reachable from start, start included.
	AncestorSet(executionContext context.Context, start plumbing.Hash) (mapset.Set[plumbing.Hash], error)
	// Walk visits the history of start in a fixed, reproducible order.
	Walk(executionContext context.Context, start plumbing.Hash, visitor CommitVisitor) error
}
