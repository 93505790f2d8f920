package commitgraph

import (
	"context"
	"errors"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/temirov/branchrow/internal/ancestry"
)

const repositoryMissingMessageConstant = "repository not configured"

// ErrRepositoryNotConfigured indicates a Graph was built without a repository.
var ErrRepositoryNotConfigured = errors.New(repositoryMissingMessageConstant)

// Graph answers ancestry queries against a Repository.
type Graph struct {
	repository Repository
	maxCommits int
}

// NewGraph wraps repository. A positive maxCommits bounds every single walk or
// ancestor collection; zero leaves them unbounded.
func NewGraph(repository Repository, maxCommits int) (*Graph, error) {
	if repository == nil {
		return nil, ErrRepositoryNotConfigured
	}
	if maxCommits < 0 {
		maxCommits = 0
	}
	return &Graph{repository: repository, maxCommits: maxCommits}, nil
}

// ResolveBranch delegates to the repository.
func (graph *Graph) ResolveBranch(executionContext context.Context, branchName string) (plumbing.Hash, error) {
	return graph.repository.ResolveBranch(executionContext, branchName)
}

// AncestorSet returns every commit reachable from start, start included.
func (graph *Graph) AncestorSet(executionContext context.Context, start plumbing.Hash) (mapset.Set[plumbing.Hash], error) {
	return newTraversal(graph.repository, graph.maxCommits).collectAncestors(executionContext, start)
}

// Walk visits the history of start, latest committer time first, ties broken by
// ascending identifier. Every commit is visited once.
func (graph *Graph) Walk(executionContext context.Context, start plumbing.Hash, visitor ancestry.CommitVisitor) error {
	return newTraversal(graph.repository, graph.maxCommits).walk(executionContext, start, visitor)
}
