package commitgraph

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emirpasic/gods/trees/binaryheap"
	"github.com/go-git/go-git/v5/plumbing"
)

const (
	traversalLimitExceededMessageConstant = "history traversal limit exceeded"
	traversalLimitTemplateConstant        = "%w: more than %d commits"
	commitLoadFailureTemplateConstant     = "failed to load commit %s: %w"
)

// ErrTraversalLimitExceeded indicates a walk loaded more commits than allowed.
var ErrTraversalLimitExceeded = errors.New(traversalLimitExceededMessageConstant)

type traversal struct {
	loader      CommitLoader
	maxCommits  int
	loadedCount int
}

func newTraversal(loader CommitLoader, maxCommits int) *traversal {
	return &traversal{loader: loader, maxCommits: maxCommits}
}

func (state *traversal) load(executionContext context.Context, commit plumbing.Hash) (CommitNode, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return CommitNode{}, contextError
	}

	state.loadedCount++
	if state.maxCommits > 0 && state.loadedCount > state.maxCommits {
		return CommitNode{}, fmt.Errorf(traversalLimitTemplateConstant, ErrTraversalLimitExceeded, state.maxCommits)
	}

	node, loadError := state.loader.LoadCommit(executionContext, commit)
	if loadError != nil {
		return CommitNode{}, fmt.Errorf(commitLoadFailureTemplateConstant, commit, loadError)
	}
	return node, nil
}

// collectAncestors gathers every commit reachable from start in breadth-first order.
func (state *traversal) collectAncestors(executionContext context.Context, start plumbing.Hash) (mapset.Set[plumbing.Hash], error) {
	ancestors := mapset.NewThreadUnsafeSet[plumbing.Hash](start)
	pending := []plumbing.Hash{start}

	for len(pending) > 0 {
		current := pending[0]
		pending = pending[1:]

		node, loadError := state.load(executionContext, current)
		if loadError != nil {
			return nil, loadError
		}

		for _, parent := range node.Parents {
			if ancestors.Add(parent) {
				pending = append(pending, parent)
			}
		}
	}

	return ancestors, nil
}

// walk emits the history of start, latest committer time first.
func (state *traversal) walk(executionContext context.Context, start plumbing.Hash, visit func(plumbing.Hash) (bool, error)) error {
	queue := binaryheap.NewWith(compareWalkOrder)
	queued := mapset.NewThreadUnsafeSet[plumbing.Hash](start)

	startNode, loadError := state.load(executionContext, start)
	if loadError != nil {
		return loadError
	}
	queue.Push(startNode)

	for !queue.Empty() {
		value, _ := queue.Pop()
		node := value.(CommitNode)

		proceed, visitError := visit(node.ID)
		if visitError != nil {
			return visitError
		}
		if !proceed {
			return nil
		}

		for _, parent := range node.Parents {
			if !queued.Add(parent) {
				continue
			}
			parentNode, parentLoadError := state.load(executionContext, parent)
			if parentLoadError != nil {
				return parentLoadError
			}
			queue.Push(parentNode)
		}
	}

	return nil
}

// compareWalkOrder sorts newer commits first and breaks ties by identifier.
func compareWalkOrder(first interface{}, second interface{}) int {
	firstNode := first.(CommitNode)
	secondNode := second.(CommitNode)

	switch {
	case firstNode.CommitTime.After(secondNode.CommitTime):
		return -1
	case firstNode.CommitTime.Before(secondNode.CommitTime):
		return 1
	default:
		return bytes.Compare(firstNode.ID[:], secondNode.ID[:])
	}
}
