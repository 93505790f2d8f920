package ancestry

import (
	"errors"
	"fmt"
)

const (
	branchNotFoundTemplateConstant          = "branch %q not found"
	branchNotFoundWithCauseTemplateConstant = "branch %q not found: %v"
	noCommonAncestorMessageConstant         = "no common commit"
	branchNameRequiredMessageConstant       = "branch name must be provided"
	commitGraphMissingMessageConstant       = "commit graph not configured"
)

// ErrNoCommonAncestor indicates the two histories share no commit.
var ErrNoCommonAncestor = errors.New(noCommonAncestorMessageConstant)

// ErrBranchNameRequired indicates an empty branch name was supplied.
var ErrBranchNameRequired = errors.New(branchNameRequiredMessageConstant)

// ErrCommitGraphNotConfigured indicates Classify was called without a graph.
var ErrCommitGraphNotConfigured = errors.New(commitGraphMissingMessageConstant)

// BranchNotFoundError reports a branch name that does not resolve to a local branch.
type BranchNotFoundError struct {
	Name  string
	Cause error
}

// Error describes the missing branch.
func (branchError *BranchNotFoundError) Error() string {
	if branchError.Cause != nil {
		return fmt.Sprintf(branchNotFoundWithCauseTemplateConstant, branchError.Name, branchError.Cause)
	}
	return fmt.Sprintf(branchNotFoundTemplateConstant, branchError.Name)
}

// Unwrap exposes the underlying lookup failure.
func (branchError *BranchNotFoundError) Unwrap() error {
	return branchError.Cause
}
