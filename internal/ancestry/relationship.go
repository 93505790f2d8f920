package ancestry

import (
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"
)

const (
	relationKindSameLabelConstant    = "Same"
	relationKindInrowLabelConstant   = "Inrow"
	relationKindDiffLabelConstant    = "Diff"
	relationKindUnknownLabelConstant = "Unknown"
	sameDescriptionTemplateConstant  = "Same: %s"
	inrowDescriptionTemplateConstant = "Inrow: %s, branch '%s' is ahead"
	diffDescriptionTemplateConstant  = "Diff: %s"
)

// RelationKind discriminates the variants of a Relationship.
type RelationKind int

// Supported relation kinds.
const (
	RelationSame RelationKind = iota + 1
	RelationInrow
	RelationDiff
)

// String returns the label used when rendering the relation kind.
func (kind RelationKind) String() string {
	switch kind {
	case RelationSame:
		return relationKindSameLabelConstant
	case RelationInrow:
		return relationKindInrowLabelConstant
	case RelationDiff:
		return relationKindDiffLabelConstant
	default:
		return relationKindUnknownLabelConstant
	}
}

// Relationship is the outcome of a classification.
//
// Same carries the shared tip. Inrow carries the tip of the lagging branch and
// names the branch that is ahead. Diff carries the first shared commit found
// while walking the base branch history.
type Relationship struct {
	Kind        RelationKind
	Commit      plumbing.Hash
	AheadBranch string
}

// NewSameRelationship reports two branches pointing at the same commit.
func NewSameRelationship(commit plumbing.Hash) Relationship {
	return Relationship{Kind: RelationSame, Commit: commit}
}

// NewInrowRelationship reports that aheadBranch contains commit in its history.
func NewInrowRelationship(commit plumbing.Hash, aheadBranch string) Relationship {
	return Relationship{Kind: RelationInrow, Commit: commit, AheadBranch: aheadBranch}
}

// NewDiffRelationship reports diverged branches sharing commit.
func NewDiffRelationship(commit plumbing.Hash) Relationship {
	return Relationship{Kind: RelationDiff, Commit: commit}
}

// String renders the relationship in its one-line textual form.
func (relationship Relationship) String() string {
	switch relationship.Kind {
	case RelationSame:
		return fmt.Sprintf(sameDescriptionTemplateConstant, relationship.Commit)
	case RelationInrow:
		return fmt.Sprintf(inrowDescriptionTemplateConstant, relationship.Commit, relationship.AheadBranch)
	case RelationDiff:
		return fmt.Sprintf(diffDescriptionTemplateConstant, relationship.Commit)
	default:
		return relationKindUnknownLabelConstant
	}
}
