package ancestry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"go.uber.org/zap"
)

const (
	branchResolutionFailureTemplateConstant = "failed to resolve branch %q: %w"
	ancestorSetFailureTemplateConstant      = "failed to collect history of %q: %w"
	historyWalkFailureTemplateConstant      = "failed to walk history of %q: %w"
	tipsResolvedMessageConstant             = "branch tips resolved"
	classificationMessageConstant           = "branches classified"
	ancestorSetCollectedMessageConstant     = "ancestor set collected"
	logFieldBaseBranchConstant              = "base_branch"
	logFieldTargetBranchConstant            = "target_branch"
	logFieldBaseTipConstant                 = "base_tip"
	logFieldTargetTipConstant               = "target_tip"
	logFieldBranchConstant                  = "branch"
	logFieldAncestorCountConstant           = "ancestor_count"
	logFieldRelationConstant                = "relation"
	logFieldCommitConstant                  = "commit"
)

// Classifier determines the relationship between two branches.
type Classifier struct {
	logger *zap.Logger
}

// NewClassifier constructs a Classifier that reports diagnostics to logger.
func NewClassifier(logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{logger: logger}
}

// Classify compares baseBranch with targetBranch.
//
// When the target tip is in the base history the base branch is reported as
// ahead, and the other way round. Diverged branches are reported with the first
// commit of the base walk that also belongs to the target history.
func (classifier *Classifier) Classify(executionContext context.Context, graph CommitGraph, baseBranch string, targetBranch string) (Relationship, error) {
	if graph == nil {
		return Relationship{}, ErrCommitGraphNotConfigured
	}

	trimmedBaseBranch := strings.TrimSpace(baseBranch)
	trimmedTargetBranch := strings.TrimSpace(targetBranch)
	if len(trimmedBaseBranch) == 0 || len(trimmedTargetBranch) == 0 {
		return Relationship{}, ErrBranchNameRequired
	}

	baseTip, resolveError := classifier.resolve(executionContext, graph, trimmedBaseBranch)
	if resolveError != nil {
		return Relationship{}, resolveError
	}
	targetTip, resolveError := classifier.resolve(executionContext, graph, trimmedTargetBranch)
	if resolveError != nil {
		return Relationship{}, resolveError
	}

	classifier.logger.Debug(
		tipsResolvedMessageConstant,
		zap.String(logFieldBaseBranchConstant, trimmedBaseBranch),
		zap.String(logFieldTargetBranchConstant, trimmedTargetBranch),
		zap.String(logFieldBaseTipConstant, baseTip.String()),
		zap.String(logFieldTargetTipConstant, targetTip.String()),
	)

	relationship, classificationError := classifier.classifyTips(executionContext, graph, trimmedBaseBranch, baseTip, trimmedTargetBranch, targetTip)
	if classificationError != nil {
		return Relationship{}, classificationError
	}

	classifier.logger.Debug(
		classificationMessageConstant,
		zap.String(logFieldRelationConstant, relationship.Kind.String()),
		zap.String(logFieldCommitConstant, relationship.Commit.String()),
	)

	return relationship, nil
}

func (classifier *Classifier) classifyTips(executionContext context.Context, graph CommitGraph, baseBranch string, baseTip plumbing.Hash, targetBranch string, targetTip plumbing.Hash) (Relationship, error) {
	if baseTip == targetTip {
		return NewSameRelationship(baseTip), nil
	}

	baseAncestors, baseAncestorsError := graph.AncestorSet(executionContext, baseTip)
	if baseAncestorsError != nil {
		return Relationship{}, fmt.Errorf(ancestorSetFailureTemplateConstant, baseBranch, baseAncestorsError)
	}
	classifier.logAncestorSet(baseBranch, baseAncestors.Cardinality())
	if baseAncestors.Contains(targetTip) {
		return NewInrowRelationship(targetTip, baseBranch), nil
	}

	targetAncestors, targetAncestorsError := graph.AncestorSet(executionContext, targetTip)
	if targetAncestorsError != nil {
		return Relationship{}, fmt.Errorf(ancestorSetFailureTemplateConstant, targetBranch, targetAncestorsError)
	}
	classifier.logAncestorSet(targetBranch, targetAncestors.Cardinality())
	if targetAncestors.Contains(baseTip) {
		return NewInrowRelationship(baseTip, targetBranch), nil
	}

	var sharedCommit plumbing.Hash
	found := false
	walkError := graph.Walk(executionContext, baseTip, func(commit plumbing.Hash) (bool, error) {
		if targetAncestors.Contains(commit) {
			sharedCommit = commit
			found = true
			return false, nil
		}
		return true, nil
	})
	if walkError != nil {
		return Relationship{}, fmt.Errorf(historyWalkFailureTemplateConstant, baseBranch, walkError)
	}
	if !found {
		return Relationship{}, ErrNoCommonAncestor
	}

	return NewDiffRelationship(sharedCommit), nil
}

func (classifier *Classifier) resolve(executionContext context.Context, graph CommitGraph, branchName string) (plumbing.Hash, error) {
	tip, resolveError := graph.ResolveBranch(executionContext, branchName)
	if resolveError == nil {
		return tip, nil
	}
	var branchNotFoundError *BranchNotFoundError
	if errors.As(resolveError, &branchNotFoundError) {
		return plumbing.ZeroHash, resolveError
	}
	return plumbing.ZeroHash, fmt.Errorf(branchResolutionFailureTemplateConstant, branchName, resolveError)
}

func (classifier *Classifier) logAncestorSet(branchName string, ancestorCount int) {
	classifier.logger.Debug(
		ancestorSetCollectedMessageConstant,
		zap.String(logFieldBranchConstant, branchName),
		zap.Int(logFieldAncestorCountConstant, ancestorCount),
	)
}
