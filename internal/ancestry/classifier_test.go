package ancestry_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/branchrow/internal/ancestry"
	"github.com/temirov/branchrow/internal/commitgraph"
)

const (
	testBaseBranchNameConstant    = "master"
	testTargetBranchNameConstant  = "feature"
	testMissingBranchNameConstant = "missing"
)

var testEpoch = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

type commitDefinition struct {
	sequence int
	minutes  int
	parents  []int
}

func testCommitID(sequence int) plumbing.Hash {
	return plumbing.NewHash(fmt.Sprintf("%040x", sequence))
}

func buildGraph(testInstance *testing.T, definitions []commitDefinition, branches map[string]int) *commitgraph.Graph {
	testInstance.Helper()

	repository := commitgraph.NewMemoryRepository()
	for _, definition := range definitions {
		parents := make([]plumbing.Hash, 0, len(definition.parents))
		for _, parent := range definition.parents {
			parents = append(parents, testCommitID(parent))
		}
		repository.AddCommit(testCommitID(definition.sequence), testEpoch.Add(time.Duration(definition.minutes)*time.Minute), parents...)
	}
	for branchName, sequence := range branches {
		repository.SetBranch(branchName, testCommitID(sequence))
	}

	graph, graphError := commitgraph.NewGraph(repository, 0)
	require.NoError(testInstance, graphError)
	return graph
}

func TestClassifierRelationships(testInstance *testing.T) {
	linearHistory := []commitDefinition{
		{sequence: 1, minutes: 0},
		{sequence: 2, minutes: 1, parents: []int{1}},
		{sequence: 3, minutes: 2, parents: []int{2}},
	}

	// 4 and 5 share 2 only; 3 sits on the base side.
	divergedHistory := []commitDefinition{
		{sequence: 1, minutes: 0},
		{sequence: 2, minutes: 1, parents: []int{1}},
		{sequence: 3, minutes: 8, parents: []int{1}},
		{sequence: 4, minutes: 10, parents: []int{2, 3}},
		{sequence: 5, minutes: 9, parents: []int{2}},
	}

	// 4 and 5 both merge 2 and 3, which share a committer time.
	tiedHistory := []commitDefinition{
		{sequence: 1, minutes: 0},
		{sequence: 2, minutes: 5, parents: []int{1}},
		{sequence: 3, minutes: 5, parents: []int{1}},
		{sequence: 4, minutes: 10, parents: []int{3, 2}},
		{sequence: 5, minutes: 9, parents: []int{2, 3}},
	}

	// 2 carries a skewed clock: the walk from 4 reaches 1 through 3 before it reaches 2.
	skewedHistory := []commitDefinition{
		{sequence: 1, minutes: 5},
		{sequence: 2, minutes: 1, parents: []int{1}},
		{sequence: 3, minutes: 6, parents: []int{1}},
		{sequence: 4, minutes: 10, parents: []int{2, 3}},
		{sequence: 5, minutes: 9, parents: []int{2}},
	}

	testCases := []struct {
		name                 string
		definitions          []commitDefinition
		branches             map[string]int
		expectedRelationship ancestry.Relationship
		expectedDescription  string
	}{
		{
			name:                 "same_tip",
			definitions:          linearHistory,
			branches:             map[string]int{testBaseBranchNameConstant: 3, testTargetBranchNameConstant: 3},
			expectedRelationship: ancestry.NewSameRelationship(testCommitID(3)),
			expectedDescription:  "Same: 0000000000000000000000000000000000000003",
		},
		{
			name:                 "base_ahead",
			definitions:          linearHistory,
			branches:             map[string]int{testBaseBranchNameConstant: 3, testTargetBranchNameConstant: 1},
			expectedRelationship: ancestry.NewInrowRelationship(testCommitID(1), testBaseBranchNameConstant),
			expectedDescription:  "Inrow: 0000000000000000000000000000000000000001, branch 'master' is ahead",
		},
		{
			name:                 "target_ahead",
			definitions:          linearHistory,
			branches:             map[string]int{testBaseBranchNameConstant: 2, testTargetBranchNameConstant: 3},
			expectedRelationship: ancestry.NewInrowRelationship(testCommitID(2), testTargetBranchNameConstant),
			expectedDescription:  "Inrow: 0000000000000000000000000000000000000002, branch 'feature' is ahead",
		},
		{
			name:                 "diverged",
			definitions:          divergedHistory,
			branches:             map[string]int{testBaseBranchNameConstant: 4, testTargetBranchNameConstant: 5},
			expectedRelationship: ancestry.NewDiffRelationship(testCommitID(2)),
			expectedDescription:  "Diff: 0000000000000000000000000000000000000002",
		},
		{
			name:                 "diverged_tie_broken_by_identifier",
			definitions:          tiedHistory,
			branches:             map[string]int{testBaseBranchNameConstant: 4, testTargetBranchNameConstant: 5},
			expectedRelationship: ancestry.NewDiffRelationship(testCommitID(2)),
			expectedDescription:  "Diff: 0000000000000000000000000000000000000002",
		},
		{
			name:                 "diverged_first_match_in_walk_order",
			definitions:          skewedHistory,
			branches:             map[string]int{testBaseBranchNameConstant: 4, testTargetBranchNameConstant: 5},
			expectedRelationship: ancestry.NewDiffRelationship(testCommitID(1)),
			expectedDescription:  "Diff: 0000000000000000000000000000000000000001",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			graph := buildGraph(testInstance, testCase.definitions, testCase.branches)
			classifier := ancestry.NewClassifier(zap.NewNop())

			relationship, classifyError := classifier.Classify(context.Background(), graph, testBaseBranchNameConstant, testTargetBranchNameConstant)
			require.NoError(testInstance, classifyError)
			require.Equal(testInstance, testCase.expectedRelationship, relationship)
			require.Equal(testInstance, testCase.expectedDescription, relationship.String())
		})
	}
}

func TestClassifierDiffCommitIsSharedByBothTips(testInstance *testing.T) {
	graph := buildGraph(testInstance, []commitDefinition{
		{sequence: 1, minutes: 0},
		{sequence: 2, minutes: 1, parents: []int{1}},
		{sequence: 3, minutes: 2, parents: []int{2}},
		{sequence: 4, minutes: 3, parents: []int{3}},
		{sequence: 5, minutes: 4, parents: []int{2}},
		{sequence: 6, minutes: 5, parents: []int{5}},
	}, map[string]int{testBaseBranchNameConstant: 4, testTargetBranchNameConstant: 6})

	relationship, classifyError := ancestry.NewClassifier(nil).Classify(context.Background(), graph, testBaseBranchNameConstant, testTargetBranchNameConstant)
	require.NoError(testInstance, classifyError)
	require.Equal(testInstance, ancestry.RelationDiff, relationship.Kind)

	baseAncestors, baseError := graph.AncestorSet(context.Background(), testCommitID(4))
	require.NoError(testInstance, baseError)
	targetAncestors, targetError := graph.AncestorSet(context.Background(), testCommitID(6))
	require.NoError(testInstance, targetError)
	require.True(testInstance, baseAncestors.Contains(relationship.Commit))
	require.True(testInstance, targetAncestors.Contains(relationship.Commit))
	require.Equal(testInstance, testCommitID(2), relationship.Commit)
}

func TestClassifierReportsMissingBranch(testInstance *testing.T) {
	graph := buildGraph(testInstance, []commitDefinition{{sequence: 1}}, map[string]int{testBaseBranchNameConstant: 1})
	classifier := ancestry.NewClassifier(zap.NewNop())

	testCases := []struct {
		name          string
		baseBranch    string
		targetBranch  string
		missingBranch string
	}{
		{name: "missing_target", baseBranch: testBaseBranchNameConstant, targetBranch: testMissingBranchNameConstant, missingBranch: testMissingBranchNameConstant},
		{name: "missing_base", baseBranch: testMissingBranchNameConstant, targetBranch: testBaseBranchNameConstant, missingBranch: testMissingBranchNameConstant},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			relationship, classifyError := classifier.Classify(context.Background(), graph, testCase.baseBranch, testCase.targetBranch)
			require.Error(testInstance, classifyError)
			require.Equal(testInstance, ancestry.Relationship{}, relationship)

			var branchNotFoundError *ancestry.BranchNotFoundError
			require.ErrorAs(testInstance, classifyError, &branchNotFoundError)
			require.Equal(testInstance, testCase.missingBranch, branchNotFoundError.Name)
		})
	}
}

func TestClassifierReportsDisjointHistories(testInstance *testing.T) {
	graph := buildGraph(testInstance, []commitDefinition{
		{sequence: 1, minutes: 0},
		{sequence: 2, minutes: 1, parents: []int{1}},
		{sequence: 3, minutes: 0},
		{sequence: 4, minutes: 2, parents: []int{3}},
	}, map[string]int{testBaseBranchNameConstant: 2, testTargetBranchNameConstant: 4})

	_, classifyError := ancestry.NewClassifier(zap.NewNop()).Classify(context.Background(), graph, testBaseBranchNameConstant, testTargetBranchNameConstant)
	require.ErrorIs(testInstance, classifyError, ancestry.ErrNoCommonAncestor)
}

func TestClassifierValidatesInputs(testInstance *testing.T) {
	classifier := ancestry.NewClassifier(zap.NewNop())
	graph := buildGraph(testInstance, []commitDefinition{{sequence: 1}}, map[string]int{testBaseBranchNameConstant: 1})

	_, classifyError := classifier.Classify(context.Background(), nil, testBaseBranchNameConstant, testTargetBranchNameConstant)
	require.ErrorIs(testInstance, classifyError, ancestry.ErrCommitGraphNotConfigured)

	_, classifyError = classifier.Classify(context.Background(), graph, testBaseBranchNameConstant, "  ")
	require.ErrorIs(testInstance, classifyError, ancestry.ErrBranchNameRequired)
}

type failingCommitGraph struct {
	resolveError error
	setError     error
	tips         map[string]plumbing.Hash
}

func (graph failingCommitGraph) ResolveBranch(_ context.Context, branchName string) (plumbing.Hash, error) {
	if graph.resolveError != nil {
		return plumbing.ZeroHash, graph.resolveError
	}
	return graph.tips[branchName], nil
}

func (graph failingCommitGraph) AncestorSet(context.Context, plumbing.Hash) (mapset.Set[plumbing.Hash], error) {
	return nil, graph.setError
}

func (graph failingCommitGraph) Walk(context.Context, plumbing.Hash, ancestry.CommitVisitor) error {
	return nil
}

func TestClassifierWrapsGraphFailures(testInstance *testing.T) {
	lookupFailure := errors.New("reference store unavailable")
	_, classifyError := ancestry.NewClassifier(zap.NewNop()).Classify(context.Background(), failingCommitGraph{resolveError: lookupFailure}, testBaseBranchNameConstant, testTargetBranchNameConstant)
	require.ErrorIs(testInstance, classifyError, lookupFailure)
	require.ErrorContains(testInstance, classifyError, "failed to resolve branch \"master\"")

	setFailure := errors.New("object store unavailable")
	_, classifyError = ancestry.NewClassifier(zap.NewNop()).Classify(context.Background(), failingCommitGraph{
		setError: setFailure,
		tips: map[string]plumbing.Hash{
			testBaseBranchNameConstant:   testCommitID(1),
			testTargetBranchNameConstant: testCommitID(2),
		},
	}, testBaseBranchNameConstant, testTargetBranchNameConstant)
	require.ErrorIs(testInstance, classifyError, setFailure)
}

func TestClassifierLogsClassification(testInstance *testing.T) {
	observerCore, observedLogs := observer.New(zap.DebugLevel)
	graph := buildGraph(testInstance, []commitDefinition{{sequence: 1}}, map[string]int{testBaseBranchNameConstant: 1, testTargetBranchNameConstant: 1})

	_, classifyError := ancestry.NewClassifier(zap.New(observerCore)).Classify(context.Background(), graph, testBaseBranchNameConstant, testTargetBranchNameConstant)
	require.NoError(testInstance, classifyError)

	classificationLogs := observedLogs.FilterMessage("branches classified").All()
	require.Len(testInstance, classificationLogs, 1)
	require.Equal(testInstance, "Same", classificationLogs[0].ContextMap()["relation"])
}
