// Package testsupport builds on-disk git repositories and command stubs for tests.
package testsupport

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"github.com/temirov/branchrow/internal/execshell"
)

const (
	fixtureAuthorNameConstant     = "Branch Row"
	fixtureAuthorEmailConstant    = "branchrow@example.com"
	fixtureCommitMessageTemplate  = "commit %d\n"
	missingStubResponseTemplate   = "no stubbed response for git %v in %s"
	stubArgumentSeparatorConstant = "\x00"
)

// FixtureEpoch is the committer time of the first fixture commit.
var FixtureEpoch = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

// RepositoryFixture writes commits and branches straight into a go-git repository.
type RepositoryFixture struct {
	Path        string
	Repository  *git.Repository
	testing     testing.TB
	commitCount int
}

// NewRepositoryFixture initialises a non-bare repository at repositoryPath.
func NewRepositoryFixture(testInstance testing.TB, repositoryPath string) *RepositoryFixture {
	testInstance.Helper()
	repository, initError := git.PlainInit(repositoryPath, false)
	require.NoError(testInstance, initError)
	return &RepositoryFixture{Path: repositoryPath, Repository: repository, testing: testInstance}
}

// Commit stores an empty-tree commit committed offset after FixtureEpoch.
func (fixture *RepositoryFixture) Commit(offset time.Duration, parents ...plumbing.Hash) plumbing.Hash {
	fixture.testing.Helper()
	fixture.commitCount++

	treeObject := fixture.Repository.Storer.NewEncodedObject()
	require.NoError(fixture.testing, (&object.Tree{}).Encode(treeObject))
	treeHash, treeError := fixture.Repository.Storer.SetEncodedObject(treeObject)
	require.NoError(fixture.testing, treeError)

	signature := object.Signature{Name: fixtureAuthorNameConstant, Email: fixtureAuthorEmailConstant, When: FixtureEpoch.Add(offset)}
	commit := &object.Commit{
		Author:       signature,
		Committer:    signature,
		Message:      fmt.Sprintf(fixtureCommitMessageTemplate, fixture.commitCount),
		TreeHash:     treeHash,
		ParentHashes: append([]plumbing.Hash(nil), parents...),
	}
	commitObject := fixture.Repository.Storer.NewEncodedObject()
	require.NoError(fixture.testing, commit.Encode(commitObject))
	commitHash, commitError := fixture.Repository.Storer.SetEncodedObject(commitObject)
	require.NoError(fixture.testing, commitError)
	return commitHash
}

// Branch points refs/heads/branchName at commit.
func (fixture *RepositoryFixture) Branch(branchName string, commit plumbing.Hash) {
	fixture.testing.Helper()
	reference := plumbing.NewHashReference(plumbing.NewBranchReferenceName(branchName), commit)
	require.NoError(fixture.testing, fixture.Repository.Storer.SetReference(reference))
}

// DivergedRepository builds master and feature sharing a single base commit.
// It returns the base, master and feature commits.
func DivergedRepository(testInstance testing.TB, repositoryPath string) (plumbing.Hash, plumbing.Hash, plumbing.Hash) {
	testInstance.Helper()
	fixture := NewRepositoryFixture(testInstance, repositoryPath)
	baseCommit := fixture.Commit(0)
	masterCommit := fixture.Commit(time.Hour, baseCommit)
	featureCommit := fixture.Commit(2*time.Hour, baseCommit)
	fixture.Branch("master", masterCommit)
	fixture.Branch("feature", featureCommit)
	return baseCommit, masterCommit, featureCommit
}

// GitExecutorStub returns canned results keyed by argument list.
type GitExecutorStub struct {
	Responses        map[string]execshell.ExecutionResult
	Errors           map[string]error
	ExecutedCommands []execshell.CommandDetails
}

// Respond registers output for the given arguments.
func (executor *GitExecutorStub) Respond(standardOutput string, arguments ...string) {
	if executor.Responses == nil {
		executor.Responses = make(map[string]execshell.ExecutionResult)
	}
	executor.Responses[stubKey(arguments)] = execshell.ExecutionResult{StandardOutput: standardOutput}
}

// Fail registers an error for the given arguments.
func (executor *GitExecutorStub) Fail(failure error, arguments ...string) {
	if executor.Errors == nil {
		executor.Errors = make(map[string]error)
	}
	executor.Errors[stubKey(arguments)] = failure
}

// ExecuteGit records details and returns the registered outcome.
func (executor *GitExecutorStub) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.ExecutedCommands = append(executor.ExecutedCommands, details)
	key := stubKey(details.Arguments)
	if failure, exists := executor.Errors[key]; exists {
		return execshell.ExecutionResult{}, failure
	}
	if response, exists := executor.Responses[key]; exists {
		return response, nil
	}
	return execshell.ExecutionResult{}, fmt.Errorf(missingStubResponseTemplate, details.Arguments, details.WorkingDirectory)
}

func stubKey(arguments []string) string {
	return strings.Join(arguments, stubArgumentSeparatorConstant)
}
