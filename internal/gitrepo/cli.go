package gitrepo

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/temirov/branchrow/internal/ancestry"
	"github.com/temirov/branchrow/internal/commitgraph"
	"github.com/temirov/branchrow/internal/execshell"
)

const (
	// DefaultCommitCacheSize bounds the commits a CLIRepository keeps in memory.
	DefaultCommitCacheSize = 65536

	gitRevParseSubcommandConstant     = "rev-parse"
	gitAbsoluteGitDirFlagConstant     = "--absolute-git-dir"
	gitVerifyFlagConstant             = "--verify"
	gitQuietFlagConstant              = "--quiet"
	gitLogSubcommandConstant          = "log"
	gitMaxCountFlagTemplateConstant   = "--max-count=%d"
	gitHistoryFormatFlagConstant      = "--format=%H %ct %P"
	branchCommitRevisionTemplate      = "refs/heads/%s^{commit}"
	gitMetadataDirectoryNameConstant  = ".git"
	commitIdentifierHexLengthConstant = 40
	historyLineMinimumFieldsConstant  = 2
	unixTimestampBaseConstant         = 10
	unixTimestampBitSizeConstant      = 64
	historyLineSeparatorConstant      = "\n"
)

// GitExecutor runs git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// CLIRepository reads branches and commits by running git.
type CLIRepository struct {
	path      string
	executor  GitExecutor
	cacheSize int
	commits   *lru.Cache[plumbing.Hash, commitgraph.CommitNode]
}

// OpenCLIRepository verifies repositoryPath is a repository root and returns a handle.
// A cacheSize below one selects DefaultCommitCacheSize.
func OpenCLIRepository(executionContext context.Context, executor GitExecutor, repositoryPath string, cacheSize int) (*CLIRepository, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if cacheSize < 1 {
		cacheSize = DefaultCommitCacheSize
	}

	executionResult, executionError := executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRevParseSubcommandConstant, gitAbsoluteGitDirFlagConstant},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return nil, executionError
	}

	isRoot, rootError := isRepositoryRoot(repositoryPath, strings.TrimSpace(executionResult.StandardOutput))
	if rootError != nil {
		return nil, rootError
	}
	if !isRoot {
		return nil, ErrNotRepositoryRoot
	}

	commitCache, cacheError := lru.New[plumbing.Hash, commitgraph.CommitNode](cacheSize)
	if cacheError != nil {
		return nil, cacheError
	}

	return &CLIRepository{path: repositoryPath, executor: executor, cacheSize: cacheSize, commits: commitCache}, nil
}

// Path returns the directory the repository was opened from.
func (repository *CLIRepository) Path() string {
	return repository.path
}

// ResolveBranch returns the commit the local branch branchName points at.
func (repository *CLIRepository) ResolveBranch(executionContext context.Context, branchName string) (plumbing.Hash, error) {
	executionResult, executionError := repository.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments: []string{
			gitRevParseSubcommandConstant,
			gitVerifyFlagConstant,
			gitQuietFlagConstant,
			fmt.Sprintf(branchCommitRevisionTemplate, branchName),
		},
		WorkingDirectory: repository.path,
	})
	if executionError != nil {
		var failedError execshell.CommandFailedError
		if errors.As(executionError, &failedError) {
			return plumbing.ZeroHash, &ancestry.BranchNotFoundError{Name: branchName}
		}
		return plumbing.ZeroHash, fmt.Errorf(branchResolutionFailureTemplateConstant, branchName, executionError)
	}

	tip, parseError := parseCommitIdentifier(strings.TrimSpace(executionResult.StandardOutput))
	if parseError != nil {
		return plumbing.ZeroHash, fmt.Errorf(branchResolutionFailureTemplateConstant, branchName, parseError)
	}
	return tip, nil
}

// LoadCommit returns a cached commit or loads the history reachable from it.
func (repository *CLIRepository) LoadCommit(executionContext context.Context, commit plumbing.Hash) (commitgraph.CommitNode, error) {
	if cachedNode, cached := repository.commits.Get(commit); cached {
		return cachedNode, nil
	}

	executionResult, executionError := repository.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments: []string{
			gitLogSubcommandConstant,
			fmt.Sprintf(gitMaxCountFlagTemplateConstant, repository.cacheSize),
			gitHistoryFormatFlagConstant,
			commit.String(),
		},
		WorkingDirectory: repository.path,
	})
	if executionError != nil {
		return commitgraph.CommitNode{}, fmt.Errorf(commitLoadFailureTemplateConstant, commit, executionError)
	}

	historyNodes, parseError := parseHistory(executionResult.StandardOutput)
	if parseError != nil {
		return commitgraph.CommitNode{}, fmt.Errorf(commitLoadFailureTemplateConstant, commit, parseError)
	}

	requestedNode, requestedFound := commitgraph.CommitNode{}, false
	for _, historyNode := range historyNodes {
		repository.commits.Add(historyNode.ID, historyNode)
		if historyNode.ID == commit {
			requestedNode, requestedFound = historyNode, true
		}
	}
	if !requestedFound {
		return commitgraph.CommitNode{}, fmt.Errorf(commitMissingFromHistoryTemplateConstant, ErrCommitMissingFromHistory, commit)
	}
	return requestedNode, nil
}

// parseHistory reads lines of "<hash> <unix committer time> <parent hashes...>".
func parseHistory(output string) ([]commitgraph.CommitNode, error) {
	var historyNodes []commitgraph.CommitNode
	for _, historyLine := range strings.Split(output, historyLineSeparatorConstant) {
		lineFields := strings.Fields(historyLine)
		if len(lineFields) == 0 {
			continue
		}
		if len(lineFields) < historyLineMinimumFieldsConstant {
			return nil, fmt.Errorf(malformedHistoryLineTemplateConstant, ErrMalformedHistoryOutput, historyLine)
		}

		commitIdentifier, identifierError := parseCommitIdentifier(lineFields[0])
		if identifierError != nil {
			return nil, identifierError
		}

		unixSeconds, timestampError := strconv.ParseInt(lineFields[1], unixTimestampBaseConstant, unixTimestampBitSizeConstant)
		if timestampError != nil {
			return nil, fmt.Errorf(malformedHistoryLineTemplateConstant, ErrMalformedHistoryOutput, historyLine)
		}

		parents := make([]plumbing.Hash, 0, len(lineFields)-historyLineMinimumFieldsConstant)
		for _, parentField := range lineFields[historyLineMinimumFieldsConstant:] {
			parent, parentError := parseCommitIdentifier(parentField)
			if parentError != nil {
				return nil, parentError
			}
			parents = append(parents, parent)
		}

		historyNodes = append(historyNodes, commitgraph.CommitNode{
			ID:         commitIdentifier,
			Parents:    parents,
			CommitTime: time.Unix(unixSeconds, 0),
		})
	}
	return historyNodes, nil
}

func parseCommitIdentifier(value string) (plumbing.Hash, error) {
	if len(value) != commitIdentifierHexLengthConstant {
		return plumbing.ZeroHash, fmt.Errorf(malformedCommitIdentifierTemplateConstant, ErrMalformedCommitIdentifier, value)
	}
	if _, decodeError := hex.DecodeString(value); decodeError != nil {
		return plumbing.ZeroHash, fmt.Errorf(malformedCommitIdentifierTemplateConstant, ErrMalformedCommitIdentifier, value)
	}
	return plumbing.NewHash(value), nil
}

// isRepositoryRoot reports whether gitDirectory belongs to repositoryPath itself
// (either repositoryPath/.git or repositoryPath for a bare repository).
func isRepositoryRoot(repositoryPath string, gitDirectory string) (bool, error) {
	resolvedRepositoryPath, repositoryPathError := resolveDirectory(repositoryPath)
	if repositoryPathError != nil {
		return false, repositoryPathError
	}
	resolvedGitDirectory, gitDirectoryError := resolveDirectory(gitDirectory)
	if gitDirectoryError != nil {
		return false, gitDirectoryError
	}

	if resolvedGitDirectory == resolvedRepositoryPath {
		return true, nil
	}
	return resolvedGitDirectory == filepath.Join(resolvedRepositoryPath, gitMetadataDirectoryNameConstant), nil
}

func resolveDirectory(directoryPath string) (string, error) {
	absolutePath, absoluteError := filepath.Abs(directoryPath)
	if absoluteError != nil {
		return "", fmt.Errorf(repositoryDirectoryResolveTemplateConstant, directoryPath, absoluteError)
	}
	resolvedPath, resolveError := filepath.EvalSymlinks(absolutePath)
	if resolveError != nil {
		return "", fmt.Errorf(repositoryDirectoryResolveTemplateConstant, directoryPath, resolveError)
	}
	return filepath.Clean(resolvedPath), nil
}
