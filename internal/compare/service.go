package compare

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/branchrow/internal/ancestry"
	"github.com/temirov/branchrow/internal/commitgraph"
)

const (
	// DefaultBaseBranch is compared against when no base branch is given.
	DefaultBaseBranch = "master"

	repositoryPathMissingMessageConstant = "repository path must be provided"
	targetBranchMissingMessageConstant   = "target branch must be provided"
	openerMissingMessageConstant         = "repository opener not configured"
	listerMissingMessageConstant         = "workspace lister not configured"
	logMessageRepositoryCompared         = "repository compared"
	logMessageRepositoryFailed           = "repository comparison failed"
	logMessageWorkspaceListed            = "workspace listed"
	logFieldRepositoryPathConstant       = "repository_path"
	logFieldWorkspacePathConstant        = "workspace_path"
	logFieldRepositoryCountConstant      = "repository_count"
	logFieldWorkersConstant              = "workers"
	logFieldRelationshipConstant         = "relationship"
)

// ErrRepositoryPathRequired indicates an empty repository or workspace path.
var ErrRepositoryPathRequired = errors.New(repositoryPathMissingMessageConstant)

// ErrTargetBranchRequired indicates an empty target branch name.
var ErrTargetBranchRequired = errors.New(targetBranchMissingMessageConstant)

// ErrRepositoryOpenerNotConfigured indicates the service was built without an opener.
var ErrRepositoryOpenerNotConfigured = errors.New(openerMissingMessageConstant)

// ErrWorkspaceListerNotConfigured indicates the service was built without a workspace lister.
var ErrWorkspaceListerNotConfigured = errors.New(listerMissingMessageConstant)

// RepositoryOpener opens a path as a read-only commit repository.
type RepositoryOpener interface {
	Open(executionContext context.Context, repositoryPath string) (commitgraph.Repository, error)
}

// WorkspaceLister enumerates the repository directories of a workspace.
type WorkspaceLister interface {
	ListRepositories(workspacePath string) ([]string, error)
}

// Options describes a single-repository comparison.
type Options struct {
	RepositoryPath string
	BaseBranch     string
	TargetBranch   string
}

// WorkspaceOptions describes a comparison across a workspace directory.
type WorkspaceOptions struct {
	WorkspacePath string
	BaseBranch    string
	TargetBranch  string
	Workers       int
}

// Result is the relationship found in one repository.
type Result struct {
	RepositoryPath string
	Relationship   ancestry.Relationship
}

// WorkspaceEntry is the outcome for one workspace subdirectory; exactly one of Result and Error is set.
type WorkspaceEntry struct {
	RepositoryPath string
	Result         *Result
	Error          error
}

// Service compares branches in repositories.
type Service struct {
	logger     *zap.Logger
	opener     RepositoryOpener
	lister     WorkspaceLister
	classifier *ancestry.Classifier
	maxCommits int
}

// NewService validates dependencies and constructs a Service.
// A positive maxCommits bounds the history loaded for each walk.
func NewService(logger *zap.Logger, opener RepositoryOpener, lister WorkspaceLister, maxCommits int) (*Service, error) {
	if opener == nil {
		return nil, ErrRepositoryOpenerNotConfigured
	}
	if lister == nil {
		return nil, ErrWorkspaceListerNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		logger:     logger,
		opener:     opener,
		lister:     lister,
		classifier: ancestry.NewClassifier(logger),
		maxCommits: maxCommits,
	}, nil
}

// CompareRepository classifies the branches of the repository at options.RepositoryPath.
func (service *Service) CompareRepository(executionContext context.Context, options Options) (Result, error) {
	repositoryPath := strings.TrimSpace(options.RepositoryPath)
	if len(repositoryPath) == 0 {
		return Result{}, ErrRepositoryPathRequired
	}
	targetBranch := strings.TrimSpace(options.TargetBranch)
	if len(targetBranch) == 0 {
		return Result{}, ErrTargetBranchRequired
	}
	return service.compare(executionContext, repositoryPath, resolveBaseBranch(options.BaseBranch), targetBranch)
}

// CompareWorkspace classifies the branches of every immediate subdirectory of options.WorkspacePath.
// Entries follow subdirectory name order; per-repository failures are recorded in their entry.
func (service *Service) CompareWorkspace(executionContext context.Context, options WorkspaceOptions) ([]WorkspaceEntry, error) {
	workspacePath := strings.TrimSpace(options.WorkspacePath)
	if len(workspacePath) == 0 {
		return nil, ErrRepositoryPathRequired
	}
	targetBranch := strings.TrimSpace(options.TargetBranch)
	if len(targetBranch) == 0 {
		return nil, ErrTargetBranchRequired
	}
	baseBranch := resolveBaseBranch(options.BaseBranch)

	repositoryPaths, listError := service.lister.ListRepositories(workspacePath)
	if listError != nil {
		return nil, listError
	}

	workers := options.Workers
	if workers < 1 {
		workers = defaultWorkerCountConstant
	}
	service.logger.Debug(
		logMessageWorkspaceListed,
		zap.String(logFieldWorkspacePathConstant, workspacePath),
		zap.Int(logFieldRepositoryCountConstant, len(repositoryPaths)),
		zap.Int(logFieldWorkersConstant, workers),
	)

	entries := make([]WorkspaceEntry, len(repositoryPaths))
	var workerGroup errgroup.Group
	workerGroup.SetLimit(workers)
	for repositoryIndex, repositoryPath := range repositoryPaths {
		repositoryIndex, repositoryPath := repositoryIndex, repositoryPath
		workerGroup.Go(func() error {
			entries[repositoryIndex] = service.compareEntry(executionContext, repositoryPath, baseBranch, targetBranch)
			return nil
		})
	}
	if waitError := workerGroup.Wait(); waitError != nil {
		return nil, waitError
	}
	if contextError := executionContext.Err(); contextError != nil {
		return nil, contextError
	}

	return entries, nil
}

func (service *Service) compareEntry(executionContext context.Context, repositoryPath string, baseBranch string, targetBranch string) WorkspaceEntry {
	result, compareError := service.compare(executionContext, repositoryPath, baseBranch, targetBranch)
	if compareError != nil {
		return WorkspaceEntry{RepositoryPath: repositoryPath, Error: compareError}
	}
	return WorkspaceEntry{RepositoryPath: repositoryPath, Result: &result}
}

func (service *Service) compare(executionContext context.Context, repositoryPath string, baseBranch string, targetBranch string) (Result, error) {
	repository, openError := service.opener.Open(executionContext, repositoryPath)
	if openError != nil {
		service.logFailure(repositoryPath, openError)
		return Result{}, openError
	}

	graph, graphError := commitgraph.NewGraph(repository, service.maxCommits)
	if graphError != nil {
		return Result{}, graphError
	}

	relationship, classifyError := service.classifier.Classify(executionContext, graph, baseBranch, targetBranch)
	if classifyError != nil {
		service.logFailure(repositoryPath, classifyError)
		return Result{}, classifyError
	}

	service.logger.Debug(
		logMessageRepositoryCompared,
		zap.String(logFieldRepositoryPathConstant, repositoryPath),
		zap.Stringer(logFieldRelationshipConstant, relationship),
	)
	return Result{RepositoryPath: repositoryPath, Relationship: relationship}, nil
}

func (service *Service) logFailure(repositoryPath string, failure error) {
	service.logger.Debug(
		logMessageRepositoryFailed,
		zap.String(logFieldRepositoryPathConstant, repositoryPath),
		zap.Error(failure),
	)
}

func resolveBaseBranch(baseBranch string) string {
	trimmedBaseBranch := strings.TrimSpace(baseBranch)
	if len(trimmedBaseBranch) == 0 {
		return DefaultBaseBranch
	}
	return trimmedBaseBranch
}
