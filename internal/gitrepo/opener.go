package gitrepo

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/branchrow/internal/commitgraph"
)

const (
	backendGoGitNameConstant          = "gogit"
	backendGitNameConstant            = "git"
	logMessageRepositoryOpened        = "repository opened"
	logMessageRepositoryOpenFailed    = "repository open failed"
	logFieldRepositoryPathConstant    = "repository_path"
	logFieldRepositoryBackendConstant = "backend"
)

// Backend names a repository access implementation.
type Backend string

// Supported backends.
const (
	BackendGoGit Backend = Backend(backendGoGitNameConstant)
	BackendGit   Backend = Backend(backendGitNameConstant)
)

// DefaultBackend is used when no backend is configured.
const DefaultBackend = BackendGoGit

// ParseBackend converts a configured backend name into a Backend.
// An empty value selects DefaultBackend.
func ParseBackend(value string) (Backend, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(value))
	switch normalizedValue {
	case "":
		return DefaultBackend, nil
	case backendGoGitNameConstant:
		return BackendGoGit, nil
	case backendGitNameConstant:
		return BackendGit, nil
	default:
		return "", fmt.Errorf(unsupportedBackendTemplateConstant, ErrUnsupportedBackend, value)
	}
}

// OpenerOptions configures an Opener.
type OpenerOptions struct {
	Backend         Backend
	GitExecutor     GitExecutor
	CommitCacheSize int
	Logger          *zap.Logger
}

// Opener opens repositories with a single configured backend.
type Opener struct {
	backend         Backend
	gitExecutor     GitExecutor
	commitCacheSize int
	logger          *zap.Logger
}

// NewOpener validates options and constructs an Opener.
func NewOpener(options OpenerOptions) (*Opener, error) {
	backend := options.Backend
	if len(backend) == 0 {
		backend = DefaultBackend
	}
	if _, parseError := ParseBackend(string(backend)); parseError != nil {
		return nil, parseError
	}
	if backend == BackendGit && options.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}

	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Opener{
		backend:         backend,
		gitExecutor:     options.GitExecutor,
		commitCacheSize: options.CommitCacheSize,
		logger:          logger,
	}, nil
}

// Backend reports the configured backend.
func (opener *Opener) Backend() Backend {
	return opener.backend
}

// Open returns a read-only repository handle for repositoryPath.
// Every failure is reported as *RepositoryOpenError.
func (opener *Opener) Open(executionContext context.Context, repositoryPath string) (commitgraph.Repository, error) {
	logFields := []zap.Field{
		zap.String(logFieldRepositoryPathConstant, repositoryPath),
		zap.String(logFieldRepositoryBackendConstant, string(opener.backend)),
	}

	repository, openError := opener.open(executionContext, repositoryPath)
	if openError != nil {
		opener.logger.Debug(logMessageRepositoryOpenFailed, append(logFields, zap.Error(openError))...)
		return nil, &RepositoryOpenError{Path: repositoryPath, Cause: openError}
	}

	opener.logger.Debug(logMessageRepositoryOpened, logFields...)
	return repository, nil
}

func (opener *Opener) open(executionContext context.Context, repositoryPath string) (commitgraph.Repository, error) {
	if len(strings.TrimSpace(repositoryPath)) == 0 {
		return nil, ErrRepositoryPathRequired
	}
	if contextError := executionContext.Err(); contextError != nil {
		return nil, contextError
	}

	switch opener.backend {
	case BackendGit:
		return OpenCLIRepository(executionContext, opener.gitExecutor, repositoryPath, opener.commitCacheSize)
	default:
		return OpenGoGitRepository(repositoryPath)
	}
}
