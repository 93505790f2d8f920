package gitrepo

import (
	"errors"
	"fmt"
)

const (
	repositoryOpenErrorTemplateConstant        = "cannot open repository %s: %v"
	unsupportedBackendTemplateConstant         = "%w: %q"
	unsupportedBackendMessageConstant          = "unsupported repository backend"
	notRepositoryRootMessageConstant           = "path is not the root of a git repository"
	gitExecutorMissingMessageConstant          = "git executor not configured"
	repositoryPathMissingMessageConstant       = "repository path must be provided"
	malformedHistoryOutputMessageConstant      = "malformed git log output"
	malformedCommitIdentifierMessageConstant   = "malformed commit identifier"
	commitMissingFromHistoryMessageConstant    = "commit missing from git log output"
	malformedHistoryLineTemplateConstant       = "%w: %q"
	malformedCommitIdentifierTemplateConstant  = "%w: %q"
	commitMissingFromHistoryTemplateConstant   = "%w: %s"
	branchResolutionFailureTemplateConstant    = "failed to resolve branch %q: %w"
	commitLoadFailureTemplateConstant          = "failed to load commit %s: %w"
	repositoryDirectoryResolveTemplateConstant = "failed to resolve %s: %w"
)

// ErrUnsupportedBackend indicates a backend name outside the known set.
var ErrUnsupportedBackend = errors.New(unsupportedBackendMessageConstant)

// ErrNotRepositoryRoot indicates a path inside a repository that is not its root.
var ErrNotRepositoryRoot = errors.New(notRepositoryRootMessageConstant)

// ErrGitExecutorNotConfigured indicates the git backend was requested without an executor.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrRepositoryPathRequired indicates an empty repository path.
var ErrRepositoryPathRequired = errors.New(repositoryPathMissingMessageConstant)

// ErrMalformedHistoryOutput indicates git log produced a line that could not be parsed.
var ErrMalformedHistoryOutput = errors.New(malformedHistoryOutputMessageConstant)

// ErrMalformedCommitIdentifier indicates git printed something other than a commit hash.
var ErrMalformedCommitIdentifier = errors.New(malformedCommitIdentifierMessageConstant)

// ErrCommitMissingFromHistory indicates git log did not list the requested commit.
var ErrCommitMissingFromHistory = errors.New(commitMissingFromHistoryMessageConstant)

// RepositoryOpenError reports a path that could not be opened as a repository.
type RepositoryOpenError struct {
	Path  string
	Cause error
}

// Error describes the open failure.
func (openError *RepositoryOpenError) Error() string {
	return fmt.Sprintf(repositoryOpenErrorTemplateConstant, openError.Path, openError.Cause)
}

// Unwrap exposes the backend failure.
func (openError *RepositoryOpenError) Unwrap() error {
	return openError.Cause
}
