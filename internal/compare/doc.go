// Package compare reports how a target branch relates to a base branch in one
// repository or in every repository of a workspace directory.
//
// Service opens repositories through a RepositoryOpener, classifies the two
// branches with ancestry.Classifier and returns per-repository results.
// CommandBuilder exposes the service as a Cobra command.
package compare
