package compare

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/branchrow/internal/gitrepo"
	"github.com/temirov/branchrow/internal/report"
	"github.com/temirov/branchrow/internal/repos/dependencies"
	"github.com/temirov/branchrow/internal/utils/flags"
	pathutils "github.com/temirov/branchrow/internal/utils/path"
)

const (
	commandUseConstant                    = "branchrow"
	commandShortDescriptionConstant       = "Report how two branches relate"
	commandLongDescriptionConstant        = "branchrow reports whether a branch points at the same commit as a base branch, is in a row with it, or has diverged from it."
	commandExampleConstant                = "  branchrow -a feature\n  branchrow -p ~/Development -w -a develop -b main"
	commandExecutionErrorTemplateConstant = "comparison failed: %w"
	unexpectedArgumentsMessageConstant    = "branchrow does not accept positional arguments"
	invalidWorkersTemplateConstant        = "--%s must be at least 1, got %d"
	invalidMaxCommitsTemplateConstant     = "--%s must not be negative, got %d"
	flagPathNameConstant                  = "path"
	flagPathShorthandConstant             = "p"
	flagPathDefaultConstant               = "."
	flagPathDescriptionConstant           = "Repository path, or workspace directory with --workspace"
	flagBranchNameConstant                = "branch"
	flagBranchShorthandConstant           = "a"
	flagBranchDescriptionConstant         = "Branch to compare against the base branch"
	flagBaseNameConstant                  = "base"
	flagBaseShorthandConstant             = "b"
	flagBaseDescriptionConstant           = "Base branch (defaults to the configured base branch, master)"
	flagWorkspaceNameConstant             = "workspace"
	flagWorkspaceShorthandConstant        = "w"
	flagWorkspaceDescriptionConstant      = "Compare the branches in every subdirectory of --path"
	flagBackendNameConstant               = "backend"
	flagBackendDescriptionConstant        = "Repository access backend"
	flagWorkersNameConstant               = "workers"
	flagWorkersDescriptionConstant        = "Repositories compared concurrently in workspace mode"
	flagOutputNameConstant                = "output"
	flagOutputDescriptionConstant         = "Result format"
	flagMaxCommitsNameConstant            = "max-commits"
	flagMaxCommitsDescriptionConstant     = "Abort a history walk after loading this many commits (0 means unlimited)"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the loaded compare configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the Cobra command comparing branches.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	GitExecutor           gitrepo.GitExecutor
	FileSystem            afero.Fs
	HomeExpander          *pathutils.HomeExpander
}

type commandFlagValues struct {
	repositoryPath string
	targetBranch   string
	baseBranch     string
	workspace      bool
	backend        string
	workers        int
	output         string
	maxCommits     int
}

type commandOptions struct {
	repositoryPath string
	targetBranch   string
	baseBranch     string
	workspace      bool
	backend        gitrepo.Backend
	workers        int
	format         report.Format
	maxCommits     int
	cacheSize      int
}

// Build constructs the compare command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	flagValues := &commandFlagValues{}
	defaults := DefaultCommandConfiguration()

	command := &cobra.Command{
		Use:     commandUseConstant,
		Short:   commandShortDescriptionConstant,
		Long:    commandLongDescriptionConstant,
		Example: commandExampleConstant,
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, arguments, flagValues)
		},
	}

	flagSet := command.Flags()
	flagSet.StringVarP(&flagValues.repositoryPath, flagPathNameConstant, flagPathShorthandConstant, flagPathDefaultConstant, flagPathDescriptionConstant)
	flagSet.StringVarP(&flagValues.targetBranch, flagBranchNameConstant, flagBranchShorthandConstant, "", flagBranchDescriptionConstant)
	flagSet.StringVarP(&flagValues.baseBranch, flagBaseNameConstant, flagBaseShorthandConstant, "", flagBaseDescriptionConstant)
	flagSet.BoolVarP(&flagValues.workspace, flagWorkspaceNameConstant, flagWorkspaceShorthandConstant, false, flagWorkspaceDescriptionConstant)
	flags.AddChoiceFlag(flagSet, &flagValues.backend, flagBackendNameConstant, defaults.Backend, []string{string(gitrepo.BackendGoGit), string(gitrepo.BackendGit)}, flagBackendDescriptionConstant)
	flagSet.IntVar(&flagValues.workers, flagWorkersNameConstant, defaults.Workers, flagWorkersDescriptionConstant)
	flags.AddChoiceFlag(flagSet, &flagValues.output, flagOutputNameConstant, defaults.Output, report.FormatNames(), flagOutputDescriptionConstant)
	flagSet.IntVar(&flagValues.maxCommits, flagMaxCommitsNameConstant, defaults.MaxCommits, flagMaxCommitsDescriptionConstant)

	if markError := command.MarkFlagRequired(flagBranchNameConstant); markError != nil {
		return nil, markError
	}

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string, flagValues *commandFlagValues) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	options, optionsError := builder.parseOptions(command, flagValues)
	if optionsError != nil {
		return optionsError
	}

	logger := builder.resolveLogger()
	opener, openerError := dependencies.ResolveRepositoryOpener(options.backend, builder.GitExecutor, options.cacheSize, logger)
	if openerError != nil {
		return openerError
	}

	service, serviceError := NewService(logger, opener, dependencies.ResolveWorkspaceLister(builder.FileSystem), options.maxCommits)
	if serviceError != nil {
		return serviceError
	}

	printer, printerError := report.NewPrinter(options.format, command.OutOrStdout(), command.ErrOrStderr())
	if printerError != nil {
		return printerError
	}

	if options.workspace {
		entries, workspaceError := service.CompareWorkspace(command.Context(), WorkspaceOptions{
			WorkspacePath: options.repositoryPath,
			BaseBranch:    options.baseBranch,
			TargetBranch:  options.targetBranch,
			Workers:       options.workers,
		})
		if workspaceError != nil {
			return fmt.Errorf(commandExecutionErrorTemplateConstant, workspaceError)
		}
		return printer.PrintWorkspace(convertWorkspaceEntries(entries))
	}

	result, compareError := service.CompareRepository(command.Context(), Options{
		RepositoryPath: options.repositoryPath,
		BaseBranch:     options.baseBranch,
		TargetBranch:   options.targetBranch,
	})
	if compareError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, compareError)
	}
	return printer.PrintRepository(result.RepositoryPath, result.Relationship)
}

// parseOptions merges flags over configuration; a flag wins only when set explicitly.
func (builder *CommandBuilder) parseOptions(command *cobra.Command, flagValues *commandFlagValues) (commandOptions, error) {
	configuration := builder.resolveConfiguration()
	flagSet := command.Flags()

	baseBranch := configuration.BaseBranch
	if trimmedBaseBranch := strings.TrimSpace(flagValues.baseBranch); flagSet.Changed(flagBaseNameConstant) && len(trimmedBaseBranch) > 0 {
		baseBranch = trimmedBaseBranch
	}

	backendName := configuration.Backend
	if flagSet.Changed(flagBackendNameConstant) {
		backendName = flagValues.backend
	}
	backend, backendError := gitrepo.ParseBackend(backendName)
	if backendError != nil {
		return commandOptions{}, backendError
	}

	outputName := configuration.Output
	if flagSet.Changed(flagOutputNameConstant) {
		outputName = flagValues.output
	}
	format, formatError := report.ParseFormat(outputName)
	if formatError != nil {
		return commandOptions{}, formatError
	}

	workers := configuration.Workers
	if flagSet.Changed(flagWorkersNameConstant) {
		if flagValues.workers < 1 {
			return commandOptions{}, fmt.Errorf(invalidWorkersTemplateConstant, flagWorkersNameConstant, flagValues.workers)
		}
		workers = flagValues.workers
	}

	maxCommits := configuration.MaxCommits
	if flagSet.Changed(flagMaxCommitsNameConstant) {
		if flagValues.maxCommits < 0 {
			return commandOptions{}, fmt.Errorf(invalidMaxCommitsTemplateConstant, flagMaxCommitsNameConstant, flagValues.maxCommits)
		}
		maxCommits = flagValues.maxCommits
	}

	homeExpander := builder.HomeExpander
	if homeExpander == nil {
		homeExpander = pathutils.NewHomeExpander()
	}

	return commandOptions{
		repositoryPath: homeExpander.ExpandRepositoryPath(flagValues.repositoryPath),
		targetBranch:   strings.TrimSpace(flagValues.targetBranch),
		baseBranch:     baseBranch,
		workspace:      flagValues.workspace,
		backend:        backend,
		workers:        workers,
		format:         format,
		maxCommits:     maxCommits,
		cacheSize:      configuration.CacheSize,
	}, nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func convertWorkspaceEntries(entries []WorkspaceEntry) []report.Entry {
	reportEntries := make([]report.Entry, 0, len(entries))
	for _, entry := range entries {
		reportEntry := report.Entry{RepositoryPath: entry.RepositoryPath, Error: entry.Error}
		if entry.Result != nil {
			relationship := entry.Result.Relationship
			reportEntry.Relationship = &relationship
		}
		reportEntries = append(reportEntries, reportEntry)
	}
	return reportEntries
}
