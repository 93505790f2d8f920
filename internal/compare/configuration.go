package compare

import (
	"strings"

	"github.com/temirov/branchrow/internal/gitrepo"
	"github.com/temirov/branchrow/internal/report"
)

const (
	configurationBaseBranchKeyConstant = "base_branch"
	configurationBackendKeyConstant    = "backend"
	configurationWorkersKeyConstant    = "workers"
	configurationOutputKeyConstant     = "output"
	configurationMaxCommitsKeyConstant = "max_commits"
	configurationCacheSizeKeyConstant  = "cache_size"
	configurationKeySeparatorConstant  = "."
	defaultWorkerCountConstant         = 1
)

// CommandConfiguration captures configuration values for the compare command.
type CommandConfiguration struct {
	BaseBranch string `mapstructure:"base_branch"`
	Backend    string `mapstructure:"backend"`
	Workers    int    `mapstructure:"workers"`
	Output     string `mapstructure:"output"`
	MaxCommits int    `mapstructure:"max_commits"`
	CacheSize  int    `mapstructure:"cache_size"`
}

// DefaultCommandConfiguration provides baseline configuration values for comparisons.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		BaseBranch: DefaultBaseBranch,
		Backend:    string(gitrepo.DefaultBackend),
		Workers:    defaultWorkerCountConstant,
		Output:     string(report.FormatText),
		MaxCommits: 0,
		CacheSize:  gitrepo.DefaultCommitCacheSize,
	}
}

// DefaultConfigurationValues returns the defaults keyed under prefix for a configuration loader.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		qualifyConfigurationKey(prefix, configurationBaseBranchKeyConstant): defaults.BaseBranch,
		qualifyConfigurationKey(prefix, configurationBackendKeyConstant):    defaults.Backend,
		qualifyConfigurationKey(prefix, configurationWorkersKeyConstant):    defaults.Workers,
		qualifyConfigurationKey(prefix, configurationOutputKeyConstant):     defaults.Output,
		qualifyConfigurationKey(prefix, configurationMaxCommitsKeyConstant): defaults.MaxCommits,
		qualifyConfigurationKey(prefix, configurationCacheSizeKeyConstant):  defaults.CacheSize,
	}
}

// sanitize trims values and replaces unusable numbers with defaults.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration

	sanitized.BaseBranch = strings.TrimSpace(configuration.BaseBranch)
	if len(sanitized.BaseBranch) == 0 {
		sanitized.BaseBranch = defaults.BaseBranch
	}
	sanitized.Backend = strings.TrimSpace(configuration.Backend)
	sanitized.Output = strings.TrimSpace(configuration.Output)
	if sanitized.Workers < 1 {
		sanitized.Workers = defaults.Workers
	}
	if sanitized.MaxCommits < 0 {
		sanitized.MaxCommits = defaults.MaxCommits
	}
	if sanitized.CacheSize < 1 {
		sanitized.CacheSize = defaults.CacheSize
	}
	return sanitized
}

func qualifyConfigurationKey(prefix string, key string) string {
	trimmedPrefix := strings.TrimSpace(prefix)
	if len(trimmedPrefix) == 0 {
		return key
	}
	return trimmedPrefix + configurationKeySeparatorConstant + key
}
