package utils_test

import (
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/temirov/branchrow/internal/utils"
)

const (
	testEnvironmentPrefixConstant                  = "TESTBRANCHROW"
	testLogLevelKeyConstant                        = "common.log_level"
	testBaseBranchKeyConstant                      = "compare.base_branch"
	testLogLevelEnvironmentVariableConstant        = "TESTBRANCHROW_COMMON_LOG_LEVEL"
	testDefaultLogLevelConstant                    = "info"
	testEmbeddedLogLevelConstant                   = "error"
	testFileLogLevelConstant                       = "warn"
	testEnvironmentLogLevelConstant                = "debug"
	testDefaultBaseBranchConstant                  = "master"
	testFileBaseBranchConstant                     = "main"
	testConfigurationNameConstant                  = "config"
	testConfigurationTypeConstant                  = "yaml"
	testWorkingDirectoryConstant                   = "/work"
	testSearchedConfigurationPathConstant          = "/work/config.yaml"
	testExplicitConfigurationPathConstant          = "/etc/branchrow/custom.yaml"
	testEmbeddedConfigurationTemplateConstant      = "common:\n  log_level: %s\n"
	testFileConfigurationTemplateConstant          = "common:\n  log_level: %s\ncompare:\n  base_branch: %s\n"
	configurationLoaderSubtestNameTemplateConstant = "%d_%s"
)

type configurationFixture struct {
	Common  configurationCommonFixture  `mapstructure:"common"`
	Compare configurationCompareFixture `mapstructure:"compare"`
}

type configurationCommonFixture struct {
	LogLevel string `mapstructure:"log_level"`
}

type configurationCompareFixture struct {
	BaseBranch string `mapstructure:"base_branch"`
}

func TestConfigurationLoaderLoadConfigurationPrecedence(testInstance *testing.T) {
	testCases := []struct {
		name                string
		embedded            bool
		searchedFile        bool
		explicitFile        bool
		environmentLogLevel string
		expectedLogLevel    string
		expectedBaseBranch  string
		expectedFileUsed    string
	}{
		{
			name:               "defaults_only",
			expectedLogLevel:   testDefaultLogLevelConstant,
			expectedBaseBranch: testDefaultBaseBranchConstant,
		},
		{
			name:               "embedded_overrides_defaults",
			embedded:           true,
			expectedLogLevel:   testEmbeddedLogLevelConstant,
			expectedBaseBranch: testDefaultBaseBranchConstant,
		},
		{
			name:               "searched_file_overrides_embedded",
			embedded:           true,
			searchedFile:       true,
			expectedLogLevel:   testFileLogLevelConstant,
			expectedBaseBranch: testFileBaseBranchConstant,
			expectedFileUsed:   testSearchedConfigurationPathConstant,
		},
		{
			name:               "explicit_file_is_read",
			embedded:           true,
			explicitFile:       true,
			expectedLogLevel:   testFileLogLevelConstant,
			expectedBaseBranch: testFileBaseBranchConstant,
			expectedFileUsed:   testExplicitConfigurationPathConstant,
		},
		{
			name:                "environment_overrides_file",
			embedded:            true,
			searchedFile:        true,
			environmentLogLevel: testEnvironmentLogLevelConstant,
			expectedLogLevel:    testEnvironmentLogLevelConstant,
			expectedBaseBranch:  testFileBaseBranchConstant,
			expectedFileUsed:    testSearchedConfigurationPathConstant,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(configurationLoaderSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			fileSystem := afero.NewMemMapFs()
			fileContent := []byte(fmt.Sprintf(testFileConfigurationTemplateConstant, testFileLogLevelConstant, testFileBaseBranchConstant))
			if testCase.searchedFile {
				require.NoError(testInstance, afero.WriteFile(fileSystem, testSearchedConfigurationPathConstant, fileContent, 0o600))
			}
			if testCase.explicitFile {
				require.NoError(testInstance, afero.WriteFile(fileSystem, testExplicitConfigurationPathConstant, fileContent, 0o600))
			}
			if len(testCase.environmentLogLevel) > 0 {
				testInstance.Setenv(testLogLevelEnvironmentVariableConstant, testCase.environmentLogLevel)
			}

			configurationLoader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{testWorkingDirectoryConstant})
			configurationLoader.SetFileSystem(fileSystem)
			if testCase.embedded {
				configurationLoader.SetEmbeddedConfiguration([]byte(fmt.Sprintf(testEmbeddedConfigurationTemplateConstant, testEmbeddedLogLevelConstant)), testConfigurationTypeConstant)
			}

			explicitPath := ""
			if testCase.explicitFile {
				explicitPath = testExplicitConfigurationPathConstant
			}

			defaultValues := map[string]any{
				testLogLevelKeyConstant:   testDefaultLogLevelConstant,
				testBaseBranchKeyConstant: testDefaultBaseBranchConstant,
			}

			loadedConfiguration := configurationFixture{}
			metadata, loadError := configurationLoader.LoadConfiguration(explicitPath, defaultValues, &loadedConfiguration)
			require.NoError(testInstance, loadError)
			require.Equal(testInstance, testCase.expectedLogLevel, loadedConfiguration.Common.LogLevel)
			require.Equal(testInstance, testCase.expectedBaseBranch, loadedConfiguration.Compare.BaseBranch)
			require.Equal(testInstance, testCase.expectedFileUsed, metadata.ConfigFileUsed)
		})
	}
}

func TestConfigurationLoaderRejectsMissingExplicitFile(testInstance *testing.T) {
	configurationLoader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{testWorkingDirectoryConstant})
	configurationLoader.SetFileSystem(afero.NewMemMapFs())

	loadedConfiguration := configurationFixture{}
	_, loadError := configurationLoader.LoadConfiguration(testExplicitConfigurationPathConstant, nil, &loadedConfiguration)
	require.Error(testInstance, loadError)
}

func TestConfigurationLoaderRejectsMalformedEmbeddedConfiguration(testInstance *testing.T) {
	configurationLoader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, nil)
	configurationLoader.SetFileSystem(afero.NewMemMapFs())
	configurationLoader.SetEmbeddedConfiguration([]byte("common: [unterminated"), testConfigurationTypeConstant)

	loadedConfiguration := configurationFixture{}
	_, loadError := configurationLoader.LoadConfiguration("", nil, &loadedConfiguration)
	require.ErrorContains(testInstance, loadError, "embedded configuration")
}
