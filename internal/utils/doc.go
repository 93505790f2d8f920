// Package utils exposes the logging and configuration plumbing shared by commands.
//
// LoggerFactory builds zap loggers in structured or console encodings and
// ConfigurationLoader layers embedded defaults, configuration files and
// environment variables through Viper.
package utils
