// Package execshell runs external tools in a testable, logged manner.
//
// ShellExecutor wraps a CommandRunner, logs each command's lifecycle through zap
// and turns non-zero exit codes into CommandFailedError values. OSCommandRunner
// is the os/exec backed runner used outside of tests.
package execshell
