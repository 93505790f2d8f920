// Package cli constructs the branchrow command-line interface, wiring the
// compare command, the configuration loader, and structured logging. It
// exposes helpers to build reusable application instances and to execute the
// default command as a library.
package cli
