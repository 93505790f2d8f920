// Package discovery lists the repositories of a workspace directory.
package discovery
