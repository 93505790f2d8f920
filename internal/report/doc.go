// Package report renders branch relationships as text lines, YAML documents or JSON objects.
package report
