package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/temirov/branchrow/internal/ancestry"
)

const (
	formatTextNameConstant            = "text"
	formatYAMLNameConstant            = "yaml"
	formatJSONNameConstant            = "json"
	unsupportedFormatMessageConstant  = "unsupported output format"
	unsupportedFormatTemplateConstant = "%w: %q"
	outputMissingMessageConstant      = "report output not configured"
	workspaceLineTemplateConstant     = "%s: %s\n"
	workspaceErrorLineTemplate        = "ERROR: %s: %v\n"
	singleLineTemplateConstant        = "%s\n"
)

// Format selects how results are rendered.
type Format string

// Supported formats.
const (
	FormatText Format = Format(formatTextNameConstant)
	FormatYAML Format = Format(formatYAMLNameConstant)
	FormatJSON Format = Format(formatJSONNameConstant)
)

// FormatNames lists the accepted format names in display order.
func FormatNames() []string {
	return []string{formatTextNameConstant, formatYAMLNameConstant, formatJSONNameConstant}
}

// ErrUnsupportedFormat indicates a format name outside FormatNames.
var ErrUnsupportedFormat = errors.New(unsupportedFormatMessageConstant)

// ErrOutputNotConfigured indicates a printer without an output writer.
var ErrOutputNotConfigured = errors.New(outputMissingMessageConstant)

// ParseFormat converts a format name into a Format; empty selects FormatText.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", formatTextNameConstant:
		return FormatText, nil
	case formatYAMLNameConstant:
		return FormatYAML, nil
	case formatJSONNameConstant:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf(unsupportedFormatTemplateConstant, ErrUnsupportedFormat, value)
	}
}

// Entry is the outcome for one repository.
type Entry struct {
	RepositoryPath string
	Relationship   *ancestry.Relationship
	Error          error
}

// Document is the structured form of an Entry.
type Document struct {
	Path     string `yaml:"path" json:"path"`
	Relation string `yaml:"relation,omitempty" json:"relation,omitempty"`
	Commit   string `yaml:"commit,omitempty" json:"commit,omitempty"`
	Ahead    string `yaml:"ahead,omitempty" json:"ahead,omitempty"`
	Error    string `yaml:"error,omitempty" json:"error,omitempty"`
}

// NewDocument converts entry into its structured form.
func NewDocument(entry Entry) Document {
	document := Document{Path: entry.RepositoryPath}
	if entry.Error != nil {
		document.Error = entry.Error.Error()
		return document
	}
	if entry.Relationship != nil {
		document.Relation = entry.Relationship.Kind.String()
		document.Commit = entry.Relationship.Commit.String()
		document.Ahead = entry.Relationship.AheadBranch
	}
	return document
}

// Printer writes results in one format.
type Printer struct {
	format      Format
	output      io.Writer
	errorOutput io.Writer
}

// NewPrinter constructs a Printer. errorOutput receives text-mode workspace errors and defaults to output.
func NewPrinter(format Format, output io.Writer, errorOutput io.Writer) (*Printer, error) {
	if output == nil {
		return nil, ErrOutputNotConfigured
	}
	if _, parseError := ParseFormat(string(format)); parseError != nil {
		return nil, parseError
	}
	if len(format) == 0 {
		format = FormatText
	}
	if errorOutput == nil {
		errorOutput = output
	}
	return &Printer{format: format, output: output, errorOutput: errorOutput}, nil
}

// PrintRepository renders the relationship found in a single repository.
// Text output is the bare relationship line.
func (printer *Printer) PrintRepository(repositoryPath string, relationship ancestry.Relationship) error {
	if printer.format == FormatText {
		_, writeError := fmt.Fprintf(printer.output, singleLineTemplateConstant, relationship)
		return writeError
	}
	return printer.printDocuments([]Document{NewDocument(Entry{RepositoryPath: repositoryPath, Relationship: &relationship})})
}

// PrintWorkspace renders entries in order.
// Text output prefixes each line with the repository path and sends failures to the error writer.
func (printer *Printer) PrintWorkspace(entries []Entry) error {
	if printer.format != FormatText {
		documents := make([]Document, 0, len(entries))
		for _, entry := range entries {
			documents = append(documents, NewDocument(entry))
		}
		return printer.printDocuments(documents)
	}

	for _, entry := range entries {
		if writeError := printer.printWorkspaceLine(entry); writeError != nil {
			return writeError
		}
	}
	return nil
}

func (printer *Printer) printWorkspaceLine(entry Entry) error {
	if entry.Error != nil {
		_, writeError := fmt.Fprintf(printer.errorOutput, workspaceErrorLineTemplate, entry.RepositoryPath, entry.Error)
		return writeError
	}
	if entry.Relationship == nil {
		return nil
	}
	_, writeError := fmt.Fprintf(printer.output, workspaceLineTemplateConstant, entry.RepositoryPath, entry.Relationship)
	return writeError
}

func (printer *Printer) printDocuments(documents []Document) error {
	switch printer.format {
	case FormatYAML:
		encoder := yaml.NewEncoder(printer.output)
		encoder.SetIndent(2)
		for _, document := range documents {
			if encodeError := encoder.Encode(document); encodeError != nil {
				return encodeError
			}
		}
		return encoder.Close()
	default:
		encoder := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(printer.output)
		for _, document := range documents {
			if encodeError := encoder.Encode(document); encodeError != nil {
				return encodeError
			}
		}
		return nil
	}
}
