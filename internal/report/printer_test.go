package report_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/branchrow/internal/ancestry"
	"github.com/temirov/branchrow/internal/report"
)

const (
	testCommitConstant      = "a94a8fe5ccb19ba61c4c0873d391e987982fbbd3"
	testOtherCommitConstant = "b5d4045c3f466fa91fe2cc6abe79232a1a57cdf1"
)

func workspaceEntries() []report.Entry {
	sameRelationship := ancestry.NewSameRelationship(plumbing.NewHash(testCommitConstant))
	inrowRelationship := ancestry.NewInrowRelationship(plumbing.NewHash(testOtherCommitConstant), "feature")
	return []report.Entry{
		{RepositoryPath: "/workspace/alpha", Relationship: &sameRelationship},
		{RepositoryPath: "/workspace/beta", Error: errors.New("branch \"feature\" not found")},
		{RepositoryPath: "/workspace/gamma", Relationship: &inrowRelationship},
	}
}

func TestParseFormat(testInstance *testing.T) {
	testCases := []struct {
		value          string
		expectedFormat report.Format
		expectError    bool
	}{
		{value: "", expectedFormat: report.FormatText},
		{value: "TEXT", expectedFormat: report.FormatText},
		{value: "yaml", expectedFormat: report.FormatYAML},
		{value: " json ", expectedFormat: report.FormatJSON},
		{value: "xml", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.value, func(testInstance *testing.T) {
			format, parseError := report.ParseFormat(testCase.value)
			if testCase.expectError {
				require.ErrorIs(testInstance, parseError, report.ErrUnsupportedFormat)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedFormat, format)
		})
	}
}

func TestPrinterTextRepository(testInstance *testing.T) {
	testCases := []struct {
		name         string
		relationship ancestry.Relationship
		expectedLine string
	}{
		{name: "same", relationship: ancestry.NewSameRelationship(plumbing.NewHash(testCommitConstant)), expectedLine: "Same: " + testCommitConstant + "\n"},
		{name: "inrow", relationship: ancestry.NewInrowRelationship(plumbing.NewHash(testCommitConstant), "master"), expectedLine: "Inrow: " + testCommitConstant + ", branch 'master' is ahead\n"},
		{name: "diff", relationship: ancestry.NewDiffRelationship(plumbing.NewHash(testCommitConstant)), expectedLine: "Diff: " + testCommitConstant + "\n"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			outputBuffer := &bytes.Buffer{}
			printer, printerError := report.NewPrinter(report.FormatText, outputBuffer, nil)
			require.NoError(testInstance, printerError)
			require.NoError(testInstance, printer.PrintRepository("/workspace/alpha", testCase.relationship))
			require.Equal(testInstance, testCase.expectedLine, outputBuffer.String())
		})
	}
}

func TestPrinterTextWorkspaceSplitsErrors(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	errorBuffer := &bytes.Buffer{}
	printer, printerError := report.NewPrinter(report.FormatText, outputBuffer, errorBuffer)
	require.NoError(testInstance, printerError)

	require.NoError(testInstance, printer.PrintWorkspace(workspaceEntries()))
	require.Equal(testInstance,
		"/workspace/alpha: Same: "+testCommitConstant+"\n"+
			"/workspace/gamma: Inrow: "+testOtherCommitConstant+", branch 'feature' is ahead\n",
		outputBuffer.String(),
	)
	require.Equal(testInstance, "ERROR: /workspace/beta: branch \"feature\" not found\n", errorBuffer.String())
}

func TestPrinterYAMLWorkspace(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	errorBuffer := &bytes.Buffer{}
	printer, printerError := report.NewPrinter(report.FormatYAML, outputBuffer, errorBuffer)
	require.NoError(testInstance, printerError)
	require.NoError(testInstance, printer.PrintWorkspace(workspaceEntries()))
	require.Empty(testInstance, errorBuffer.String())
	require.Equal(testInstance, 2, strings.Count(outputBuffer.String(), "---\n"))

	decoder := yaml.NewDecoder(outputBuffer)
	var documents []report.Document
	for {
		var document report.Document
		decodeError := decoder.Decode(&document)
		if errors.Is(decodeError, io.EOF) {
			break
		}
		require.NoError(testInstance, decodeError)
		documents = append(documents, document)
	}

	require.Equal(testInstance, []report.Document{
		{Path: "/workspace/alpha", Relation: "Same", Commit: testCommitConstant},
		{Path: "/workspace/beta", Error: "branch \"feature\" not found"},
		{Path: "/workspace/gamma", Relation: "Inrow", Commit: testOtherCommitConstant, Ahead: "feature"},
	}, documents)
}

func TestPrinterJSONRepository(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	printer, printerError := report.NewPrinter(report.FormatJSON, outputBuffer, nil)
	require.NoError(testInstance, printerError)

	relationship := ancestry.NewDiffRelationship(plumbing.NewHash(testCommitConstant))
	require.NoError(testInstance, printer.PrintRepository("/workspace/alpha", relationship))
	require.JSONEq(testInstance, `{"path":"/workspace/alpha","relation":"Diff","commit":"`+testCommitConstant+`"}`, outputBuffer.String())

	var decoded report.Document
	require.NoError(testInstance, jsoniter.Unmarshal(outputBuffer.Bytes(), &decoded))
	require.Empty(testInstance, decoded.Ahead)
}

func TestPrinterJSONWorkspaceWritesOneObjectPerLine(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	printer, printerError := report.NewPrinter(report.FormatJSON, outputBuffer, nil)
	require.NoError(testInstance, printerError)
	require.NoError(testInstance, printer.PrintWorkspace(workspaceEntries()))

	lines := strings.Split(strings.TrimSpace(outputBuffer.String()), "\n")
	require.Len(testInstance, lines, 3)
	require.JSONEq(testInstance, `{"path":"/workspace/beta","error":"branch \"feature\" not found"}`, lines[1])
}

func TestNewPrinterValidation(testInstance *testing.T) {
	_, missingOutputError := report.NewPrinter(report.FormatText, nil, nil)
	require.ErrorIs(testInstance, missingOutputError, report.ErrOutputNotConfigured)

	_, unsupportedError := report.NewPrinter(report.Format("csv"), &bytes.Buffer{}, nil)
	require.ErrorIs(testInstance, unsupportedError, report.ErrUnsupportedFormat)
}
