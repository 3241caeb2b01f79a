package ui_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/revreq/internal/ui"
)

func TestConsoleAnnotatedGroupsAndMessages(testInstance *testing.T) {
	var outputBuffer bytes.Buffer
	console := ui.NewConsole(ui.ConsoleOptions{Writer: &outputBuffer, Annotations: true})

	console.StartGroup("Verify release")
	console.Info("release v1.2.0 found")
	console.Warning("workflow run list truncated")
	console.StartGroup("Verify approvals")
	console.Failure("no approved functionality issue")
	console.SummarizeWarnings()

	expectedOutput := "::group::Verify release\n" +
		"  release v1.2.0 found\n" +
		"::warning::workflow run list truncated\n" +
		"::endgroup::\n" +
		"::group::Verify approvals\n" +
		"::endgroup::\n" +
		"::error::no approved functionality issue\n" +
		"Completed with 1 warning(s)\n"
	require.Equal(testInstance, expectedOutput, outputBuffer.String())
}

func TestConsoleEndGroupWithoutOpenGroupIsNoop(testInstance *testing.T) {
	var outputBuffer bytes.Buffer
	console := ui.NewConsole(ui.ConsoleOptions{Writer: &outputBuffer, Annotations: true})

	console.EndGroup()

	require.Empty(testInstance, outputBuffer.String())
}

func TestConsoleSummarizeWarnings(testInstance *testing.T) {
	testCases := []struct {
		name            string
		warningMessages []string
		expectedSummary string
	}{
		{name: "no_warnings", warningMessages: nil, expectedSummary: ""},
		{name: "two_warnings", warningMessages: []string{"first", "second"}, expectedSummary: "Completed with 2 warning(s)"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			var outputBuffer bytes.Buffer
			console := ui.NewConsole(ui.ConsoleOptions{Writer: &outputBuffer})
			for _, warningMessage := range testCase.warningMessages {
				console.Warning(warningMessage)
			}
			outputBuffer.Reset()

			console.SummarizeWarnings()

			if len(testCase.expectedSummary) == 0 {
				require.Empty(testInstance, outputBuffer.String())
				return
			}
			require.Contains(testInstance, outputBuffer.String(), testCase.expectedSummary)
		})
	}
}

func TestConsolePlainOutputUsesHeadings(testInstance *testing.T) {
	var outputBuffer bytes.Buffer
	console := ui.NewConsole(ui.ConsoleOptions{Writer: &outputBuffer})

	console.StartGroup("Compile")
	console.Block("Apache Maven 3.9.6\n\n")
	console.Success("Compiled without warnings")
	console.Notice("pull request created")

	require.Contains(testInstance, outputBuffer.String(), "==> Compile")
	require.Contains(testInstance, outputBuffer.String(), "Apache Maven 3.9.6\n")
	require.Contains(testInstance, outputBuffer.String(), "✓ Compiled without warnings\n")
	require.Contains(testInstance, outputBuffer.String(), "pull request created")
	require.NotContains(testInstance, outputBuffer.String(), "::group::")
}

func TestRunningInGitHubActionsReadsLookup(testInstance *testing.T) {
	testCases := []struct {
		name     string
		values   map[string]string
		expected bool
	}{
		{name: "enabled", values: map[string]string{"GITHUB_ACTIONS": "true"}, expected: true},
		{name: "enabled_mixed_case", values: map[string]string{"GITHUB_ACTIONS": " True "}, expected: true},
		{name: "disabled", values: map[string]string{"GITHUB_ACTIONS": "false"}, expected: false},
		{name: "absent", values: map[string]string{}, expected: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			lookup := func(key string) (string, bool) {
				value, found := testCase.values[key]
				return value, found
			}
			require.Equal(testInstance, testCase.expected, ui.RunningInGitHubActions(lookup))
		})
	}
}
