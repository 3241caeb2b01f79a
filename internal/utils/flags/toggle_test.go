package flags

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const (
	testToggleNameConstant      = "cache-hit"
	testToggleShorthandConstant = "c"
	testSubcommandNameConstant  = "setup"
)

func newToggleCommand(target *bool) (*cobra.Command, *cobra.Command) {
	rootCommand := &cobra.Command{Use: "root"}
	subcommand := &cobra.Command{Use: testSubcommandNameConstant, RunE: func(*cobra.Command, []string) error { return nil }}
	AddToggleFlag(subcommand.Flags(), target, testToggleNameConstant, testToggleShorthandConstant, false, "Restore from cache")
	rootCommand.AddCommand(subcommand)
	return rootCommand, subcommand
}

func TestToggleFlagValues(testInstance *testing.T) {
	testCases := []struct {
		name            string
		arguments       []string
		expectedValue   bool
		expectedChanged bool
	}{
		{name: "absent", arguments: []string{}, expectedValue: false, expectedChanged: false},
		{name: "bare", arguments: []string{"--cache-hit"}, expectedValue: true, expectedChanged: true},
		{name: "separate_yes", arguments: []string{"--cache-hit", "yes"}, expectedValue: true, expectedChanged: true},
		{name: "separate_uppercase_true", arguments: []string{"--cache-hit", "TRUE"}, expectedValue: true, expectedChanged: true},
		{name: "separate_off", arguments: []string{"--cache-hit", "off"}, expectedValue: false, expectedChanged: true},
		{name: "joined_one", arguments: []string{"--cache-hit=1"}, expectedValue: true, expectedChanged: true},
		{name: "joined_empty", arguments: []string{"--cache-hit="}, expectedValue: false, expectedChanged: true},
		{name: "separate_empty", arguments: []string{"--cache-hit", ""}, expectedValue: false, expectedChanged: true},
		{name: "shorthand_no", arguments: []string{"-c", "no"}, expectedValue: false, expectedChanged: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			cacheHit := true
			_, subcommand := newToggleCommand(&cacheHit)

			require.NoError(testInstance, subcommand.ParseFlags(NormalizeToggleArguments(subcommand, testCase.arguments)))
			require.Equal(testInstance, testCase.expectedValue, cacheHit)
			require.Equal(testInstance, testCase.expectedChanged, subcommand.Flags().Lookup(testToggleNameConstant).Changed)
		})
	}
}

func TestToggleFlagRejectsUnknownLiteral(testInstance *testing.T) {
	var cacheHit bool
	_, subcommand := newToggleCommand(&cacheHit)

	parseError := subcommand.ParseFlags([]string{"--cache-hit=maybe"})
	require.Error(testInstance, parseError)
	require.Contains(testInstance, parseError.Error(), `invalid toggle value "maybe"`)
	require.False(testInstance, cacheHit)
}

func TestNormalizeToggleArgumentsWalksCommandTree(testInstance *testing.T) {
	var cacheHit bool
	rootCommand, _ := newToggleCommand(&cacheHit)

	testCases := []struct {
		name      string
		arguments []string
		expected  []string
	}{
		{
			name:      "joins_literal",
			arguments: []string{testSubcommandNameConstant, "--cache-hit", "no", "--release", "v1.0.0"},
			expected:  []string{testSubcommandNameConstant, "--cache-hit=no", "--release", "v1.0.0"},
		},
		{
			name:      "keeps_non_literal_positional",
			arguments: []string{testSubcommandNameConstant, "--cache-hit", "maybe"},
			expected:  []string{testSubcommandNameConstant, "--cache-hit", "maybe"},
		},
		{
			name:      "ignores_non_toggle_flags",
			arguments: []string{testSubcommandNameConstant, "--release", "yes"},
			expected:  []string{testSubcommandNameConstant, "--release", "yes"},
		},
		{
			name:      "stops_at_terminator",
			arguments: []string{testSubcommandNameConstant, "--", "--cache-hit", "yes"},
			expected:  []string{testSubcommandNameConstant, "--", "--cache-hit", "yes"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, NormalizeToggleArguments(rootCommand, testCase.arguments))
		})
	}

	require.NotNil(testInstance, NormalizeToggleArguments(rootCommand, nil))
	require.Empty(testInstance, NormalizeToggleArguments(nil, nil))
}

func TestToggleUsageShowsDefault(testInstance *testing.T) {
	var dryRun bool
	command := &cobra.Command{}
	AddToggleFlag(command.Flags(), &dryRun, DryRunFlagName, "", true, DryRunFlagUsage)

	require.Equal(testInstance, DryRunFlagUsage+" (default yes)", command.Flags().Lookup(DryRunFlagName).Usage)
	require.True(testInstance, dryRun)
}
