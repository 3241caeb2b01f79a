package githubauth_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/temirov/revreq/internal/githubauth"
)

const (
	testTokenValueConstant     = "ghp_example"
	testTokenFilePathConstant  = "/secrets/token"
	testCustomVariableConstant = "CLASSROOM_TOKEN"
)

func TestParseTokenSource(testInstance *testing.T) {
	testCases := []struct {
		name           string
		sourceValue    string
		expectedSource githubauth.TokenSourceConfiguration
		expectError    bool
	}{
		{
			name:           "bare_environment_name",
			sourceValue:    testCustomVariableConstant,
			expectedSource: githubauth.TokenSourceConfiguration{Type: githubauth.TokenSourceTypeEnvironment, Reference: testCustomVariableConstant},
		},
		{
			name:           "explicit_environment",
			sourceValue:    "env:" + testCustomVariableConstant,
			expectedSource: githubauth.TokenSourceConfiguration{Type: githubauth.TokenSourceTypeEnvironment, Reference: testCustomVariableConstant},
		},
		{
			name:           "file_source",
			sourceValue:    "FILE: " + testTokenFilePathConstant,
			expectedSource: githubauth.TokenSourceConfiguration{Type: githubauth.TokenSourceTypeFile, Reference: testTokenFilePathConstant},
		},
		{name: "empty_source", sourceValue: "  ", expectError: true},
		{name: "missing_file_path", sourceValue: "file:", expectError: true},
		{name: "unsupported_type", sourceValue: "vault:secret", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			source, parseError := githubauth.ParseTokenSource(testCase.sourceValue)
			if testCase.expectError {
				require.Error(testInstance, parseError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedSource, source)
		})
	}
}

func TestTokenResolverResolve(testInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	require.NoError(testInstance, afero.WriteFile(fileSystem, testTokenFilePathConstant, []byte(testTokenValueConstant+"\n"), 0o600))
	require.NoError(testInstance, afero.WriteFile(fileSystem, "/secrets/empty", []byte("\n"), 0o600))

	testCases := []struct {
		name          string
		environment   map[string]string
		sourceValue   string
		expectedToken string
		expectError   bool
	}{
		{
			name:          "default_prefers_gh_token",
			environment:   map[string]string{githubauth.EnvGitHubToken: "second", githubauth.EnvGitHubCLIToken: testTokenValueConstant},
			expectedToken: testTokenValueConstant,
		},
		{
			name:          "default_skips_blank_values",
			environment:   map[string]string{githubauth.EnvGitHubCLIToken: " ", githubauth.EnvGitHubAPIToken: testTokenValueConstant},
			expectedToken: testTokenValueConstant,
		},
		{name: "default_missing", environment: map[string]string{}, expectError: true},
		{
			name:          "environment_source",
			environment:   map[string]string{testCustomVariableConstant: testTokenValueConstant},
			sourceValue:   "env:" + testCustomVariableConstant,
			expectedToken: testTokenValueConstant,
		},
		{name: "environment_source_missing", environment: map[string]string{}, sourceValue: "env:" + testCustomVariableConstant, expectError: true},
		{name: "file_source", sourceValue: "file:" + testTokenFilePathConstant, expectedToken: testTokenValueConstant},
		{name: "file_source_empty", sourceValue: "file:/secrets/empty", expectError: true},
		{name: "file_source_missing", sourceValue: "file:/secrets/absent", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			environment := testCase.environment
			resolver := githubauth.NewTokenResolver(func(key string) (string, bool) {
				value, found := environment[key]
				return value, found
			}, fileSystem)

			token, resolveError := resolver.Resolve(context.Background(), testCase.sourceValue)
			if testCase.expectError {
				require.Error(testInstance, resolveError)
				return
			}
			require.NoError(testInstance, resolveError)
			require.Equal(testInstance, testCase.expectedToken, token)
		})
	}
}
