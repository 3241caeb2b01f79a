package flags

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatChoiceUsage(testInstance *testing.T) {
	testCases := []struct {
		name        string
		description string
		choices     []string
		expected    string
	}{
		{
			name:        "review_types",
			description: "Review type",
			choices:     []string{"synchronous", "asynchronous"},
			expected:    "Review type (synchronous|asynchronous)",
		},
		{
			name:        "duplicates_and_blanks_dropped",
			description: " Review type ",
			choices:     []string{" sync ", "SYNC", "", "async"},
			expected:    "Review type (sync|async)",
		},
		{
			name:     "choices_only",
			choices:  []string{"sync", "async"},
			expected: "sync|async",
		},
		{
			name:        "description_only",
			description: "Review type",
			expected:    "Review type",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, FormatChoiceUsage(testCase.description, testCase.choices...))
		})
	}
}
