package flags

import (
	"strings"
)

const (
	choiceListSeparatorConstant = "|"
	choiceListOpenConstant      = " ("
	choiceListCloseConstant     = ")"
)

// FormatChoiceUsage appends the accepted values to description, for example "Review type (synchronous|asynchronous)".
// Blank and case-insensitive duplicate choices are dropped. pflag reports the default separately.
func FormatChoiceUsage(description string, choices ...string) string {
	distinctChoices := make([]string, 0, len(choices))
	seenChoices := make(map[string]struct{}, len(choices))
	for _, choice := range choices {
		trimmedChoice := strings.TrimSpace(choice)
		choiceKey := strings.ToLower(trimmedChoice)
		if _, seen := seenChoices[choiceKey]; seen || len(trimmedChoice) == 0 {
			continue
		}
		seenChoices[choiceKey] = struct{}{}
		distinctChoices = append(distinctChoices, trimmedChoice)
	}

	trimmedDescription := strings.TrimSpace(description)
	if len(distinctChoices) == 0 {
		return trimmedDescription
	}
	choiceList := strings.Join(distinctChoices, choiceListSeparatorConstant)
	if len(trimmedDescription) == 0 {
		return choiceList
	}
	return trimmedDescription + choiceListOpenConstant + choiceList + choiceListCloseConstant
}
