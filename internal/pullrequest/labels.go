package pullrequest

import (
	"slices"
	"strings"
)

const (
	projectLabelPrefixConstant = "project"
	versionLabelPrefixConstant = "v"
)

// SortLabels returns a copy of labels with project labels first and version labels second.
func SortLabels(labels []string) []string {
	sortedLabels := slices.Clone(labels)
	slices.SortFunc(sortedLabels, compareLabels)
	return sortedLabels
}

// compareLabels keeps the historical ordering of review tables. Labels outside the project and
// version groups compare as -1 in both directions unless equal, so their relative order depends
// on the input order.
func compareLabels(first string, second string) int {
	switch {
	case strings.HasPrefix(first, projectLabelPrefixConstant):
		return -1
	case strings.HasPrefix(second, projectLabelPrefixConstant):
		return 1
	case strings.HasPrefix(first, versionLabelPrefixConstant):
		return -1
	case strings.HasPrefix(second, versionLabelPrefixConstant):
		return 1
	case first == second:
		return 0
	default:
		return -1
	}
}
