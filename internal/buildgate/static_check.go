package buildgate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/revreq/internal/execshell"
	"github.com/temirov/revreq/internal/reviewerrors"
)

const (
	// DebugMarkerCheckName names the leftover marker scan.
	DebugMarkerCheckName = "debug_markers"
	// EntryPointCheckName names the duplicate entry point scan.
	EntryPointCheckName = "entry_points"

	debugMarkerPatternConstant      = `//\s*TODO`
	debugMarkerMessageConstant      = "leftover markers"
	entryPointPatternConstant       = `public\s+static\s+void\s+main`
	entryPointExcludedFileConstant  = "Driver.java"
	entryPointMessageConstant       = "extra entry points"
	grepRecursiveFlagConstant       = "-r"
	grepLineNumberFlagConstant      = "-n"
	grepIgnoreCaseFlagConstant      = "-i"
	grepExcludeFlagTemplateConstant = "--exclude=%s"
	grepExtendedRegexpFlagConstant  = "-E"
	grepNoMatchExitCodeConstant     = 1
	lineSeparatorConstant           = "\n"
	countMismatchTemplateConstant   = "%s: found %d match(es) for %q in %s, expected exactly %d"
	searchFailureTemplateConstant   = "unable to search %s for %q"
	definitionFieldTemplateConstant = "static check %q"
	missingPatternMessageConstant   = "requires a pattern"
	missingDirectoryMessageConstant = "requires a directory"
	missingNameMessageConstant      = "requires a name"
	searcherRequiredMessageConstant = "static check requires a text searcher"
)

// ErrSearcherNotConfigured indicates a text count check was constructed without a searcher.
var ErrSearcherNotConfigured = errors.New(searcherRequiredMessageConstant)

// CheckOutcome reports what a static check observed.
type CheckOutcome struct {
	Count   int
	Matches []string
}

// StaticCheck inspects the source tree of a working directory.
type StaticCheck interface {
	Name() string
	Evaluate(executionContext context.Context, workingDirectory string) (CheckOutcome, error)
}

// TextCountDefinition describes a text scan with an exact expected match count.
type TextCountDefinition struct {
	Name          string `mapstructure:"name"`
	Pattern       string `mapstructure:"pattern"`
	IgnoreCase    bool   `mapstructure:"ignore_case"`
	ExcludedFile  string `mapstructure:"exclude"`
	Directory     string `mapstructure:"directory"`
	ExpectedCount int    `mapstructure:"expected_count"`
	Message       string `mapstructure:"message"`
}

// DebugMarkerCheckDefinition expects the single marker kept by the project template.
func DebugMarkerCheckDefinition(directory string) TextCountDefinition {
	return TextCountDefinition{
		Name:          DebugMarkerCheckName,
		Pattern:       debugMarkerPatternConstant,
		IgnoreCase:    true,
		Directory:     directory,
		ExpectedCount: 1,
		Message:       debugMarkerMessageConstant,
	}
}

// EntryPointCheckDefinition expects exactly one main method outside the driver.
func EntryPointCheckDefinition(directory string) TextCountDefinition {
	return TextCountDefinition{
		Name:          EntryPointCheckName,
		Pattern:       entryPointPatternConstant,
		ExcludedFile:  entryPointExcludedFileConstant,
		Directory:     directory,
		ExpectedCount: 1,
		Message:       entryPointMessageConstant,
	}
}

// DefaultCheckDefinitions returns the debug marker and entry point checks for directory.
func DefaultCheckDefinitions(directory string) []TextCountDefinition {
	return []TextCountDefinition{DebugMarkerCheckDefinition(directory), EntryPointCheckDefinition(directory)}
}

// TextCountCheck counts grep matches and requires an exact count.
type TextCountCheck struct {
	definition TextCountDefinition
	searcher   TextSearcher
}

// NewTextCountCheck validates definition and binds it to searcher.
func NewTextCountCheck(searcher TextSearcher, definition TextCountDefinition) (*TextCountCheck, error) {
	if searcher == nil {
		return nil, ErrSearcherNotConfigured
	}
	definition.Name = strings.TrimSpace(definition.Name)
	definition.Directory = strings.TrimSpace(definition.Directory)
	definition.ExcludedFile = strings.TrimSpace(definition.ExcludedFile)
	fieldName := fmt.Sprintf(definitionFieldTemplateConstant, definition.Name)
	switch {
	case len(definition.Name) == 0:
		return nil, reviewerrors.ValidationError{FieldName: fieldName, Message: missingNameMessageConstant}
	case len(strings.TrimSpace(definition.Pattern)) == 0:
		return nil, reviewerrors.ValidationError{FieldName: fieldName, Message: missingPatternMessageConstant}
	case len(definition.Directory) == 0:
		return nil, reviewerrors.ValidationError{FieldName: fieldName, Message: missingDirectoryMessageConstant}
	}
	if len(strings.TrimSpace(definition.Message)) == 0 {
		definition.Message = definition.Name
	}
	return &TextCountCheck{definition: definition, searcher: searcher}, nil
}

// NewTextCountChecks builds one check per definition.
func NewTextCountChecks(searcher TextSearcher, definitions []TextCountDefinition) ([]StaticCheck, error) {
	checks := make([]StaticCheck, 0, len(definitions))
	for _, definition := range definitions {
		check, checkError := NewTextCountCheck(searcher, definition)
		if checkError != nil {
			return nil, checkError
		}
		checks = append(checks, check)
	}
	return checks, nil
}

// Name returns the check name.
func (check *TextCountCheck) Name() string {
	return check.definition.Name
}

// Evaluate runs grep and compares the number of matching lines with the expected count.
func (check *TextCountCheck) Evaluate(executionContext context.Context, workingDirectory string) (CheckOutcome, error) {
	result, searchError := check.searcher.ExecuteGrep(executionContext, execshell.CommandDetails{
		Arguments:        check.arguments(),
		WorkingDirectory: workingDirectory,
	})
	if searchError != nil {
		exitCode, exited := execshell.ExitCode(searchError)
		if !exited || exitCode != grepNoMatchExitCodeConstant {
			return CheckOutcome{}, reviewerrors.Wrap(fmt.Sprintf(searchFailureTemplateConstant, check.definition.Directory, check.definition.Pattern), searchError)
		}
		result = execshell.ExecutionResult{}
	}

	matches := matchingLines(result.StandardOutput)
	outcome := CheckOutcome{Count: len(matches), Matches: matches}
	if outcome.Count != check.definition.ExpectedCount {
		return outcome, reviewerrors.PolicyViolationError{
			Policy:  check.definition.Name,
			Message: fmt.Sprintf(countMismatchTemplateConstant, check.definition.Message, outcome.Count, check.definition.Pattern, check.definition.Directory, check.definition.ExpectedCount),
		}
	}
	return outcome, nil
}

func (check *TextCountCheck) arguments() []string {
	arguments := []string{grepRecursiveFlagConstant, grepLineNumberFlagConstant}
	if check.definition.IgnoreCase {
		arguments = append(arguments, grepIgnoreCaseFlagConstant)
	}
	if len(check.definition.ExcludedFile) > 0 {
		arguments = append(arguments, fmt.Sprintf(grepExcludeFlagTemplateConstant, check.definition.ExcludedFile))
	}
	return append(arguments, grepExtendedRegexpFlagConstant, check.definition.Pattern, check.definition.Directory)
}

func matchingLines(output string) []string {
	lines := strings.Split(output, lineSeparatorConstant)
	matches := make([]string, 0, len(lines))
	for _, line := range lines {
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}
		matches = append(matches, line)
	}
	return matches
}
