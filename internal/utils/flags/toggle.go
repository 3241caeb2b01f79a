package flags

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	toggleTypeNameConstant          = "bool"
	toggleValueSeparatorConstant    = "="
	longFlagPrefixConstant          = "--"
	shortFlagPrefixConstant         = "-"
	argumentTerminatorConstant      = "--"
	invalidToggleTemplateConstant   = "invalid toggle value %q: use true/false, yes/no, on/off, or 1/0"
	toggleDefaultUsageTemplate      = "%s (default %s)"
	toggleEnabledDefaultConstant    = "yes"
	toggleDisabledDefaultConstant   = "no"
	toggleImplicitValueConstant     = "true"
	toggleFlagRequiresNameConstant  = "toggle flags require a name"
	toggleFlagRequiresTargetMessage = "toggle flags require a target"
)

// toggleLiterals maps accepted spellings to their boolean value. The empty string reads as false so
// CI expressions that expand to nothing, joined or as a separate empty argument, disable the toggle.
var toggleLiterals = map[string]bool{
	"true":  true,
	"yes":   true,
	"on":    true,
	"1":     true,
	"y":     true,
	"false": false,
	"no":    false,
	"off":   false,
	"0":     false,
	"n":     false,
	"":      false,
}

type toggleValue struct {
	target *bool
}

// Set parses rawValue into the bound boolean.
func (value toggleValue) Set(rawValue string) error {
	parsed, known := toggleLiterals[strings.ToLower(strings.TrimSpace(rawValue))]
	if !known {
		return fmt.Errorf(invalidToggleTemplateConstant, rawValue)
	}
	*value.target = parsed
	return nil
}

// String renders the bound boolean.
func (value toggleValue) String() string {
	if value.target == nil {
		return strconv.FormatBool(false)
	}
	return strconv.FormatBool(*value.target)
}

// Type reports the pflag type name.
func (value toggleValue) Type() string {
	return toggleTypeNameConstant
}

// AddToggleFlag registers a boolean flag on flagSet. A bare flag enables the toggle; an explicit value accepts
// yes/no style literals either joined with "=" or, after NormalizeToggleArguments, as the next argument.
func AddToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, shorthand string, defaultValue bool, usage string) {
	if flagSet == nil {
		return
	}
	if len(name) == 0 {
		panic(toggleFlagRequiresNameConstant)
	}
	if target == nil {
		panic(toggleFlagRequiresTargetMessage)
	}

	*target = defaultValue
	flag := flagSet.VarPF(toggleValue{target: target}, name, shorthand, formatToggleUsage(usage, defaultValue))
	flag.NoOptDefVal = toggleImplicitValueConstant
}

func formatToggleUsage(usage string, defaultValue bool) string {
	defaultLabel := toggleDisabledDefaultConstant
	if defaultValue {
		defaultLabel = toggleEnabledDefaultConstant
	}
	return fmt.Sprintf(toggleDefaultUsageTemplate, usage, defaultLabel)
}

// NormalizeToggleArguments joins a toggle flag with a following literal value ("--dry-run no" becomes
// "--dry-run=no") for every toggle registered on command or its subcommands. Non-literal arguments stay
// positional. The result is never nil.
func NormalizeToggleArguments(command *cobra.Command, arguments []string) []string {
	longNames, shorthands := collectToggleFlags(command)

	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		argument := arguments[index]
		if argument == argumentTerminatorConstant {
			return append(normalized, arguments[index:]...)
		}

		nextIndex := index + 1
		if nextIndex < len(arguments) && isBareToggle(argument, longNames, shorthands) && isToggleLiteral(arguments[nextIndex]) {
			normalized = append(normalized, argument+toggleValueSeparatorConstant+arguments[nextIndex])
			index = nextIndex
			continue
		}
		normalized = append(normalized, argument)
	}
	return normalized
}

func collectToggleFlags(command *cobra.Command) (map[string]struct{}, map[string]struct{}) {
	longNames := map[string]struct{}{}
	shorthands := map[string]struct{}{}
	if command == nil {
		return longNames, shorthands
	}

	pending := []*cobra.Command{command}
	for len(pending) > 0 {
		current := pending[0]
		pending = append(pending[1:], current.Commands()...)

		for _, flagSet := range []*pflag.FlagSet{current.Flags(), current.PersistentFlags()} {
			flagSet.VisitAll(func(flag *pflag.Flag) {
				if _, isToggle := flag.Value.(toggleValue); !isToggle {
					return
				}
				longNames[flag.Name] = struct{}{}
				if len(flag.Shorthand) > 0 {
					shorthands[flag.Shorthand] = struct{}{}
				}
			})
		}
	}
	return longNames, shorthands
}

func isBareToggle(argument string, longNames map[string]struct{}, shorthands map[string]struct{}) bool {
	if strings.Contains(argument, toggleValueSeparatorConstant) {
		return false
	}
	if strings.HasPrefix(argument, longFlagPrefixConstant) {
		_, found := longNames[strings.TrimPrefix(argument, longFlagPrefixConstant)]
		return found
	}
	if strings.HasPrefix(argument, shortFlagPrefixConstant) {
		_, found := shorthands[strings.TrimPrefix(argument, shortFlagPrefixConstant)]
		return found
	}
	return false
}

func isToggleLiteral(argument string) bool {
	_, known := toggleLiterals[strings.ToLower(strings.TrimSpace(argument))]
	return known
}
