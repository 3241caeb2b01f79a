package cli

import (
	_ "embed"
	"io"

	"github.com/spf13/cobra"
)

const (
	defaultsCommandUseConstant   = "defaults"
	defaultsCommandShortConstant = "Print the built-in configuration as a starting config.yaml"
)

//go:embed default_config.yaml
var defaultConfigurationDocument string

// EmbeddedDefaultConfiguration returns a fresh copy of the built-in configuration and its format.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return []byte(defaultConfigurationDocument), configurationTypeConstant
}

func newDefaultsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   defaultsCommandUseConstant,
		Short: defaultsCommandShortConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			_, writeError := io.WriteString(command.OutOrStdout(), defaultConfigurationDocument)
			return writeError
		},
	}
}
