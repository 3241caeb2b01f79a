package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultStatePath is where setup persists state for request.
	DefaultStatePath = ".revreq/state.yaml"
	// GitHubOutputEnvironmentVariable names the file GitHub Actions reads step outputs from.
	GitHubOutputEnvironmentVariable = "GITHUB_OUTPUT"
	// StateKeysOutputName lists the exported keys as a JSON array.
	StateKeysOutputName = "state_keys"

	stateDirectoryPermissionsConstant = 0o755
	stateFilePermissionsConstant      = 0o644
	outputLineTemplateConstant        = "%s=%s\n"
	outputBlockTemplateConstant       = "%s<<%s\n%s\n%s\n"
	outputDelimiterPrefixConstant     = "REVREQ_EOF_"
	lineBreakConstant                 = "\n"
	readFailureTemplateConstant       = "unable to read state file %s: %w"
	writeFailureTemplateConstant      = "unable to write state file %s: %w"
	parseFailureTemplateConstant      = "unable to parse state file %s: %w"
	exportFailureTemplateConstant     = "unable to export state to %s: %w"
)

// Store persists State as a flat YAML mapping.
type Store struct {
	fileSystem afero.Fs
	path       string
}

// NewStore constructs a Store. A nil fileSystem selects the operating system filesystem and an empty path selects DefaultStatePath.
func NewStore(fileSystem afero.Fs, path string) *Store {
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	if len(strings.TrimSpace(path)) == 0 {
		path = DefaultStatePath
	}
	return &Store{fileSystem: fileSystem, path: path}
}

// Path returns the state file location.
func (store *Store) Path() string {
	return store.path
}

// Save writes state, replacing any earlier file.
func (store *Store) Save(currentState State) error {
	values, valuesError := currentState.Values()
	if valuesError != nil {
		return valuesError
	}
	encoded, encodeError := yaml.Marshal(values)
	if encodeError != nil {
		return fmt.Errorf(writeFailureTemplateConstant, store.path, encodeError)
	}
	if directory := filepath.Dir(store.path); len(directory) > 0 {
		if mkdirError := store.fileSystem.MkdirAll(directory, stateDirectoryPermissionsConstant); mkdirError != nil {
			return fmt.Errorf(writeFailureTemplateConstant, store.path, mkdirError)
		}
	}
	if writeError := afero.WriteFile(store.fileSystem, store.path, encoded, stateFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(writeFailureTemplateConstant, store.path, writeError)
	}
	return nil
}

// Load restores state. A missing state file yields an empty state.
func (store *Store) Load() (State, error) {
	encoded, readError := afero.ReadFile(store.fileSystem, store.path)
	if readError != nil {
		if errors.Is(readError, os.ErrNotExist) {
			return State{}, nil
		}
		return State{}, fmt.Errorf(readFailureTemplateConstant, store.path, readError)
	}

	values := map[string]string{}
	if decodeError := yaml.Unmarshal(encoded, &values); decodeError != nil {
		return State{}, fmt.Errorf(parseFailureTemplateConstant, store.path, decodeError)
	}
	return FromValues(values)
}

// ExportOutputs appends every state value and the list of keys to the GitHub Actions output file at outputPath.
func (store *Store) ExportOutputs(currentState State, outputPath string) error {
	values, valuesError := currentState.Values()
	if valuesError != nil {
		return valuesError
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	encodedKeys, encodeError := json.Marshal(keys)
	if encodeError != nil {
		return fmt.Errorf(exportFailureTemplateConstant, outputPath, encodeError)
	}

	var builder strings.Builder
	for _, key := range keys {
		builder.WriteString(formatOutput(key, values[key]))
	}
	builder.WriteString(formatOutput(StateKeysOutputName, string(encodedKeys)))

	outputFile, openError := store.fileSystem.OpenFile(outputPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, stateFilePermissionsConstant)
	if openError != nil {
		return fmt.Errorf(exportFailureTemplateConstant, outputPath, openError)
	}
	_, writeError := outputFile.WriteString(builder.String())
	closeError := outputFile.Close()
	if writeError != nil {
		return fmt.Errorf(exportFailureTemplateConstant, outputPath, writeError)
	}
	if closeError != nil {
		return fmt.Errorf(exportFailureTemplateConstant, outputPath, closeError)
	}
	return nil
}

func formatOutput(key string, value string) string {
	if !strings.Contains(value, lineBreakConstant) {
		return fmt.Sprintf(outputLineTemplateConstant, key, value)
	}
	delimiter := outputDelimiterPrefixConstant + strings.ToUpper(key)
	return fmt.Sprintf(outputBlockTemplateConstant, key, delimiter, value, delimiter)
}
