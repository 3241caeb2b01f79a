package review

import (
	"strings"

	"github.com/temirov/revreq/internal/buildgate"
	"github.com/temirov/revreq/internal/checkout"
	"github.com/temirov/revreq/internal/pullrequest"
	"github.com/temirov/revreq/internal/release"
	"github.com/temirov/revreq/internal/state"
	pathutils "github.com/temirov/revreq/internal/utils/path"
)

const (
	configurationKeySeparatorConstant       = "."
	ownerConfigurationKeyConstant           = "owner"
	repositoryConfigurationKeyConstant      = "repository"
	testRepositoryConfigurationKeyConstant  = "test_repository"
	defaultBranchConfigurationKeyConstant   = "default_branch"
	tokenSourceConfigurationKeyConstant     = "token_source"
	apiBaseURLConfigurationKeyConstant      = "api_base_url"
	workflowNameConfigurationKeyConstant    = "workflow_name"
	cloneDirectoryConfigurationKeyConstant  = "clone_directory"
	sourceDirectoryConfigurationKeyConstant = "source_directory"
	stateFileConfigurationKeyConstant       = "state_file"
	timeZoneConfigurationKeyConstant        = "time_zone"
	reviewersConfigurationKeyConstant       = "reviewers"
	actorConfigurationKeyConstant           = "actor"
	botNameConfigurationKeyConstant         = "bot_name"
	botEmailConfigurationKeyConstant        = "bot_email"
	mavenArgumentsConfigurationKeyConstant  = "maven_arguments"
)

// CommandConfiguration captures configuration values shared by the setup and request commands.
type CommandConfiguration struct {
	Owner           string                          `mapstructure:"owner"`
	Repository      string                          `mapstructure:"repository"`
	TestRepository  string                          `mapstructure:"test_repository"`
	DefaultBranch   string                          `mapstructure:"default_branch"`
	TokenSource     string                          `mapstructure:"token_source"`
	APIBaseURL      string                          `mapstructure:"api_base_url"`
	WorkflowName    string                          `mapstructure:"workflow_name"`
	CloneDirectory  string                          `mapstructure:"clone_directory"`
	SourceDirectory string                          `mapstructure:"source_directory"`
	StateFile       string                          `mapstructure:"state_file"`
	TimeZone        string                          `mapstructure:"time_zone"`
	Reviewers       []string                        `mapstructure:"reviewers"`
	Actor           string                          `mapstructure:"actor"`
	BotName         string                          `mapstructure:"bot_name"`
	BotEmail        string                          `mapstructure:"bot_email"`
	MavenArguments  []string                        `mapstructure:"maven_arguments"`
	Checks          []buildgate.TextCountDefinition `mapstructure:"checks"`
}

// DefaultCommandConfiguration provides baseline configuration values for the review commands.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		WorkflowName:    release.DefaultWorkflowName,
		CloneDirectory:  checkout.DefaultCloneDirectory,
		SourceDirectory: checkout.DefaultSourceDirectory,
		StateFile:       state.DefaultStatePath,
		TimeZone:        pullrequest.DefaultTimeZone,
		BotName:         checkout.DefaultBotName,
		BotEmail:        checkout.DefaultBotEmail,
		MavenArguments:  append([]string(nil), buildgate.DefaultMavenArguments...),
	}
}

// DefaultConfigurationValues returns viper defaults for the review configuration rooted at prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationKey(prefix, ownerConfigurationKeyConstant):           defaults.Owner,
		configurationKey(prefix, repositoryConfigurationKeyConstant):      defaults.Repository,
		configurationKey(prefix, testRepositoryConfigurationKeyConstant):  defaults.TestRepository,
		configurationKey(prefix, defaultBranchConfigurationKeyConstant):   defaults.DefaultBranch,
		configurationKey(prefix, tokenSourceConfigurationKeyConstant):     defaults.TokenSource,
		configurationKey(prefix, apiBaseURLConfigurationKeyConstant):      defaults.APIBaseURL,
		configurationKey(prefix, workflowNameConfigurationKeyConstant):    defaults.WorkflowName,
		configurationKey(prefix, cloneDirectoryConfigurationKeyConstant):  defaults.CloneDirectory,
		configurationKey(prefix, sourceDirectoryConfigurationKeyConstant): defaults.SourceDirectory,
		configurationKey(prefix, stateFileConfigurationKeyConstant):       defaults.StateFile,
		configurationKey(prefix, timeZoneConfigurationKeyConstant):        defaults.TimeZone,
		configurationKey(prefix, reviewersConfigurationKeyConstant):       []string{},
		configurationKey(prefix, actorConfigurationKeyConstant):           defaults.Actor,
		configurationKey(prefix, botNameConfigurationKeyConstant):         defaults.BotName,
		configurationKey(prefix, botEmailConfigurationKeyConstant):        defaults.BotEmail,
		configurationKey(prefix, mavenArgumentsConfigurationKeyConstant):  defaults.MavenArguments,
	}
}

// Sanitize trims configuration values, drops blank list entries, and expands home directories in paths.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	homeExpander := pathutils.NewHomeExpander()

	sanitized.Owner = strings.TrimSpace(configuration.Owner)
	sanitized.Repository = strings.TrimSpace(configuration.Repository)
	sanitized.TestRepository = strings.TrimSpace(configuration.TestRepository)
	sanitized.DefaultBranch = strings.TrimSpace(configuration.DefaultBranch)
	sanitized.TokenSource = strings.TrimSpace(configuration.TokenSource)
	sanitized.APIBaseURL = strings.TrimSpace(configuration.APIBaseURL)
	sanitized.WorkflowName = strings.TrimSpace(configuration.WorkflowName)
	sanitized.CloneDirectory = homeExpander.Expand(strings.TrimSpace(configuration.CloneDirectory))
	sanitized.SourceDirectory = strings.TrimSpace(configuration.SourceDirectory)
	sanitized.StateFile = homeExpander.Expand(strings.TrimSpace(configuration.StateFile))
	sanitized.TimeZone = strings.TrimSpace(configuration.TimeZone)
	sanitized.Reviewers = sanitizeValues(configuration.Reviewers)
	sanitized.Actor = strings.TrimSpace(configuration.Actor)
	sanitized.BotName = strings.TrimSpace(configuration.BotName)
	sanitized.BotEmail = strings.TrimSpace(configuration.BotEmail)
	sanitized.MavenArguments = sanitizeValues(configuration.MavenArguments)
	sanitized.Checks = append([]buildgate.TextCountDefinition(nil), configuration.Checks...)

	return sanitized
}

// CheckDefinitions returns the configured static checks, or the default checks scanning the source directory.
func (configuration CommandConfiguration) CheckDefinitions() []buildgate.TextCountDefinition {
	if len(configuration.Checks) > 0 {
		definitions := make([]buildgate.TextCountDefinition, 0, len(configuration.Checks))
		for _, definition := range configuration.Checks {
			if len(strings.TrimSpace(definition.Directory)) == 0 {
				definition.Directory = configuration.sourceDirectory()
			}
			definitions = append(definitions, definition)
		}
		return definitions
	}
	return buildgate.DefaultCheckDefinitions(configuration.sourceDirectory())
}

func (configuration CommandConfiguration) sourceDirectory() string {
	if len(configuration.SourceDirectory) == 0 {
		return checkout.DefaultSourceDirectory
	}
	return configuration.SourceDirectory
}

func configurationKey(prefix string, key string) string {
	trimmedPrefix := strings.TrimSpace(prefix)
	if len(trimmedPrefix) == 0 {
		return key
	}
	return trimmedPrefix + configurationKeySeparatorConstant + key
}

func sanitizeValues(raw []string) []string {
	sanitized := make([]string, 0, len(raw))
	for _, candidate := range raw {
		trimmed := strings.TrimSpace(candidate)
		if len(trimmed) == 0 {
			continue
		}
		sanitized = append(sanitized, trimmed)
	}
	return sanitized
}
