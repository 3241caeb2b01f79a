package review

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/revreq/internal/execshell"
	"github.com/temirov/revreq/internal/forge"
	"github.com/temirov/revreq/internal/githubauth"
	"github.com/temirov/revreq/internal/reference"
	"github.com/temirov/revreq/internal/ui"
	"github.com/temirov/revreq/internal/utils/flags"
)

const (
	setupCommandUseConstant              = "setup"
	setupCommandShortDescriptionConstant = "Verify a release and prepare its review branch"
	setupCommandLongDescriptionConstant  = "setup verifies that the release passed its test workflow and that the project has exactly one approved functionality issue, then clones the repository, creates the review branch at the release commit, and saves the state used by request."
	requestCommandUseConstant            = "request"
	requestShortDescriptionConstant      = "Compile the review branch and open a draft review pull request"
	requestLongDescriptionConstant       = "request restores the state saved by setup, compiles the project with warnings as errors, runs the static checks, pushes the review branch, and opens a draft pull request with labels, milestone, assignee, reviewers, and instructions."
	unexpectedArgumentsMessageConstant   = "review commands do not accept positional arguments"
	releaseFlagNameConstant              = "release"
	releaseFlagUsageConstant             = "Release tag to review (v<project>.<reviews>.<patches>)"
	reviewTypeFlagNameConstant           = "type"
	reviewTypeFlagDescriptionConstant    = "Review type"
	cacheHitFlagNameConstant             = "cache-hit"
	cacheHitFlagUsageConstant            = "Whether the Maven dependency cache was restored"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the current review configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the setup and request commands.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConsoleLoggerProvider LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Output                io.Writer
	ForceColor            bool
	Forge                 ForgeClient
	Executor              CommandExecutor
	FileSystem            afero.Fs
	EnvironmentLookup     EnvironmentLookup
}

// BuildSetupCommand constructs the setup command.
func (builder *CommandBuilder) BuildSetupCommand() (*cobra.Command, error) {
	var cacheHit bool
	var repositoryFlags *flags.RepositoryFlags

	command := &cobra.Command{
		Use:   setupCommandUseConstant,
		Short: setupCommandShortDescriptionConstant,
		Long:  setupCommandLongDescriptionConstant,
		RunE: func(command *cobra.Command, arguments []string) error {
			if len(arguments) > 0 {
				return errUnexpectedArguments
			}
			releaseTag, _ := command.Flags().GetString(releaseFlagNameConstant)
			reviewType, _ := command.Flags().GetString(reviewTypeFlagNameConstant)
			configuration := builder.resolveConfiguration(repositoryFlags)

			service, token, serviceError := builder.buildService(command, configuration)
			if serviceError != nil {
				return serviceError
			}
			_, setupError := service.Setup(command.Context(), SetupOptions{
				ReleaseTag:    releaseTag,
				ReviewType:    reviewType,
				CacheHit:      cacheHit,
				Token:         token,
				Configuration: configuration,
			})
			return setupError
		},
	}

	command.Flags().String(releaseFlagNameConstant, "", releaseFlagUsageConstant)
	command.Flags().String(reviewTypeFlagNameConstant, "", flags.FormatChoiceUsage(reviewTypeFlagDescriptionConstant, string(reference.ReviewTypeSynchronous), string(reference.ReviewTypeAsynchronous)))
	flags.AddToggleFlag(command.Flags(), &cacheHit, cacheHitFlagNameConstant, "", false, cacheHitFlagUsageConstant)
	repositoryFlags = flags.BindRepositoryFlags(command)
	for _, requiredFlagName := range []string{releaseFlagNameConstant, reviewTypeFlagNameConstant} {
		if markError := command.MarkFlagRequired(requiredFlagName); markError != nil {
			return nil, markError
		}
	}

	return command, nil
}

// BuildRequestCommand constructs the request command.
func (builder *CommandBuilder) BuildRequestCommand() (*cobra.Command, error) {
	var dryRun bool
	var repositoryFlags *flags.RepositoryFlags

	command := &cobra.Command{
		Use:   requestCommandUseConstant,
		Short: requestShortDescriptionConstant,
		Long:  requestLongDescriptionConstant,
		RunE: func(command *cobra.Command, arguments []string) error {
			if len(arguments) > 0 {
				return errUnexpectedArguments
			}
			configuration := builder.resolveConfiguration(repositoryFlags)

			service, token, serviceError := builder.buildService(command, configuration)
			if serviceError != nil {
				return serviceError
			}
			_, requestError := service.Request(command.Context(), RequestOptions{
				Token:         token,
				DryRun:        dryRun,
				Configuration: configuration,
			})
			return requestError
		},
	}

	flags.AddToggleFlag(command.Flags(), &dryRun, flags.DryRunFlagName, "", false, flags.DryRunFlagUsage)
	repositoryFlags = flags.BindRepositoryFlags(command)

	return command, nil
}

func (builder *CommandBuilder) resolveConfiguration(repositoryFlags *flags.RepositoryFlags) CommandConfiguration {
	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	repositoryFlags.Apply(&configuration.Owner, &configuration.Repository, &configuration.TestRepository)
	return configuration.Sanitize()
}

// buildService resolves the token and assembles the service with real collaborators where none were injected.
func (builder *CommandBuilder) buildService(command *cobra.Command, configuration CommandConfiguration) (*Service, string, error) {
	executionContext := command.Context()
	if executionContext == nil {
		executionContext = context.Background()
	}
	logger := builder.resolveLogger(builder.LoggerProvider)

	tokenResolver := githubauth.NewTokenResolver(githubauth.EnvironmentLookup(builder.EnvironmentLookup), builder.FileSystem)
	token, tokenError := tokenResolver.Resolve(executionContext, configuration.TokenSource)
	if tokenError != nil {
		return nil, "", tokenError
	}

	forgeClient := builder.Forge
	if forgeClient == nil {
		client, clientError := forge.NewClient(executionContext, forge.ClientOptions{Token: token, BaseURL: configuration.APIBaseURL, Logger: logger})
		if clientError != nil {
			return nil, "", clientError
		}
		forgeClient = client
	}

	executor := builder.Executor
	if executor == nil {
		observer := ui.NewCommandProgressLogger(builder.resolveLogger(builder.ConsoleLoggerProvider))
		shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewProcessRunner(), observer)
		if executorError != nil {
			return nil, "", executorError
		}
		executor = shellExecutor
	}
	executor.RegisterSecret(token)

	output := builder.Output
	if output == nil {
		output = command.OutOrStdout()
	}
	annotations := ui.RunningInGitHubActions(builder.EnvironmentLookup)
	console := ui.NewConsole(ui.ConsoleOptions{Writer: output, ForceColor: builder.ForceColor || annotations, Annotations: annotations})

	service, serviceError := NewService(Dependencies{
		Forge:             forgeClient,
		Executor:          executor,
		Console:           console,
		FileSystem:        builder.FileSystem,
		Logger:            logger,
		EnvironmentLookup: builder.EnvironmentLookup,
	})
	if serviceError != nil {
		return nil, "", serviceError
	}
	return service, token, nil
}

func (builder *CommandBuilder) resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
