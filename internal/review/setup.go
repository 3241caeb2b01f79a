package review

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/revreq/internal/checkout"
	"github.com/temirov/revreq/internal/gatekeeper"
	"github.com/temirov/revreq/internal/pipeline"
	"github.com/temirov/revreq/internal/reference"
	"github.com/temirov/revreq/internal/release"
	"github.com/temirov/revreq/internal/reviewerrors"
	"github.com/temirov/revreq/internal/state"
)

const (
	parseStepNameConstant            = "Parse release reference"
	verifyStepNameConstant           = "Verify release"
	approvalStepNameConstant         = "Check approval issues"
	prepareStepNameConstant          = "Prepare review branch"
	saveStepNameConstant             = "Save state"
	referenceParsedTemplateConstant  = "Project %d, review %d, patch %d (%s review) of %s/%s"
	defaultBranchFoundTemplate       = "Default branch of %s is %s"
	defaultBranchFailureTemplate     = "Unable to find the default branch of %s"
	cacheHitMessageConstant          = "Maven dependencies restored from cache"
	cacheMissMessageConstant         = "Maven dependencies not cached"
	stateSavedTemplateConstant       = "Saved state to %s"
	stateExportedTemplateConstant    = "Exported state to %s"
	stateSaveFailureTemplate         = "Unable to save state to %s"
	stateExportFailureTemplate       = "Unable to export state to %s"
	setupCompletedTemplateConstant   = "Review branch %s is ready for %s"
	setupCompletedLogMessageConstant = "setup completed"
)

// SetupOptions configures the setup sequence.
type SetupOptions struct {
	ReleaseTag    string
	ReviewType    string
	CacheHit      bool
	Token         string
	Configuration CommandConfiguration
}

// Setup verifies the release and approvals, prepares the review branch, and saves the resulting state.
func (service *Service) Setup(executionContext context.Context, options SetupOptions) (state.State, error) {
	configuration := options.Configuration.Sanitize()

	verifier, verifierError := release.NewVerifier(service.forge, service.console, service.logger, configuration.WorkflowName)
	if verifierError != nil {
		return state.State{}, verifierError
	}
	approvalGatekeeper, gatekeeperError := gatekeeper.NewGatekeeper(service.forge, service.console, service.logger)
	if gatekeeperError != nil {
		return state.State{}, gatekeeperError
	}
	preparer, preparerError := checkout.NewPreparer(service.executor, service.fileSystem, service.console, service.logger)
	if preparerError != nil {
		return state.State{}, preparerError
	}
	store := state.NewStore(service.fileSystem, configuration.StateFile)

	var currentState state.State
	var parsedReference reference.ParsedReference

	steps := []pipeline.Step{
		pipeline.NewStep(parseStepNameConstant, func(stepContext context.Context) error {
			repositoryContext, contextError := service.repositoryContext(configuration)
			if contextError != nil {
				return contextError
			}
			parsed, parseError := reference.ParseReference(options.ReleaseTag, options.ReviewType, repositoryContext)
			if parseError != nil {
				return parseError
			}
			parsedReference = parsed
			currentState.RecordReference(parsedReference)
			service.console.Info(fmt.Sprintf(referenceParsedTemplateConstant, parsedReference.ProjectNumber, parsedReference.ReviewCount, parsedReference.PatchCount, parsedReference.ReviewType, parsedReference.Owner, parsedReference.MainRepository))
			return nil
		}),
		pipeline.NewStep(verifyStepNameConstant, func(stepContext context.Context) error {
			verification, verificationError := verifier.Verify(stepContext, parsedReference)
			if verificationError != nil {
				return verificationError
			}
			currentState.RecordVerification(verification)
			return nil
		}),
		pipeline.NewStep(approvalStepNameConstant, func(stepContext context.Context) error {
			approvalRecord, checkError := approvalGatekeeper.Check(stepContext, parsedReference)
			if checkError != nil {
				return checkError
			}
			currentState.RecordApproval(approvalRecord)
			return nil
		}),
		pipeline.NewStep(prepareStepNameConstant, func(stepContext context.Context) error {
			defaultBranch, branchError := service.defaultBranch(stepContext, configuration, parsedReference)
			if branchError != nil {
				return branchError
			}
			result, prepareError := preparer.Prepare(stepContext, parsedReference, checkout.Options{
				Token:           options.Token,
				DefaultBranch:   defaultBranch,
				CloneDirectory:  configuration.CloneDirectory,
				SourceDirectory: configuration.SourceDirectory,
				BotName:         configuration.BotName,
				BotEmail:        configuration.BotEmail,
			})
			if prepareError != nil {
				return prepareError
			}
			currentState.DefaultBranch = defaultBranch
			currentState.ReviewBranch = result.ReviewBranch
			currentState.CloneDirectory = result.CloneDirectory
			return nil
		}),
		pipeline.NewStep(saveStepNameConstant, func(stepContext context.Context) error {
			currentState.CacheHit = options.CacheHit
			if currentState.CacheHit {
				service.console.Info(cacheHitMessageConstant)
			} else {
				service.console.Info(cacheMissMessageConstant)
			}
			if saveError := store.Save(currentState); saveError != nil {
				return reviewerrors.Wrap(fmt.Sprintf(stateSaveFailureTemplate, store.Path()), saveError)
			}
			service.console.Info(fmt.Sprintf(stateSavedTemplateConstant, store.Path()))

			outputPath, found := service.lookup(state.GitHubOutputEnvironmentVariable)
			if !found {
				return nil
			}
			if exportError := store.ExportOutputs(currentState, outputPath); exportError != nil {
				return reviewerrors.Wrap(fmt.Sprintf(stateExportFailureTemplate, outputPath), exportError)
			}
			service.console.Info(fmt.Sprintf(stateExportedTemplateConstant, outputPath))
			return nil
		}),
	}

	runError := pipeline.NewRunner(service.console, service.logger).Run(executionContext, steps)
	if concludeError := service.conclude(runError, fmt.Sprintf(setupCompletedTemplateConstant, currentState.ReviewBranch, currentState.VersionTag)); concludeError != nil {
		return state.State{}, concludeError
	}
	service.logger.Info(setupCompletedLogMessageConstant, zap.String(logFieldRepositoryConstant, mainRepository(parsedReference).String()), zap.String(logFieldTagConstant, parsedReference.VersionTag))
	return currentState, nil
}

// defaultBranch returns the configured default branch or asks the forge for it.
func (service *Service) defaultBranch(executionContext context.Context, configuration CommandConfiguration, parsedReference reference.ParsedReference) (string, error) {
	if len(configuration.DefaultBranch) > 0 {
		return configuration.DefaultBranch, nil
	}
	repository := mainRepository(parsedReference)
	defaultBranch, lookupError := service.forge.DefaultBranch(executionContext, repository)
	if lookupError != nil {
		return "", reviewerrors.Wrap(fmt.Sprintf(defaultBranchFailureTemplate, repository.String()), lookupError)
	}
	service.console.Info(fmt.Sprintf(defaultBranchFoundTemplate, repository.String(), defaultBranch))
	return defaultBranch, nil
}
