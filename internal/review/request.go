package review

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/revreq/internal/buildgate"
	"github.com/temirov/revreq/internal/execshell"
	"github.com/temirov/revreq/internal/forge"
	"github.com/temirov/revreq/internal/gatekeeper"
	"github.com/temirov/revreq/internal/pipeline"
	"github.com/temirov/revreq/internal/pullrequest"
	"github.com/temirov/revreq/internal/reference"
	"github.com/temirov/revreq/internal/release"
	"github.com/temirov/revreq/internal/reviewerrors"
	"github.com/temirov/revreq/internal/state"
)

const (
	restoreStepNameConstant            = "Restore state"
	versionsStepNameConstant           = "Toolchain versions"
	compileStepNameConstant            = "Compile"
	checksStepNameConstant             = "Static checks"
	pushStepNameConstant               = "Push review branch"
	milestoneStepNameConstant          = "Ensure milestone"
	priorPullRequestsStepNameConstant  = "Collect previous pull requests"
	composeStepNameConstant            = "Compose pull request"
	submitStepNameConstant             = "Open pull request"
	originRemoteNameConstant           = "origin"
	gitPushSubcommandConstant          = "push"
	stateRestoredTemplateConstant      = "Restored %s review of %s for %s from %s"
	stateRestoreFailureTemplate        = "Unable to restore state from %s"
	pushFailureTemplateConstant        = "Unable to push %s"
	pushedTemplateConstant             = "Pushed %s to %s"
	dryRunPushTemplateConstant         = "Dry run: %s not pushed"
	dryRunMilestoneTemplateConstant    = "Dry run: milestone %q not ensured"
	dryRunSubmitMessageConstant        = "Dry run: pull request not opened"
	pullRequestOpenedTemplateConstant  = "Opened draft pull request %s"
	dryRunCompletedTemplateConstant    = "Dry run completed for %s"
	requestCompletedLogMessageConstant = "request completed"
)

// RequestOptions configures the request sequence.
type RequestOptions struct {
	Token         string
	DryRun        bool
	Configuration CommandConfiguration
}

// RequestResult describes the composed and, unless dry-running, opened pull request.
type RequestResult struct {
	Title       string
	Body        string
	Comment     string
	PullRequest forge.PullRequest
}

// Request restores the setup state, re-checks the working tree, pushes the review branch, and opens the draft pull request.
func (service *Service) Request(executionContext context.Context, options RequestOptions) (RequestResult, error) {
	configuration := options.Configuration.Sanitize()

	composer, composerError := pullrequest.NewComposer(configuration.TimeZone)
	if composerError != nil {
		return RequestResult{}, composerError
	}
	submitter, submitterError := pullrequest.NewSubmitter(service.forge, service.console, service.logger)
	if submitterError != nil {
		return RequestResult{}, submitterError
	}
	store := state.NewStore(service.fileSystem, configuration.StateFile)

	var (
		result            RequestResult
		restoredState     state.State
		parsedReference   reference.ParsedReference
		verification      release.Verification
		approvalRecord    gatekeeper.ApprovalRecord
		actor             string
		gate              *buildgate.Gate
		milestoneNumber   int
		priorPullRequests []pullrequest.PriorPullRequest
	)

	steps := []pipeline.Step{
		pipeline.NewStep(restoreStepNameConstant, func(stepContext context.Context) error {
			loadedState, loadError := store.Load()
			if loadError != nil {
				return reviewerrors.Wrap(fmt.Sprintf(stateRestoreFailureTemplate, store.Path()), loadError)
			}
			if validationError := loadedState.ValidateForRequest(); validationError != nil {
				return reviewerrors.Wrap(fmt.Sprintf(stateRestoreFailureTemplate, store.Path()), validationError)
			}
			restoredState = loadedState

			var restoreError error
			if parsedReference, restoreError = restoredState.Reference(); restoreError != nil {
				return restoreError
			}
			if verification, restoreError = restoredState.Verification(); restoreError != nil {
				return restoreError
			}
			approvalRecord = restoredState.Approval()
			if actor, restoreError = service.actor(configuration); restoreError != nil {
				return restoreError
			}
			if gate, restoreError = buildgate.NewGate(service.executor, service.console, service.logger, buildgate.Options{
				WorkingDirectory: restoredState.CloneDirectory,
				MavenArguments:   configuration.MavenArguments,
			}); restoreError != nil {
				return restoreError
			}

			service.console.Info(fmt.Sprintf(stateRestoredTemplateConstant, parsedReference.ReviewType, parsedReference.VersionTag, actor, store.Path()))
			if restoredState.CacheHit {
				service.console.Info(cacheHitMessageConstant)
			}
			return nil
		}),
		pipeline.NewStep(versionsStepNameConstant, func(stepContext context.Context) error {
			return gate.DisplayVersions(stepContext)
		}),
		pipeline.NewStep(compileStepNameConstant, func(stepContext context.Context) error {
			return gate.Compile(stepContext)
		}),
		pipeline.NewStep(checksStepNameConstant, func(stepContext context.Context) error {
			checks, checksError := buildgate.NewTextCountChecks(service.executor, configuration.CheckDefinitions())
			if checksError != nil {
				return checksError
			}
			return gate.RunChecks(stepContext, checks)
		}),
		pipeline.NewStep(pushStepNameConstant, func(stepContext context.Context) error {
			if options.DryRun {
				service.console.Info(fmt.Sprintf(dryRunPushTemplateConstant, restoredState.ReviewBranch))
				return nil
			}
			return service.pushReviewBranch(stepContext, restoredState, options.Token)
		}),
		pipeline.NewStep(milestoneStepNameConstant, func(stepContext context.Context) error {
			if options.DryRun {
				service.console.Info(fmt.Sprintf(dryRunMilestoneTemplateConstant, parsedReference.MilestoneTitle()))
				return nil
			}
			milestone, milestoneError := submitter.EnsureMilestone(stepContext, mainRepository(parsedReference), parsedReference.MilestoneTitle())
			if milestoneError != nil {
				return milestoneError
			}
			milestoneNumber = milestone.Number
			return nil
		}),
		pipeline.NewStep(priorPullRequestsStepNameConstant, func(stepContext context.Context) error {
			found, listError := submitter.PriorPullRequests(stepContext, mainRepository(parsedReference), parsedReference.ProjectBranchPrefix())
			if listError != nil {
				return listError
			}
			priorPullRequests = found
			return nil
		}),
		pipeline.NewStep(composeStepNameConstant, func(stepContext context.Context) error {
			details := pullrequest.Details{
				Reference:         parsedReference,
				Release:           verification,
				Approval:          approvalRecord,
				WorkflowName:      configuration.WorkflowName,
				Actor:             actor,
				PriorPullRequests: priorPullRequests,
			}
			result.Title = composer.Title(details)

			var composeError error
			if result.Body, composeError = composer.Body(details); composeError != nil {
				return composeError
			}
			if result.Comment, composeError = composer.Comment(details); composeError != nil {
				return composeError
			}
			service.console.Info(result.Title)
			if options.DryRun {
				service.console.Block(result.Body)
				service.console.Block(result.Comment)
			}
			return nil
		}),
		pipeline.NewStep(submitStepNameConstant, func(stepContext context.Context) error {
			if options.DryRun {
				service.console.Info(dryRunSubmitMessageConstant)
				return nil
			}
			pullRequest, submitError := submitter.Submit(stepContext, pullrequest.Submission{
				Repository:      mainRepository(parsedReference),
				Title:           result.Title,
				Body:            result.Body,
				Comment:         result.Comment,
				Head:            restoredState.ReviewBranch,
				Base:            restoredState.DefaultBranch,
				Labels:          pullrequest.RequestLabels(parsedReference),
				MilestoneNumber: milestoneNumber,
				Assignees:       []string{actor},
				Reviewers:       configuration.Reviewers,
			})
			result.PullRequest = pullRequest
			return submitError
		}),
	}

	runError := pipeline.NewRunner(service.console, service.logger).Run(executionContext, steps)
	notice := fmt.Sprintf(pullRequestOpenedTemplateConstant, result.PullRequest.HTMLURL)
	if options.DryRun {
		notice = fmt.Sprintf(dryRunCompletedTemplateConstant, restoredState.ReviewBranch)
	}
	if concludeError := service.conclude(runError, notice); concludeError != nil {
		return result, concludeError
	}
	service.logger.Info(requestCompletedLogMessageConstant, zap.String(logFieldRepositoryConstant, mainRepository(parsedReference).String()), zap.Int(logFieldPullRequestConstant, result.PullRequest.Number), zap.Bool(logFieldDryRunConstant, options.DryRun))
	return result, nil
}

func (service *Service) pushReviewBranch(executionContext context.Context, restoredState state.State, token string) error {
	if len(token) > 0 {
		service.executor.RegisterSecret(token)
	}
	_, pushError := service.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitPushSubcommandConstant, originRemoteNameConstant, restoredState.ReviewBranch},
		WorkingDirectory: restoredState.CloneDirectory,
	})
	if pushError != nil {
		return reviewerrors.Wrap(fmt.Sprintf(pushFailureTemplateConstant, restoredState.ReviewBranch), pushError)
	}
	service.console.Success(fmt.Sprintf(pushedTemplateConstant, restoredState.ReviewBranch, originRemoteNameConstant))
	return nil
}
