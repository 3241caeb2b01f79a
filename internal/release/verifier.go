package release

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/revreq/internal/forge"
	"github.com/temirov/revreq/internal/reference"
	"github.com/temirov/revreq/internal/reviewerrors"
)

const (
	// DefaultWorkflowName names the test workflow expected to run on every release.
	DefaultWorkflowName = "Run Tests"

	releaseEventConstant                 = "release"
	completedStatusConstant              = "completed"
	successConclusionConstant            = "success"
	releaseResourceConstant              = "release"
	workflowRunResourceConstant          = "test run"
	testRunStatusPolicyConstant          = "test_run_status"
	testRunConclusionPolicyConstant      = "test_run_conclusion"
	branchListSeparatorConstant          = ", "
	releaseLookupFailureTemplateConstant = "Unable to find release %s"
	runLookupFailureTemplateConstant     = "Unable to verify %q run for release %s"
	releaseMissingTemplateConstant       = "no release tagged %s in %s"
	runMissingTemplateConstant           = "no %q run triggered by release %s"
	runStatusTemplateConstant            = "%q run #%d for %s is %s, expected %s"
	runConclusionTemplateConstant        = "%q run #%d for %s concluded with %s, expected %s"
	releaseFoundTemplateConstant         = "Found release %s created %s"
	candidateBranchesTemplateConstant    = "%q runs triggered by releases: %s"
	noCandidateBranchesTemplateConstant  = "No %q runs triggered by releases"
	runFoundTemplateConstant             = "Found %q run #%d: %s"
	unknownValueConstant                 = "unknown"
	clientRequiredMessageConstant        = "release verifier requires a forge client"
	logFieldTagConstant                  = "tag"
	logFieldRunIDConstant                = "run_id"
	logFieldCandidateCountConstant       = "candidate_count"
	releaseVerifiedLogMessageConstant    = "release verified"
)

// ErrClientNotConfigured indicates the verifier was constructed without a forge client.
var ErrClientNotConfigured = errors.New(clientRequiredMessageConstant)

// Verification describes a release and the successful test run that validated it.
type Verification struct {
	ReleaseURL       string
	ReleaseTag       string
	ReleaseCreatedAt time.Time
	TestRunNumber    int
	TestRunID        int64
	TestRunURL       string
}

// Verifier confirms a release exists and passed its test workflow.
type Verifier struct {
	client       ReleaseClient
	reporter     Reporter
	logger       *zap.Logger
	workflowName string
}

// NewVerifier constructs a Verifier. An empty workflowName selects DefaultWorkflowName.
func NewVerifier(client ReleaseClient, reporter Reporter, logger *zap.Logger, workflowName string) (*Verifier, error) {
	if client == nil {
		return nil, ErrClientNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	trimmedWorkflowName := strings.TrimSpace(workflowName)
	if len(trimmedWorkflowName) == 0 {
		trimmedWorkflowName = DefaultWorkflowName
	}
	return &Verifier{client: client, reporter: reporter, logger: logger, workflowName: trimmedWorkflowName}, nil
}

// Verify fetches the release tagged with the reference version and the test run triggered by it.
func (verifier *Verifier) Verify(verificationContext context.Context, parsedReference reference.ParsedReference) (Verification, error) {
	repository := forge.Repository{Owner: parsedReference.Owner, Name: parsedReference.MainRepository}
	tag := parsedReference.VersionTag

	releaseDetails, releaseError := verifier.client.ReleaseByTag(verificationContext, repository, tag)
	if releaseError != nil {
		if forge.IsNotFound(releaseError) {
			releaseError = reviewerrors.NotFoundError{
				Resource: releaseResourceConstant,
				Message:  fmt.Sprintf(releaseMissingTemplateConstant, tag, repository.String()),
				Cause:    releaseError,
			}
		}
		return Verification{}, reviewerrors.Wrap(fmt.Sprintf(releaseLookupFailureTemplateConstant, tag), releaseError)
	}
	verifier.report(fmt.Sprintf(releaseFoundTemplateConstant, releaseDetails.HTMLURL, releaseDetails.CreatedAt.UTC().Format(time.RFC3339)))

	workflowRun, runError := verifier.findTestRun(verificationContext, repository, tag)
	if runError != nil {
		return Verification{}, reviewerrors.Wrap(fmt.Sprintf(runLookupFailureTemplateConstant, verifier.workflowName, tag), runError)
	}
	verifier.report(fmt.Sprintf(runFoundTemplateConstant, verifier.workflowName, workflowRun.RunNumber, workflowRun.HTMLURL))

	verifier.logger.Info(releaseVerifiedLogMessageConstant, zap.String(logFieldTagConstant, tag), zap.Int64(logFieldRunIDConstant, workflowRun.ID))

	return Verification{
		ReleaseURL:       releaseDetails.HTMLURL,
		ReleaseTag:       releaseDetails.TagName,
		ReleaseCreatedAt: releaseDetails.CreatedAt,
		TestRunNumber:    workflowRun.RunNumber,
		TestRunID:        workflowRun.ID,
		TestRunURL:       workflowRun.HTMLURL,
	}, nil
}

func (verifier *Verifier) findTestRun(verificationContext context.Context, repository forge.Repository, tag string) (forge.WorkflowRun, error) {
	workflowRuns, listError := verifier.client.WorkflowRuns(verificationContext, repository, releaseEventConstant)
	if listError != nil {
		return forge.WorkflowRun{}, listError
	}

	candidates := make([]forge.WorkflowRun, 0, len(workflowRuns))
	candidateBranches := make([]string, 0, len(workflowRuns))
	for _, workflowRun := range workflowRuns {
		if workflowRun.Event != releaseEventConstant || workflowRun.Name != verifier.workflowName {
			continue
		}
		candidates = append(candidates, workflowRun)
		candidateBranches = append(candidateBranches, workflowRun.HeadBranch)
	}

	verifier.logger.Debug(fmt.Sprintf(candidateBranchesTemplateConstant, verifier.workflowName, strings.Join(candidateBranches, branchListSeparatorConstant)), zap.Int(logFieldCandidateCountConstant, len(candidates)))
	if len(candidateBranches) == 0 {
		verifier.report(fmt.Sprintf(noCandidateBranchesTemplateConstant, verifier.workflowName))
	} else {
		verifier.report(fmt.Sprintf(candidateBranchesTemplateConstant, verifier.workflowName, strings.Join(candidateBranches, branchListSeparatorConstant)))
	}

	for _, candidate := range candidates {
		if candidate.HeadBranch != tag {
			continue
		}
		if candidate.Status != completedStatusConstant {
			return forge.WorkflowRun{}, reviewerrors.PolicyViolationError{
				Policy:  testRunStatusPolicyConstant,
				Message: fmt.Sprintf(runStatusTemplateConstant, verifier.workflowName, candidate.RunNumber, tag, valueOrUnknown(candidate.Status), completedStatusConstant),
			}
		}
		if candidate.Conclusion != successConclusionConstant {
			return forge.WorkflowRun{}, reviewerrors.PolicyViolationError{
				Policy:  testRunConclusionPolicyConstant,
				Message: fmt.Sprintf(runConclusionTemplateConstant, verifier.workflowName, candidate.RunNumber, tag, valueOrUnknown(candidate.Conclusion), successConclusionConstant),
			}
		}
		return candidate, nil
	}

	return forge.WorkflowRun{}, reviewerrors.NotFoundError{
		Resource: workflowRunResourceConstant,
		Message:  fmt.Sprintf(runMissingTemplateConstant, verifier.workflowName, tag),
	}
}

func (verifier *Verifier) report(message string) {
	if verifier.reporter == nil {
		return
	}
	verifier.reporter.Info(message)
}

func valueOrUnknown(value string) string {
	if len(strings.TrimSpace(value)) == 0 {
		return unknownValueConstant
	}
	return value
}
