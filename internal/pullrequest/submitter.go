package pullrequest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/revreq/internal/forge"
	"github.com/temirov/revreq/internal/reviewerrors"
)

const (
	approvedReviewStateConstant      = "APPROVED"
	milestoneLookupFailureTemplate   = "Unable to find milestone %q"
	milestoneCreateFailureTemplate   = "Unable to create milestone %q"
	pullRequestListFailureTemplate   = "Unable to list pull requests of %s"
	reviewListFailureTemplate        = "Unable to list reviews of pull request #%d"
	pullRequestCreateFailureTemplate = "Unable to create pull request from %s into %s"
	pullRequestUpdateFailureTemplate = "Unable to update pull request #%d"
	milestoneFoundTemplate           = "Using milestone %q (#%d)"
	milestoneCreatedTemplate         = "Created milestone %q (#%d)"
	pullRequestsMissingTemplate      = "No pull requests found for %s"
	priorPullRequestsFoundTemplate   = "Found %d previous pull request(s) for %s"
	pullRequestCreatedTemplate       = "Created pull request #%d %s"
	labelsAddedTemplate              = "Added labels %s"
	milestoneSetTemplate             = "Set milestone #%d"
	assigneesAddedTemplate           = "Assigned %s"
	reviewersRequestedTemplate       = "Requested reviews from %s"
	commentPostedMessage             = "Posted instructions comment"
	listSeparator                    = ", "
	clientRequiredMessage            = "pull request submitter requires a forge client"
	logFieldPullRequestNumber        = "pull_request"
	logFieldPullRequestURL           = "url"
	pullRequestCreatedLogMessage     = "pull request created"
)

// ErrClientNotConfigured indicates the submitter was constructed without a forge client.
var ErrClientNotConfigured = errors.New(clientRequiredMessage)

// Submission describes the pull request to open and the metadata attached afterwards.
type Submission struct {
	Repository      forge.Repository
	Title           string
	Body            string
	Comment         string
	Head            string
	Base            string
	Labels          []string
	MilestoneNumber int
	Assignees       []string
	Reviewers       []string
}

// Submitter opens review pull requests and gathers earlier reviews.
type Submitter struct {
	client   Client
	reporter Reporter
	logger   *zap.Logger
}

// NewSubmitter constructs a Submitter.
func NewSubmitter(client Client, reporter Reporter, logger *zap.Logger) (*Submitter, error) {
	if client == nil {
		return nil, ErrClientNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Submitter{client: client, reporter: reporter, logger: logger}, nil
}

// EnsureMilestone returns the milestone titled title, creating it when absent.
func (submitter *Submitter) EnsureMilestone(requestContext context.Context, repository forge.Repository, title string) (forge.Milestone, error) {
	milestones, listError := submitter.client.Milestones(requestContext, repository)
	if listError != nil {
		return forge.Milestone{}, reviewerrors.Wrap(fmt.Sprintf(milestoneLookupFailureTemplate, title), listError)
	}
	for _, milestone := range milestones {
		if milestone.Title == title {
			submitter.info(fmt.Sprintf(milestoneFoundTemplate, milestone.Title, milestone.Number))
			return milestone, nil
		}
	}

	milestone, createError := submitter.client.CreateMilestone(requestContext, repository, title)
	if createError != nil {
		return forge.Milestone{}, reviewerrors.Wrap(fmt.Sprintf(milestoneCreateFailureTemplate, title), createError)
	}
	submitter.info(fmt.Sprintf(milestoneCreatedTemplate, milestone.Title, milestone.Number))
	return milestone, nil
}

// PriorPullRequests lists pull requests whose head branch starts with branchPrefix along with their approvers.
// A repository without pull requests yields a warning and an empty result.
func (submitter *Submitter) PriorPullRequests(requestContext context.Context, repository forge.Repository, branchPrefix string) ([]PriorPullRequest, error) {
	pullRequests, listError := submitter.client.PullRequests(requestContext, repository)
	if listError != nil {
		if forge.IsNotFound(listError) {
			submitter.warn(fmt.Sprintf(pullRequestsMissingTemplate, repository.String()))
			return nil, nil
		}
		return nil, reviewerrors.Wrap(fmt.Sprintf(pullRequestListFailureTemplate, repository.String()), listError)
	}

	priorPullRequests := make([]PriorPullRequest, 0, len(pullRequests))
	for _, pullRequest := range pullRequests {
		if !strings.HasPrefix(pullRequest.HeadBranch, branchPrefix) {
			continue
		}
		reviews, reviewsError := submitter.client.Reviews(requestContext, repository, pullRequest.Number)
		if reviewsError != nil {
			return nil, reviewerrors.Wrap(fmt.Sprintf(reviewListFailureTemplate, pullRequest.Number), reviewsError)
		}
		priorPullRequests = append(priorPullRequests, PriorPullRequest{
			Number:    pullRequest.Number,
			URL:       pullRequest.HTMLURL,
			Status:    PullRequestStatus(pullRequest.Draft, pullRequest.State),
			Labels:    pullRequest.Labels,
			Approvers: approvers(reviews),
			CreatedAt: pullRequest.CreatedAt,
			ClosedAt:  pullRequest.ClosedAt,
		})
	}

	submitter.info(fmt.Sprintf(priorPullRequestsFoundTemplate, len(priorPullRequests), repository.String()))
	return priorPullRequests, nil
}

// Submit opens a draft pull request and attaches labels, milestone, assignees, reviewers, and the comment.
func (submitter *Submitter) Submit(requestContext context.Context, submission Submission) (forge.PullRequest, error) {
	pullRequest, createError := submitter.client.CreatePullRequest(requestContext, submission.Repository, forge.NewPullRequest{
		Title: submission.Title,
		Body:  submission.Body,
		Head:  submission.Head,
		Base:  submission.Base,
		Draft: true,
	})
	if createError != nil {
		return forge.PullRequest{}, reviewerrors.Wrap(fmt.Sprintf(pullRequestCreateFailureTemplate, submission.Head, submission.Base), createError)
	}
	submitter.info(fmt.Sprintf(pullRequestCreatedTemplate, pullRequest.Number, pullRequest.HTMLURL))
	submitter.logger.Info(pullRequestCreatedLogMessage, zap.Int(logFieldPullRequestNumber, pullRequest.Number), zap.String(logFieldPullRequestURL, pullRequest.HTMLURL))

	if updateError := submitter.annotate(requestContext, submission, pullRequest.Number); updateError != nil {
		return pullRequest, reviewerrors.Wrap(fmt.Sprintf(pullRequestUpdateFailureTemplate, pullRequest.Number), updateError)
	}
	return pullRequest, nil
}

func (submitter *Submitter) annotate(requestContext context.Context, submission Submission, number int) error {
	if len(submission.Labels) > 0 {
		if labelError := submitter.client.AddLabels(requestContext, submission.Repository, number, submission.Labels); labelError != nil {
			return labelError
		}
		submitter.info(fmt.Sprintf(labelsAddedTemplate, strings.Join(submission.Labels, listSeparator)))
	}
	if submission.MilestoneNumber > 0 {
		if milestoneError := submitter.client.SetMilestone(requestContext, submission.Repository, number, submission.MilestoneNumber); milestoneError != nil {
			return milestoneError
		}
		submitter.info(fmt.Sprintf(milestoneSetTemplate, submission.MilestoneNumber))
	}
	if len(submission.Assignees) > 0 {
		if assigneeError := submitter.client.AddAssignees(requestContext, submission.Repository, number, submission.Assignees); assigneeError != nil {
			return assigneeError
		}
		submitter.info(fmt.Sprintf(assigneesAddedTemplate, strings.Join(submission.Assignees, listSeparator)))
	}
	if len(submission.Reviewers) > 0 {
		if reviewerError := submitter.client.RequestReviewers(requestContext, submission.Repository, number, submission.Reviewers); reviewerError != nil {
			return reviewerError
		}
		submitter.info(fmt.Sprintf(reviewersRequestedTemplate, strings.Join(submission.Reviewers, listSeparator)))
	}
	if len(strings.TrimSpace(submission.Comment)) > 0 {
		if commentError := submitter.client.CreateIssueComment(requestContext, submission.Repository, number, submission.Comment); commentError != nil {
			return commentError
		}
		submitter.info(commentPostedMessage)
	}
	return nil
}

func (submitter *Submitter) info(message string) {
	if submitter.reporter == nil {
		return
	}
	submitter.reporter.Info(message)
}

func (submitter *Submitter) warn(message string) {
	if submitter.reporter == nil {
		return
	}
	submitter.reporter.Warning(message)
}

func approvers(reviews []forge.Review) []string {
	logins := make([]string, 0, len(reviews))
	for _, review := range reviews {
		if review.State != approvedReviewStateConstant {
			continue
		}
		logins = append(logins, review.ReviewerLogin)
	}
	return logins
}
