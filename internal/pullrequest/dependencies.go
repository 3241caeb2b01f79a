package pullrequest

import (
	"context"

	"github.com/temirov/revreq/internal/forge"
)

// Client exposes the forge calls used to open and annotate a review pull request.
type Client interface {
	Milestones(requestContext context.Context, repository forge.Repository) ([]forge.Milestone, error)
	CreateMilestone(requestContext context.Context, repository forge.Repository, title string) (forge.Milestone, error)
	PullRequests(requestContext context.Context, repository forge.Repository) ([]forge.PullRequest, error)
	Reviews(requestContext context.Context, repository forge.Repository, pullRequestNumber int) ([]forge.Review, error)
	CreatePullRequest(requestContext context.Context, repository forge.Repository, newPullRequest forge.NewPullRequest) (forge.PullRequest, error)
	AddLabels(requestContext context.Context, repository forge.Repository, number int, labels []string) error
	SetMilestone(requestContext context.Context, repository forge.Repository, number int, milestoneNumber int) error
	AddAssignees(requestContext context.Context, repository forge.Repository, number int, logins []string) error
	RequestReviewers(requestContext context.Context, repository forge.Repository, pullRequestNumber int, logins []string) error
	CreateIssueComment(requestContext context.Context, repository forge.Repository, number int, body string) error
}

// Reporter prints human-readable progress and warning lines.
type Reporter interface {
	Info(message string)
	Warning(message string)
}
