package gatekeeper

import (
	"context"

	"github.com/temirov/revreq/internal/forge"
)

// IssueClient lists issues and pull requests carrying every given label.
type IssueClient interface {
	IssuesWithLabels(requestContext context.Context, repository forge.Repository, labels []string) ([]forge.Issue, error)
}

// Reporter prints human-readable progress lines.
type Reporter interface {
	Info(message string)
}
