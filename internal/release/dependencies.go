package release

import (
	"context"

	"github.com/temirov/revreq/internal/forge"
)

// ReleaseClient exposes the forge lookups needed to verify a release.
type ReleaseClient interface {
	ReleaseByTag(requestContext context.Context, repository forge.Repository, tag string) (forge.Release, error)
	WorkflowRuns(requestContext context.Context, repository forge.Repository, event string) ([]forge.WorkflowRun, error)
}

// Reporter prints human-readable progress lines.
type Reporter interface {
	Info(message string)
}
