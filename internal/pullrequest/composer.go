package pullrequest

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"
	_ "time/tzdata"

	"github.com/temirov/revreq/internal/gatekeeper"
	"github.com/temirov/revreq/internal/reference"
	"github.com/temirov/revreq/internal/release"
	"github.com/temirov/revreq/internal/reviewerrors"
)

const (
	// DefaultTimeZone renders timestamps in the course's local time.
	DefaultTimeZone = "America/Los_Angeles"

	draftStatusConstant            = "draft"
	timestampLayoutConstant        = "Jan 2, 2006 at 3:04 PM MST"
	notAvailableConstant           = "N/A"
	labelTemplateConstant          = "`%s`"
	listSeparatorConstant          = ", "
	titleTemplateConstant          = "%s: %s Review of %s"
	bodyTemplateNameConstant       = "body"
	commentTemplateNameConstant    = "comment"
	timeZoneFieldNameConstant      = "time zone"
	renderFailureTemplateConstant  = "unable to render pull request %s: %w"
	workflowTitleTemplateConstant  = "%s #%d"
	repositoryNameTemplateConstant = "%s/%s"
	repositoryURLTemplateConstant  = "https://github.com/%s"
)

const bodyTemplateText = `## Student Information

- **Full Name:** [FULL NAME]
- **Email:** [EMAIL]
- **GitHub:** @{{.Actor}}

## Project Information

- **Project:** {{.MilestoneTitle}} (` + "`{{.ProjectLabel}}`" + `)
- **Release:** [{{.ReleaseTag}}]({{.ReleaseURL}}) created {{.ReleaseCreatedAt}} (review {{.ReviewCount}}, patch {{.PatchCount}})
- **Tests:** [{{.WorkflowTitle}}]({{.TestRunURL}})
{{if .TestRepository}}- **Test Repository:** [{{.TestRepository}}]({{.TestRepositoryURL}})
{{end}}- **Functionality:** [#{{.ApprovalNumber}}]({{.ApprovalURL}})
- **Review Type:** {{.ReviewType}}
- **Review Branch:** ` + "`{{.ReviewBranch}}`" + `

## Previous Pull Requests

{{if .PriorPullRequests}}| Pull | Status | Labels | Approvers | Created | Closed |
|:----:|:------:|:-------|:----------|:--------|:-------|
{{range .PriorPullRequests}}| [#{{.Number}}]({{.URL}}) | {{.Status}} | {{.Labels}} | {{.Approvers}} | {{.CreatedAt}} | {{.ClosedAt}} |
{{end}}{{else}}No previous pull requests found for {{.MilestoneTitle}}.
{{end}}`

const commentTemplateText = `## Student Instructions

Hi @{{.Actor}}! Complete the following steps before this pull request can be reviewed:

- [ ] Replace the placeholders in the **Student Information** section of the description.
- [ ] Confirm the labels ` + "`{{.ProjectLabel}}`, `{{.ReviewTypeLabel}}`, and `{{.ReleaseTag}}`" + `, the **{{.MilestoneTitle}}** milestone, and your assignment are set.
{{if .Synchronous}}- [ ] Sign up for a synchronous code review appointment and attend it with this pull request open.
{{else}}- [ ] Wait for the asynchronous review comments and reply to each of them on this pull request.
{{end}}- [ ] Click **Ready for review** once every other item is checked. Draft pull requests are not reviewed.

Reviewers close this pull request when the review is complete. Do not merge it yourself.
`

var (
	bodyTemplate    = template.Must(template.New(bodyTemplateNameConstant).Parse(bodyTemplateText))
	commentTemplate = template.Must(template.New(commentTemplateNameConstant).Parse(commentTemplateText))
)

// PriorPullRequest summarizes an earlier review of the same project.
type PriorPullRequest struct {
	Number    int
	URL       string
	Status    string
	Labels    []string
	Approvers []string
	CreatedAt time.Time
	ClosedAt  time.Time
}

// Details carries everything the description and instructions mention.
type Details struct {
	Reference         reference.ParsedReference
	Release           release.Verification
	Approval          gatekeeper.ApprovalRecord
	WorkflowName      string
	Actor             string
	PriorPullRequests []PriorPullRequest
}

// Composer renders pull request titles, descriptions, and instruction comments.
type Composer struct {
	location *time.Location
}

type priorPullRequestView struct {
	Number    int
	URL       string
	Status    string
	Labels    string
	Approvers string
	CreatedAt string
	ClosedAt  string
}

type detailsView struct {
	Actor             string
	MilestoneTitle    string
	ProjectLabel      string
	ReleaseTag        string
	ReleaseURL        string
	ReleaseCreatedAt  string
	ReviewCount       int
	PatchCount        int
	WorkflowTitle     string
	TestRunURL        string
	TestRepository    string
	TestRepositoryURL string
	ApprovalNumber    int
	ApprovalURL       string
	ReviewType        string
	ReviewTypeLabel   string
	ReviewBranch      string
	Synchronous       bool
	PriorPullRequests []priorPullRequestView
}

// NewComposer constructs a Composer rendering timestamps in timeZone. An empty timeZone selects DefaultTimeZone.
func NewComposer(timeZone string) (*Composer, error) {
	trimmedTimeZone := strings.TrimSpace(timeZone)
	if len(trimmedTimeZone) == 0 {
		trimmedTimeZone = DefaultTimeZone
	}
	location, locationError := time.LoadLocation(trimmedTimeZone)
	if locationError != nil {
		return nil, reviewerrors.ValidationError{FieldName: timeZoneFieldNameConstant, Message: locationError.Error()}
	}
	return &Composer{location: location}, nil
}

// Title returns the pull request title.
func (composer *Composer) Title(details Details) string {
	return fmt.Sprintf(titleTemplateConstant, details.Reference.MilestoneTitle(), capitalize(string(details.Reference.ReviewType)), details.Reference.VersionTag)
}

// Body renders the pull request description.
func (composer *Composer) Body(details Details) (string, error) {
	return composer.render(bodyTemplate, details)
}

// Comment renders the instructional checklist posted after the pull request is opened.
func (composer *Composer) Comment(details Details) (string, error) {
	return composer.render(commentTemplate, details)
}

// FormatTimestamp renders timestamp in the composer's time zone. The zero time renders as N/A.
func (composer *Composer) FormatTimestamp(timestamp time.Time) string {
	if timestamp.IsZero() {
		return notAvailableConstant
	}
	return timestamp.In(composer.location).Format(timestampLayoutConstant)
}

func (composer *Composer) render(documentTemplate *template.Template, details Details) (string, error) {
	var buffer bytes.Buffer
	if executeError := documentTemplate.Execute(&buffer, composer.view(details)); executeError != nil {
		return "", fmt.Errorf(renderFailureTemplateConstant, documentTemplate.Name(), executeError)
	}
	return buffer.String(), nil
}

func (composer *Composer) view(details Details) detailsView {
	priorViews := make([]priorPullRequestView, 0, len(details.PriorPullRequests))
	for _, prior := range details.PriorPullRequests {
		priorViews = append(priorViews, priorPullRequestView{
			Number:    prior.Number,
			URL:       prior.URL,
			Status:    prior.Status,
			Labels:    formatLabels(prior.Labels),
			Approvers: joinOrNotAvailable(prior.Approvers),
			CreatedAt: composer.FormatTimestamp(prior.CreatedAt),
			ClosedAt:  composer.FormatTimestamp(prior.ClosedAt),
		})
	}

	workflowName := strings.TrimSpace(details.WorkflowName)
	if len(workflowName) == 0 {
		workflowName = release.DefaultWorkflowName
	}

	var testRepository, testRepositoryURL string
	if testRepositoryName := strings.TrimSpace(details.Reference.TestRepository); len(testRepositoryName) > 0 {
		testRepository = fmt.Sprintf(repositoryNameTemplateConstant, details.Reference.Owner, testRepositoryName)
		testRepositoryURL = fmt.Sprintf(repositoryURLTemplateConstant, testRepository)
	}

	return detailsView{
		Actor:             details.Actor,
		MilestoneTitle:    details.Reference.MilestoneTitle(),
		ProjectLabel:      details.Reference.ProjectLabel(),
		ReleaseTag:        details.Reference.VersionTag,
		ReleaseURL:        details.Release.ReleaseURL,
		ReleaseCreatedAt:  composer.FormatTimestamp(details.Release.ReleaseCreatedAt),
		ReviewCount:       details.Reference.ReviewCount,
		PatchCount:        details.Reference.PatchCount,
		WorkflowTitle:     fmt.Sprintf(workflowTitleTemplateConstant, workflowName, details.Release.TestRunNumber),
		TestRunURL:        details.Release.TestRunURL,
		TestRepository:    testRepository,
		TestRepositoryURL: testRepositoryURL,
		ApprovalNumber:    details.Approval.Number,
		ApprovalURL:       details.Approval.URL,
		ReviewType:        capitalize(string(details.Reference.ReviewType)),
		ReviewTypeLabel:   string(details.Reference.ReviewType),
		ReviewBranch:      details.Reference.ReviewBranchName(),
		Synchronous:       details.Reference.ReviewType == reference.ReviewTypeSynchronous,
		PriorPullRequests: priorViews,
	}
}

// RequestLabels returns the labels attached to a new review pull request.
func RequestLabels(parsedReference reference.ParsedReference) []string {
	return []string{parsedReference.ProjectLabel(), string(parsedReference.ReviewType), parsedReference.VersionTag}
}

// PullRequestStatus reports draft, open, or closed.
func PullRequestStatus(draft bool, state string) string {
	if draft {
		return draftStatusConstant
	}
	return state
}

func formatLabels(labels []string) string {
	if len(labels) == 0 {
		return notAvailableConstant
	}
	formattedLabels := make([]string, 0, len(labels))
	for _, label := range SortLabels(labels) {
		formattedLabels = append(formattedLabels, fmt.Sprintf(labelTemplateConstant, label))
	}
	return strings.Join(formattedLabels, listSeparatorConstant)
}

func joinOrNotAvailable(values []string) string {
	if len(values) == 0 {
		return notAvailableConstant
	}
	return strings.Join(values, listSeparatorConstant)
}

func capitalize(value string) string {
	if len(value) == 0 {
		return value
	}
	return strings.ToUpper(value[:1]) + value[1:]
}
