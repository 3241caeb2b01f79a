package forge

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v66/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	requiredValueMessageConstant            = "value required"
	repositoryOwnerFieldNameConstant        = "repository owner"
	repositoryNameFieldNameConstant         = "repository name"
	tokenFieldNameConstant                  = "token"
	baseURLFieldNameConstant                = "api base url"
	urlPathSeparatorConstant                = "/"
	stateAllConstant                        = "all"
	pageSizeConstant                        = 100
	logMessageForgeCallConstant             = "github api call"
	logFieldOperationConstant               = "operation"
	logFieldStatusConstant                  = "status"
	logFieldRepositoryConstant              = "repository"
	repositoryIdentifierSeparatorConstant   = "/"
	getRepositoryOperationNameConstant      = OperationName("GetRepository")
	getReleaseByTagOperationNameConstant    = OperationName("GetReleaseByTag")
	listWorkflowRunsOperationNameConstant   = OperationName("ListWorkflowRuns")
	listIssuesOperationNameConstant         = OperationName("ListIssues")
	listMilestonesOperationNameConstant     = OperationName("ListMilestones")
	createMilestoneOperationNameConstant    = OperationName("CreateMilestone")
	listPullRequestsOperationNameConstant   = OperationName("ListPullRequests")
	listReviewsOperationNameConstant        = OperationName("ListReviews")
	createPullRequestOperationNameConstant  = OperationName("CreatePullRequest")
	addLabelsOperationNameConstant          = OperationName("AddLabels")
	setMilestoneOperationNameConstant       = OperationName("SetMilestone")
	addAssigneesOperationNameConstant       = OperationName("AddAssignees")
	requestReviewersOperationNameConstant   = OperationName("RequestReviewers")
	createIssueCommentOperationNameConstant = OperationName("CreateIssueComment")
)

// Repository identifies a GitHub repository.
type Repository struct {
	Owner string
	Name  string
}

// String renders the owner/name identifier.
func (repository Repository) String() string {
	return repository.Owner + repositoryIdentifierSeparatorConstant + repository.Name
}

func (repository Repository) validate() error {
	if len(strings.TrimSpace(repository.Owner)) == 0 {
		return InvalidInputError{FieldName: repositoryOwnerFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(repository.Name)) == 0 {
		return InvalidInputError{FieldName: repositoryNameFieldNameConstant, Message: requiredValueMessageConstant}
	}
	return nil
}

// Release describes a published release.
type Release struct {
	HTMLURL   string
	TagName   string
	CreatedAt time.Time
}

// WorkflowRun describes a GitHub Actions workflow run.
type WorkflowRun struct {
	ID         int64
	RunNumber  int
	Name       string
	Event      string
	HeadBranch string
	Status     string
	Conclusion string
	HTMLURL    string
}

// Issue describes an issue or pull request returned by the issues endpoint.
type Issue struct {
	Number        int
	HTMLURL       string
	State         string
	Locked        bool
	LockReason    string
	IsPullRequest bool
}

// Milestone describes a repository milestone.
type Milestone struct {
	Number int
	Title  string
}

// PullRequest describes a pull request.
type PullRequest struct {
	Number     int
	HTMLURL    string
	State      string
	Draft      bool
	HeadBranch string
	Labels     []string
	CreatedAt  time.Time
	ClosedAt   time.Time
}

// Review describes a pull request review.
type Review struct {
	ReviewerLogin string
	State         string
}

// NewPullRequest describes a pull request to open.
type NewPullRequest struct {
	Title string
	Body  string
	Head  string
	Base  string
	Draft bool
}

// ClientOptions configures NewClient.
type ClientOptions struct {
	Token string
	// BaseURL overrides the REST endpoint; empty selects api.github.com.
	BaseURL    string
	Logger     *zap.Logger
	HTTPClient *http.Client
}

// Client issues GitHub REST calls and checks every response status.
type Client struct {
	api    *github.Client
	logger *zap.Logger
}

// NewClient constructs a Client authenticated with a static token.
func NewClient(clientContext context.Context, options ClientOptions) (*Client, error) {
	if len(strings.TrimSpace(options.Token)) == 0 {
		return nil, InvalidInputError{FieldName: tokenFieldNameConstant, Message: requiredValueMessageConstant}
	}

	if options.HTTPClient != nil {
		clientContext = context.WithValue(clientContext, oauth2.HTTPClient, options.HTTPClient)
	}
	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: strings.TrimSpace(options.Token)})
	api := github.NewClient(oauth2.NewClient(clientContext, tokenSource))

	trimmedBaseURL := strings.TrimSpace(options.BaseURL)
	if len(trimmedBaseURL) > 0 {
		if !strings.HasSuffix(trimmedBaseURL, urlPathSeparatorConstant) {
			trimmedBaseURL += urlPathSeparatorConstant
		}
		parsedBaseURL, parseError := url.Parse(trimmedBaseURL)
		if parseError != nil {
			return nil, InvalidInputError{FieldName: baseURLFieldNameConstant, Message: parseError.Error()}
		}
		api.BaseURL = parsedBaseURL
	}

	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{api: api, logger: logger}, nil
}

// DefaultBranch resolves the default branch of the repository.
func (client *Client) DefaultBranch(requestContext context.Context, repository Repository) (string, error) {
	if validationError := repository.validate(); validationError != nil {
		return "", validationError
	}
	repositoryDetails, response, callError := client.api.Repositories.Get(requestContext, repository.Owner, repository.Name)
	if statusError := client.check(getRepositoryOperationNameConstant, repository, nil, response, callError, http.StatusOK); statusError != nil {
		return "", statusError
	}
	return repositoryDetails.GetDefaultBranch(), nil
}

// ReleaseByTag fetches the release published for tag.
func (client *Client) ReleaseByTag(requestContext context.Context, repository Repository, tag string) (Release, error) {
	if validationError := repository.validate(); validationError != nil {
		return Release{}, validationError
	}
	release, response, callError := client.api.Repositories.GetReleaseByTag(requestContext, repository.Owner, repository.Name, tag)
	if statusError := client.check(getReleaseByTagOperationNameConstant, repository, map[string]string{"tag": tag}, response, callError, http.StatusOK); statusError != nil {
		return Release{}, statusError
	}
	return Release{
		HTMLURL:   release.GetHTMLURL(),
		TagName:   release.GetTagName(),
		CreatedAt: release.GetCreatedAt().Time,
	}, nil
}

// WorkflowRuns lists every workflow run triggered by event.
func (client *Client) WorkflowRuns(requestContext context.Context, repository Repository, event string) ([]WorkflowRun, error) {
	if validationError := repository.validate(); validationError != nil {
		return nil, validationError
	}

	listOptions := &github.ListWorkflowRunsOptions{Event: event, ListOptions: github.ListOptions{PerPage: pageSizeConstant}}
	var workflowRuns []WorkflowRun
	for {
		page, response, callError := client.api.Actions.ListRepositoryWorkflowRuns(requestContext, repository.Owner, repository.Name, listOptions)
		if statusError := client.check(listWorkflowRunsOperationNameConstant, repository, listOptions, response, callError, http.StatusOK); statusError != nil {
			return nil, statusError
		}
		for _, workflowRun := range page.WorkflowRuns {
			workflowRuns = append(workflowRuns, WorkflowRun{
				ID:         workflowRun.GetID(),
				RunNumber:  workflowRun.GetRunNumber(),
				Name:       workflowRun.GetName(),
				Event:      workflowRun.GetEvent(),
				HeadBranch: workflowRun.GetHeadBranch(),
				Status:     workflowRun.GetStatus(),
				Conclusion: workflowRun.GetConclusion(),
				HTMLURL:    workflowRun.GetHTMLURL(),
			})
		}
		if response.NextPage == 0 {
			return workflowRuns, nil
		}
		listOptions.Page = response.NextPage
	}
}

// IssuesWithLabels lists issues and pull requests in any state carrying every label.
func (client *Client) IssuesWithLabels(requestContext context.Context, repository Repository, labels []string) ([]Issue, error) {
	if validationError := repository.validate(); validationError != nil {
		return nil, validationError
	}

	listOptions := &github.IssueListByRepoOptions{State: stateAllConstant, Labels: labels, ListOptions: github.ListOptions{PerPage: pageSizeConstant}}
	var issues []Issue
	for {
		page, response, callError := client.api.Issues.ListByRepo(requestContext, repository.Owner, repository.Name, listOptions)
		if statusError := client.check(listIssuesOperationNameConstant, repository, listOptions, response, callError, http.StatusOK); statusError != nil {
			return nil, statusError
		}
		for _, issue := range page {
			issues = append(issues, Issue{
				Number:        issue.GetNumber(),
				HTMLURL:       issue.GetHTMLURL(),
				State:         issue.GetState(),
				Locked:        issue.GetLocked(),
				LockReason:    issue.GetActiveLockReason(),
				IsPullRequest: issue.IsPullRequest(),
			})
		}
		if response.NextPage == 0 {
			return issues, nil
		}
		listOptions.Page = response.NextPage
	}
}

// Milestones lists milestones in any state.
func (client *Client) Milestones(requestContext context.Context, repository Repository) ([]Milestone, error) {
	if validationError := repository.validate(); validationError != nil {
		return nil, validationError
	}

	listOptions := &github.MilestoneListOptions{State: stateAllConstant, ListOptions: github.ListOptions{PerPage: pageSizeConstant}}
	var milestones []Milestone
	for {
		page, response, callError := client.api.Issues.ListMilestones(requestContext, repository.Owner, repository.Name, listOptions)
		if statusError := client.check(listMilestonesOperationNameConstant, repository, listOptions, response, callError, http.StatusOK); statusError != nil {
			return nil, statusError
		}
		for _, milestone := range page {
			milestones = append(milestones, Milestone{Number: milestone.GetNumber(), Title: milestone.GetTitle()})
		}
		if response.NextPage == 0 {
			return milestones, nil
		}
		listOptions.Page = response.NextPage
	}
}

// CreateMilestone creates a milestone titled title.
func (client *Client) CreateMilestone(requestContext context.Context, repository Repository, title string) (Milestone, error) {
	if validationError := repository.validate(); validationError != nil {
		return Milestone{}, validationError
	}
	request := &github.Milestone{Title: github.String(title)}
	milestone, response, callError := client.api.Issues.CreateMilestone(requestContext, repository.Owner, repository.Name, request)
	if statusError := client.check(createMilestoneOperationNameConstant, repository, request, response, callError, http.StatusCreated); statusError != nil {
		return Milestone{}, statusError
	}
	return Milestone{Number: milestone.GetNumber(), Title: milestone.GetTitle()}, nil
}

// PullRequests lists pull requests in any state.
func (client *Client) PullRequests(requestContext context.Context, repository Repository) ([]PullRequest, error) {
	if validationError := repository.validate(); validationError != nil {
		return nil, validationError
	}

	listOptions := &github.PullRequestListOptions{State: stateAllConstant, ListOptions: github.ListOptions{PerPage: pageSizeConstant}}
	var pullRequests []PullRequest
	for {
		page, response, callError := client.api.PullRequests.List(requestContext, repository.Owner, repository.Name, listOptions)
		if statusError := client.check(listPullRequestsOperationNameConstant, repository, listOptions, response, callError, http.StatusOK); statusError != nil {
			return nil, statusError
		}
		for _, pullRequest := range page {
			pullRequests = append(pullRequests, convertPullRequest(pullRequest))
		}
		if response.NextPage == 0 {
			return pullRequests, nil
		}
		listOptions.Page = response.NextPage
	}
}

// Reviews lists the reviews submitted on a pull request.
func (client *Client) Reviews(requestContext context.Context, repository Repository, pullRequestNumber int) ([]Review, error) {
	if validationError := repository.validate(); validationError != nil {
		return nil, validationError
	}

	listOptions := &github.ListOptions{PerPage: pageSizeConstant}
	var reviews []Review
	for {
		page, response, callError := client.api.PullRequests.ListReviews(requestContext, repository.Owner, repository.Name, pullRequestNumber, listOptions)
		if statusError := client.check(listReviewsOperationNameConstant, repository, listOptions, response, callError, http.StatusOK); statusError != nil {
			return nil, statusError
		}
		for _, review := range page {
			reviews = append(reviews, Review{ReviewerLogin: review.GetUser().GetLogin(), State: review.GetState()})
		}
		if response.NextPage == 0 {
			return reviews, nil
		}
		listOptions.Page = response.NextPage
	}
}

// CreatePullRequest opens a pull request.
func (client *Client) CreatePullRequest(requestContext context.Context, repository Repository, newPullRequest NewPullRequest) (PullRequest, error) {
	if validationError := repository.validate(); validationError != nil {
		return PullRequest{}, validationError
	}
	request := &github.NewPullRequest{
		Title: github.String(newPullRequest.Title),
		Body:  github.String(newPullRequest.Body),
		Head:  github.String(newPullRequest.Head),
		Base:  github.String(newPullRequest.Base),
		Draft: github.Bool(newPullRequest.Draft),
	}
	pullRequest, response, callError := client.api.PullRequests.Create(requestContext, repository.Owner, repository.Name, request)
	if statusError := client.check(createPullRequestOperationNameConstant, repository, request, response, callError, http.StatusCreated); statusError != nil {
		return PullRequest{}, statusError
	}
	return convertPullRequest(pullRequest), nil
}

// AddLabels attaches labels to an issue or pull request.
func (client *Client) AddLabels(requestContext context.Context, repository Repository, number int, labels []string) error {
	if validationError := repository.validate(); validationError != nil {
		return validationError
	}
	_, response, callError := client.api.Issues.AddLabelsToIssue(requestContext, repository.Owner, repository.Name, number, labels)
	return client.check(addLabelsOperationNameConstant, repository, labels, response, callError, http.StatusOK)
}

// SetMilestone assigns a milestone to an issue or pull request.
func (client *Client) SetMilestone(requestContext context.Context, repository Repository, number int, milestoneNumber int) error {
	if validationError := repository.validate(); validationError != nil {
		return validationError
	}
	request := &github.IssueRequest{Milestone: github.Int(milestoneNumber)}
	_, response, callError := client.api.Issues.Edit(requestContext, repository.Owner, repository.Name, number, request)
	return client.check(setMilestoneOperationNameConstant, repository, request, response, callError, http.StatusOK)
}

// AddAssignees assigns logins to an issue or pull request.
func (client *Client) AddAssignees(requestContext context.Context, repository Repository, number int, logins []string) error {
	if validationError := repository.validate(); validationError != nil {
		return validationError
	}
	_, response, callError := client.api.Issues.AddAssignees(requestContext, repository.Owner, repository.Name, number, logins)
	return client.check(addAssigneesOperationNameConstant, repository, logins, response, callError, http.StatusCreated)
}

// RequestReviewers requests reviews from logins.
func (client *Client) RequestReviewers(requestContext context.Context, repository Repository, pullRequestNumber int, logins []string) error {
	if validationError := repository.validate(); validationError != nil {
		return validationError
	}
	request := github.ReviewersRequest{Reviewers: logins}
	_, response, callError := client.api.PullRequests.RequestReviewers(requestContext, repository.Owner, repository.Name, pullRequestNumber, request)
	return client.check(requestReviewersOperationNameConstant, repository, request, response, callError, http.StatusCreated)
}

// CreateIssueComment posts a comment on an issue or pull request.
func (client *Client) CreateIssueComment(requestContext context.Context, repository Repository, number int, body string) error {
	if validationError := repository.validate(); validationError != nil {
		return validationError
	}
	request := &github.IssueComment{Body: github.String(body)}
	_, response, callError := client.api.Issues.CreateComment(requestContext, repository.Owner, repository.Name, number, request)
	return client.check(createIssueCommentOperationNameConstant, repository, request, response, callError, http.StatusCreated)
}

func (client *Client) check(operation OperationName, repository Repository, requestPayload any, response *github.Response, callError error, expectedStatus int) error {
	status := 0
	if response != nil && response.Response != nil {
		status = response.StatusCode
	}
	client.logger.Debug(
		logMessageForgeCallConstant,
		zap.String(logFieldOperationConstant, string(operation)),
		zap.String(logFieldRepositoryConstant, repository.String()),
		zap.Int(logFieldStatusConstant, status),
	)
	return expectStatus(operation, requestPayload, response, callError, expectedStatus)
}

func convertPullRequest(pullRequest *github.PullRequest) PullRequest {
	labels := make([]string, 0, len(pullRequest.Labels))
	for _, label := range pullRequest.Labels {
		labels = append(labels, label.GetName())
	}
	return PullRequest{
		Number:     pullRequest.GetNumber(),
		HTMLURL:    pullRequest.GetHTMLURL(),
		State:      pullRequest.GetState(),
		Draft:      pullRequest.GetDraft(),
		HeadBranch: pullRequest.GetHead().GetRef(),
		Labels:     labels,
		CreatedAt:  pullRequest.GetCreatedAt().Time,
		ClosedAt:   pullRequest.GetClosedAt().Time,
	}
}
