package pullrequest_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/revreq/internal/forge"
	"github.com/temirov/revreq/internal/pullrequest"
)

var testRepository = forge.Repository{Owner: "classroom", Name: "project-student"}

type fakeClient struct {
	milestones         []forge.Milestone
	createdMilestone   forge.Milestone
	pullRequests       []forge.PullRequest
	pullRequestsError  error
	reviews            map[int][]forge.Review
	createdPullRequest forge.PullRequest
	failingCall        string
	calls              []string
	newPullRequest     forge.NewPullRequest
}

func (client *fakeClient) record(call string) error {
	client.calls = append(client.calls, call)
	if call == client.failingCall {
		return forge.APIStatusError{Operation: forge.OperationName(call), ExpectedStatus: http.StatusCreated, ActualStatus: http.StatusUnprocessableEntity}
	}
	return nil
}

func (client *fakeClient) Milestones(requestContext context.Context, repository forge.Repository) ([]forge.Milestone, error) {
	return client.milestones, client.record("Milestones")
}

func (client *fakeClient) CreateMilestone(requestContext context.Context, repository forge.Repository, title string) (forge.Milestone, error) {
	return client.createdMilestone, client.record("CreateMilestone " + title)
}

func (client *fakeClient) PullRequests(requestContext context.Context, repository forge.Repository) ([]forge.PullRequest, error) {
	client.calls = append(client.calls, "PullRequests")
	return client.pullRequests, client.pullRequestsError
}

func (client *fakeClient) Reviews(requestContext context.Context, repository forge.Repository, pullRequestNumber int) ([]forge.Review, error) {
	return client.reviews[pullRequestNumber], client.record(fmt.Sprintf("Reviews %d", pullRequestNumber))
}

func (client *fakeClient) CreatePullRequest(requestContext context.Context, repository forge.Repository, newPullRequest forge.NewPullRequest) (forge.PullRequest, error) {
	client.newPullRequest = newPullRequest
	return client.createdPullRequest, client.record("CreatePullRequest")
}

func (client *fakeClient) AddLabels(requestContext context.Context, repository forge.Repository, number int, labels []string) error {
	return client.record(fmt.Sprintf("AddLabels %d %v", number, labels))
}

func (client *fakeClient) SetMilestone(requestContext context.Context, repository forge.Repository, number int, milestoneNumber int) error {
	return client.record(fmt.Sprintf("SetMilestone %d %d", number, milestoneNumber))
}

func (client *fakeClient) AddAssignees(requestContext context.Context, repository forge.Repository, number int, logins []string) error {
	return client.record(fmt.Sprintf("AddAssignees %d %v", number, logins))
}

func (client *fakeClient) RequestReviewers(requestContext context.Context, repository forge.Repository, pullRequestNumber int, logins []string) error {
	return client.record(fmt.Sprintf("RequestReviewers %d %v", pullRequestNumber, logins))
}

func (client *fakeClient) CreateIssueComment(requestContext context.Context, repository forge.Repository, number int, body string) error {
	return client.record(fmt.Sprintf("CreateIssueComment %d", number))
}

type recordingReporter struct {
	messages []string
	warnings []string
}

func (reporter *recordingReporter) Info(message string) {
	reporter.messages = append(reporter.messages, message)
}

func (reporter *recordingReporter) Warning(message string) {
	reporter.warnings = append(reporter.warnings, message)
}

func TestEnsureMilestone(testInstance *testing.T) {
	testCases := []struct {
		name              string
		client            *fakeClient
		expectedMilestone forge.Milestone
		expectedCalls     []string
	}{
		{
			name:              "existing",
			client:            &fakeClient{milestones: []forge.Milestone{{Number: 1, Title: "Project 1"}, {Number: 2, Title: "Project 2"}}},
			expectedMilestone: forge.Milestone{Number: 2, Title: "Project 2"},
			expectedCalls:     []string{"Milestones"},
		},
		{
			name:              "created",
			client:            &fakeClient{milestones: []forge.Milestone{{Number: 1, Title: "Project 1"}}, createdMilestone: forge.Milestone{Number: 5, Title: "Project 2"}},
			expectedMilestone: forge.Milestone{Number: 5, Title: "Project 2"},
			expectedCalls:     []string{"Milestones", "CreateMilestone Project 2"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			submitter, creationError := pullrequest.NewSubmitter(testCase.client, &recordingReporter{}, nil)
			require.NoError(testInstance, creationError)

			milestone, ensureError := submitter.EnsureMilestone(context.Background(), testRepository, "Project 2")
			require.NoError(testInstance, ensureError)
			require.Equal(testInstance, testCase.expectedMilestone, milestone)
			require.Equal(testInstance, testCase.expectedCalls, testCase.client.calls)
		})
	}
}

func TestPriorPullRequestsFiltersByProjectAndCollectsApprovers(testInstance *testing.T) {
	createdAt := time.Date(2024, time.February, 10, 20, 0, 0, 0, time.UTC)
	client := &fakeClient{
		pullRequests: []forge.PullRequest{
			{Number: 12, HTMLURL: testPriorURLConstant, State: "closed", HeadBranch: "review/v2.2.0", Labels: []string{"project2"}, CreatedAt: createdAt},
			{Number: 13, State: "open", Draft: true, HeadBranch: "review/v2.2.1"},
			{Number: 9, State: "closed", HeadBranch: "review/v1.4.0"},
			{Number: 14, State: "open", HeadBranch: "feature/v2.2.0"},
		},
		reviews: map[int][]forge.Review{
			12: {{ReviewerLogin: "ta", State: "COMMENTED"}, {ReviewerLogin: "instructor", State: "APPROVED"}},
		},
	}
	reporter := &recordingReporter{}
	submitter, creationError := pullrequest.NewSubmitter(client, reporter, nil)
	require.NoError(testInstance, creationError)

	priorPullRequests, listError := submitter.PriorPullRequests(context.Background(), testRepository, "review/v2.")
	require.NoError(testInstance, listError)
	require.Equal(testInstance, []pullrequest.PriorPullRequest{
		{Number: 12, URL: testPriorURLConstant, Status: "closed", Labels: []string{"project2"}, Approvers: []string{"instructor"}, CreatedAt: createdAt},
		{Number: 13, Status: "draft", Approvers: []string{}},
	}, priorPullRequests)
	require.Equal(testInstance, []string{"PullRequests", "Reviews 12", "Reviews 13"}, client.calls)
	require.Contains(testInstance, reporter.messages, "Found 2 previous pull request(s) for classroom/project-student")
}

func TestPriorPullRequestsTreatsNotFoundAsWarning(testInstance *testing.T) {
	client := &fakeClient{pullRequestsError: forge.APIStatusError{Operation: "ListPullRequests", ExpectedStatus: http.StatusOK, ActualStatus: http.StatusNotFound}}
	reporter := &recordingReporter{}
	submitter, creationError := pullrequest.NewSubmitter(client, reporter, nil)
	require.NoError(testInstance, creationError)

	priorPullRequests, listError := submitter.PriorPullRequests(context.Background(), testRepository, "review/v2.")
	require.NoError(testInstance, listError)
	require.Empty(testInstance, priorPullRequests)
	require.Equal(testInstance, []string{"No pull requests found for classroom/project-student"}, reporter.warnings)
}

func TestPriorPullRequestsPropagatesOtherErrors(testInstance *testing.T) {
	client := &fakeClient{pullRequestsError: errors.New("Connection Refused")}
	submitter, creationError := pullrequest.NewSubmitter(client, nil, nil)
	require.NoError(testInstance, creationError)

	_, listError := submitter.PriorPullRequests(context.Background(), testRepository, "review/v2.")
	require.EqualError(testInstance, listError, "Unable to list pull requests of classroom/project-student: connection refused")
}

func testSubmission() pullrequest.Submission {
	return pullrequest.Submission{
		Repository:      testRepository,
		Title:           "Project 2: Synchronous Review of v2.3.1",
		Body:            "body",
		Comment:         "comment",
		Head:            "review/v2.3.1",
		Base:            "main",
		Labels:          []string{"project2", "synchronous", "v2.3.1"},
		MilestoneNumber: 5,
		Assignees:       []string{"student"},
		Reviewers:       []string{"instructor", "ta"},
	}
}

func TestSubmitOpensDraftAndAttachesMetadata(testInstance *testing.T) {
	client := &fakeClient{createdPullRequest: forge.PullRequest{Number: 15, HTMLURL: "https://github.com/classroom/project-student/pull/15", Draft: true}}
	submitter, creationError := pullrequest.NewSubmitter(client, &recordingReporter{}, nil)
	require.NoError(testInstance, creationError)

	pullRequest, submitError := submitter.Submit(context.Background(), testSubmission())
	require.NoError(testInstance, submitError)
	require.Equal(testInstance, 15, pullRequest.Number)
	require.Equal(testInstance, forge.NewPullRequest{
		Title: "Project 2: Synchronous Review of v2.3.1",
		Body:  "body",
		Head:  "review/v2.3.1",
		Base:  "main",
		Draft: true,
	}, client.newPullRequest)
	require.Equal(testInstance, []string{
		"CreatePullRequest",
		"AddLabels 15 [project2 synchronous v2.3.1]",
		"SetMilestone 15 5",
		"AddAssignees 15 [student]",
		"RequestReviewers 15 [instructor ta]",
		"CreateIssueComment 15",
	}, client.calls)
}

func TestSubmitStopsAtFirstFailedCall(testInstance *testing.T) {
	client := &fakeClient{createdPullRequest: forge.PullRequest{Number: 15}, failingCall: "SetMilestone 15 5"}
	submitter, creationError := pullrequest.NewSubmitter(client, nil, nil)
	require.NoError(testInstance, creationError)

	pullRequest, submitError := submitter.Submit(context.Background(), testSubmission())
	require.Error(testInstance, submitError)
	require.Contains(testInstance, submitError.Error(), "Unable to update pull request #15")
	require.True(testInstance, forge.IsStatus(submitError, http.StatusUnprocessableEntity))
	require.Equal(testInstance, 15, pullRequest.Number)
	require.Len(testInstance, client.calls, 3)
}

func TestNewSubmitterRequiresClient(testInstance *testing.T) {
	_, creationError := pullrequest.NewSubmitter(nil, nil, nil)
	require.ErrorIs(testInstance, creationError, pullrequest.ErrClientNotConfigured)
}
