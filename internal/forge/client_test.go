package forge_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/revreq/internal/forge"
)

const (
	testTokenConstant          = "test-token"
	testOwnerConstant          = "classroom"
	testRepositoryNameConstant = "project-student"
	testAuthorizationConstant  = "Bearer " + testTokenConstant
)

var testRepository = forge.Repository{Owner: testOwnerConstant, Name: testRepositoryNameConstant}

func newTestClient(testInstance *testing.T, handler http.Handler) *forge.Client {
	testInstance.Helper()
	server := httptest.NewServer(handler)
	testInstance.Cleanup(server.Close)

	client, creationError := forge.NewClient(context.Background(), forge.ClientOptions{Token: testTokenConstant, BaseURL: server.URL})
	require.NoError(testInstance, creationError)
	return client
}

func writeJSON(responseWriter http.ResponseWriter, status int, payload any) {
	responseWriter.Header().Set("Content-Type", "application/json")
	responseWriter.WriteHeader(status)
	_ = json.NewEncoder(responseWriter).Encode(payload)
}

func TestNewClientRequiresToken(testInstance *testing.T) {
	client, creationError := forge.NewClient(context.Background(), forge.ClientOptions{Token: " "})
	require.Error(testInstance, creationError)
	require.IsType(testInstance, forge.InvalidInputError{}, creationError)
	require.Nil(testInstance, client)
}

func TestReleaseByTagSendsTokenAndDecodesRelease(testInstance *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/classroom/project-student/releases/tags/v1.2.0", func(responseWriter http.ResponseWriter, request *http.Request) {
		require.Equal(testInstance, testAuthorizationConstant, request.Header.Get("Authorization"))
		writeJSON(responseWriter, http.StatusOK, map[string]any{
			"html_url":   "https://github.com/classroom/project-student/releases/tag/v1.2.0",
			"tag_name":   "v1.2.0",
			"created_at": "2024-03-01T17:04:05Z",
		})
	})
	client := newTestClient(testInstance, mux)

	release, releaseError := client.ReleaseByTag(context.Background(), testRepository, "v1.2.0")
	require.NoError(testInstance, releaseError)
	require.Equal(testInstance, "v1.2.0", release.TagName)
	require.Equal(testInstance, "https://github.com/classroom/project-student/releases/tag/v1.2.0", release.HTMLURL)
	require.Equal(testInstance, 2024, release.CreatedAt.Year())
}

func TestReleaseByTagReportsNotFound(testInstance *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/classroom/project-student/releases/tags/v9.9.9", func(responseWriter http.ResponseWriter, request *http.Request) {
		writeJSON(responseWriter, http.StatusNotFound, map[string]any{"message": "Not Found"})
	})
	client := newTestClient(testInstance, mux)

	_, releaseError := client.ReleaseByTag(context.Background(), testRepository, "v9.9.9")
	require.Error(testInstance, releaseError)
	require.True(testInstance, forge.IsNotFound(releaseError))

	var statusError forge.APIStatusError
	require.ErrorAs(testInstance, releaseError, &statusError)
	require.Equal(testInstance, http.StatusOK, statusError.ExpectedStatus)
	require.Contains(testInstance, statusError.RequestPayload, "v9.9.9")
	require.Contains(testInstance, statusError.ResponseBody, "Not Found")
}

func TestWorkflowRunsFollowsPagination(testInstance *testing.T) {
	var server *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/classroom/project-student/actions/runs", func(responseWriter http.ResponseWriter, request *http.Request) {
		require.Equal(testInstance, "release", request.URL.Query().Get("event"))
		if request.URL.Query().Get("page") == "2" {
			writeJSON(responseWriter, http.StatusOK, map[string]any{
				"total_count":   2,
				"workflow_runs": []map[string]any{{"id": 2, "run_number": 8, "name": "Run Tests", "event": "release", "head_branch": "v1.2.0", "status": "completed", "conclusion": "success"}},
			})
			return
		}
		responseWriter.Header().Set("Link", fmt.Sprintf(`<%s/repos/classroom/project-student/actions/runs?event=release&page=2>; rel="next"`, server.URL))
		writeJSON(responseWriter, http.StatusOK, map[string]any{
			"total_count":   2,
			"workflow_runs": []map[string]any{{"id": 1, "run_number": 7, "name": "Run Tests", "event": "release", "head_branch": "v1.1.0"}},
		})
	})
	server = httptest.NewServer(mux)
	testInstance.Cleanup(server.Close)
	client, creationError := forge.NewClient(context.Background(), forge.ClientOptions{Token: testTokenConstant, BaseURL: server.URL})
	require.NoError(testInstance, creationError)

	workflowRuns, listError := client.WorkflowRuns(context.Background(), testRepository, "release")
	require.NoError(testInstance, listError)
	require.Len(testInstance, workflowRuns, 2)
	require.Equal(testInstance, int64(2), workflowRuns[1].ID)
	require.Equal(testInstance, 8, workflowRuns[1].RunNumber)
	require.Equal(testInstance, "v1.2.0", workflowRuns[1].HeadBranch)
	require.Equal(testInstance, "success", workflowRuns[1].Conclusion)
}

func TestIssuesWithLabelsQueriesAllStates(testInstance *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/classroom/project-student/issues", func(responseWriter http.ResponseWriter, request *http.Request) {
		require.Equal(testInstance, "all", request.URL.Query().Get("state"))
		require.Equal(testInstance, "project2,functionality", request.URL.Query().Get("labels"))
		writeJSON(responseWriter, http.StatusOK, []map[string]any{
			{"number": 4, "html_url": "https://github.com/classroom/project-student/issues/4", "state": "closed", "locked": true, "active_lock_reason": "resolved"},
			{"number": 5, "state": "open", "pull_request": map[string]any{"url": "https://api.github.com/pulls/5"}},
		})
	})
	client := newTestClient(testInstance, mux)

	issues, listError := client.IssuesWithLabels(context.Background(), testRepository, []string{"project2", "functionality"})
	require.NoError(testInstance, listError)
	require.Equal(testInstance, []forge.Issue{
		{Number: 4, HTMLURL: "https://github.com/classroom/project-student/issues/4", State: "closed", Locked: true, LockReason: "resolved"},
		{Number: 5, State: "open", IsPullRequest: true},
	}, issues)
}

func TestCreatePullRequestSendsDraftPayload(testInstance *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/classroom/project-student/pulls", func(responseWriter http.ResponseWriter, request *http.Request) {
		require.Equal(testInstance, http.MethodPost, request.Method)
		requestBody, readError := io.ReadAll(request.Body)
		require.NoError(testInstance, readError)
		var payload map[string]any
		require.NoError(testInstance, json.Unmarshal(requestBody, &payload))
		require.Equal(testInstance, true, payload["draft"])
		require.Equal(testInstance, "review/v1.2.0", payload["head"])
		require.Equal(testInstance, "main", payload["base"])
		writeJSON(responseWriter, http.StatusCreated, map[string]any{
			"number":   12,
			"html_url": "https://github.com/classroom/project-student/pull/12",
			"state":    "open",
			"draft":    true,
			"head":     map[string]any{"ref": "review/v1.2.0"},
		})
	})
	client := newTestClient(testInstance, mux)

	pullRequest, createError := client.CreatePullRequest(context.Background(), testRepository, forge.NewPullRequest{
		Title: "Review v1.2.0",
		Body:  "body",
		Head:  "review/v1.2.0",
		Base:  "main",
		Draft: true,
	})
	require.NoError(testInstance, createError)
	require.Equal(testInstance, 12, pullRequest.Number)
	require.True(testInstance, pullRequest.Draft)
	require.Equal(testInstance, "review/v1.2.0", pullRequest.HeadBranch)
}

func TestMutatingCallsRequireExpectedStatus(testInstance *testing.T) {
	testCases := []struct {
		name           string
		path           string
		responseStatus int
		responseBody   any
		invoke         func(client *forge.Client) error
		expectError    bool
	}{
		{
			name:           "add_labels_ok",
			path:           "/repos/classroom/project-student/issues/12/labels",
			responseStatus: http.StatusOK,
			responseBody:   []map[string]any{{"name": "project1"}},
			invoke: func(client *forge.Client) error {
				return client.AddLabels(context.Background(), testRepository, 12, []string{"project1"})
			},
		},
		{
			name:           "add_assignees_requires_created",
			path:           "/repos/classroom/project-student/issues/12/assignees",
			responseStatus: http.StatusOK,
			invoke: func(client *forge.Client) error {
				return client.AddAssignees(context.Background(), testRepository, 12, []string{"student"})
			},
			expectError: true,
		},
		{
			name:           "request_reviewers_created",
			path:           "/repos/classroom/project-student/pulls/12/requested_reviewers",
			responseStatus: http.StatusCreated,
			invoke: func(client *forge.Client) error {
				return client.RequestReviewers(context.Background(), testRepository, 12, []string{"instructor"})
			},
		},
		{
			name:           "comment_rejected",
			path:           "/repos/classroom/project-student/issues/12/comments",
			responseStatus: http.StatusUnprocessableEntity,
			invoke: func(client *forge.Client) error {
				return client.CreateIssueComment(context.Background(), testRepository, 12, "checklist")
			},
			expectError: true,
		},
		{
			name:           "set_milestone_ok",
			path:           "/repos/classroom/project-student/issues/12",
			responseStatus: http.StatusOK,
			invoke: func(client *forge.Client) error {
				return client.SetMilestone(context.Background(), testRepository, 12, 3)
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc(testCase.path, func(responseWriter http.ResponseWriter, request *http.Request) {
				if testCase.responseStatus >= http.StatusBadRequest {
					writeJSON(responseWriter, testCase.responseStatus, map[string]any{"message": "Validation Failed"})
					return
				}
				if testCase.responseBody != nil {
					writeJSON(responseWriter, testCase.responseStatus, testCase.responseBody)
					return
				}
				writeJSON(responseWriter, testCase.responseStatus, map[string]any{"number": 12})
			})
			client := newTestClient(testInstance, mux)

			callError := testCase.invoke(client)
			if !testCase.expectError {
				require.NoError(testInstance, callError)
				return
			}
			var statusError forge.APIStatusError
			require.ErrorAs(testInstance, callError, &statusError)
			require.Equal(testInstance, testCase.responseStatus, statusError.ActualStatus)
		})
	}
}

func TestRepositoryValidation(testInstance *testing.T) {
	client := newTestClient(testInstance, http.NewServeMux())

	_, listError := client.PullRequests(context.Background(), forge.Repository{Owner: testOwnerConstant})
	require.Error(testInstance, listError)
	require.IsType(testInstance, forge.InvalidInputError{}, listError)
}
