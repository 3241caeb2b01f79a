package release_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/revreq/internal/forge"
	"github.com/temirov/revreq/internal/reference"
	"github.com/temirov/revreq/internal/release"
	"github.com/temirov/revreq/internal/reviewerrors"
)

const (
	testTagConstant        = "v1.2.0"
	testReleaseURLConstant = "https://github.com/classroom/project-student/releases/tag/v1.2.0"
	testRunURLConstant     = "https://github.com/classroom/project-student/actions/runs/42"
)

type stubReleaseClient struct {
	release      forge.Release
	releaseError error
	runs         []forge.WorkflowRun
	runsError    error
	requested    []forge.Repository
}

func (client *stubReleaseClient) ReleaseByTag(requestContext context.Context, repository forge.Repository, tag string) (forge.Release, error) {
	client.requested = append(client.requested, repository)
	return client.release, client.releaseError
}

func (client *stubReleaseClient) WorkflowRuns(requestContext context.Context, repository forge.Repository, event string) ([]forge.WorkflowRun, error) {
	return client.runs, client.runsError
}

type recordingReporter struct {
	messages []string
}

func (reporter *recordingReporter) Info(message string) {
	reporter.messages = append(reporter.messages, message)
}

func testReference() reference.ParsedReference {
	return reference.ParsedReference{
		ReviewType:     reference.ReviewTypeSynchronous,
		Owner:          "classroom",
		MainRepository: "project-student",
		ProjectNumber:  1,
		ReviewCount:    2,
		VersionTag:     testTagConstant,
	}
}

func testRelease() forge.Release {
	return forge.Release{HTMLURL: testReleaseURLConstant, TagName: testTagConstant, CreatedAt: time.Date(2024, time.March, 1, 17, 4, 5, 0, time.UTC)}
}

func TestNewVerifierRequiresClient(testInstance *testing.T) {
	verifier, creationError := release.NewVerifier(nil, nil, nil, "")
	require.ErrorIs(testInstance, creationError, release.ErrClientNotConfigured)
	require.Nil(testInstance, verifier)
}

func TestVerifyReturnsSuccessfulRunIdentifiers(testInstance *testing.T) {
	client := &stubReleaseClient{
		release: testRelease(),
		runs: []forge.WorkflowRun{
			{ID: 41, RunNumber: 6, Name: "Lint", Event: "release", HeadBranch: testTagConstant, Status: "completed", Conclusion: "failure"},
			{ID: 42, RunNumber: 7, Name: release.DefaultWorkflowName, Event: "release", HeadBranch: testTagConstant, Status: "completed", Conclusion: "success", HTMLURL: testRunURLConstant},
			{ID: 40, RunNumber: 5, Name: release.DefaultWorkflowName, Event: "release", HeadBranch: "v1.1.0", Status: "completed", Conclusion: "success"},
		},
	}
	reporter := &recordingReporter{}
	observedCore, observedLogs := observer.New(zapcore.DebugLevel)
	verifier, creationError := release.NewVerifier(client, reporter, zap.New(observedCore), "")
	require.NoError(testInstance, creationError)

	verification, verifyError := verifier.Verify(context.Background(), testReference())
	require.NoError(testInstance, verifyError)
	require.Equal(testInstance, release.Verification{
		ReleaseURL:       testReleaseURLConstant,
		ReleaseTag:       testTagConstant,
		ReleaseCreatedAt: testRelease().CreatedAt,
		TestRunNumber:    7,
		TestRunID:        42,
		TestRunURL:       testRunURLConstant,
	}, verification)
	require.Equal(testInstance, []forge.Repository{{Owner: "classroom", Name: "project-student"}}, client.requested)
	require.Contains(testInstance, reporter.messages, "\"Run Tests\" runs triggered by releases: v1.2.0, v1.1.0")
	require.Equal(testInstance, 1, observedLogs.FilterMessage("release verified").Len())
}

func TestVerifyFailures(testInstance *testing.T) {
	testCases := []struct {
		name              string
		client            *stubReleaseClient
		expectNotFound    bool
		expectPolicy      bool
		expectedSubstring string
	}{
		{
			name: "release_missing",
			client: &stubReleaseClient{releaseError: forge.APIStatusError{
				Operation:      "GetReleaseByTag",
				ExpectedStatus: http.StatusOK,
				ActualStatus:   http.StatusNotFound,
			}},
			expectNotFound:    true,
			expectedSubstring: "Unable to find release v1.2.0: release not found: no release tagged v1.2.0 in classroom/project-student",
		},
		{
			name:              "no_matching_run",
			client:            &stubReleaseClient{release: testRelease(), runs: []forge.WorkflowRun{{ID: 40, Name: release.DefaultWorkflowName, Event: "release", HeadBranch: "v1.1.0", Status: "completed", Conclusion: "success"}}},
			expectNotFound:    true,
			expectedSubstring: "test run not found",
		},
		{
			name:              "no_runs",
			client:            &stubReleaseClient{release: testRelease()},
			expectNotFound:    true,
			expectedSubstring: "no \"run tests\" run triggered by release v1.2.0",
		},
		{
			name:              "run_in_progress",
			client:            &stubReleaseClient{release: testRelease(), runs: []forge.WorkflowRun{{ID: 42, RunNumber: 7, Name: release.DefaultWorkflowName, Event: "release", HeadBranch: testTagConstant, Status: "in_progress"}}},
			expectPolicy:      true,
			expectedSubstring: "is in_progress, expected completed",
		},
		{
			name:              "run_failed",
			client:            &stubReleaseClient{release: testRelease(), runs: []forge.WorkflowRun{{ID: 42, RunNumber: 7, Name: release.DefaultWorkflowName, Event: "release", HeadBranch: testTagConstant, Status: "completed", Conclusion: "failure"}}},
			expectPolicy:      true,
			expectedSubstring: "concluded with failure, expected success",
		},
		{
			name:              "listing_failed",
			client:            &stubReleaseClient{release: testRelease(), runsError: errors.New("Connection Reset")},
			expectedSubstring: "Unable to verify \"Run Tests\" run for release v1.2.0: connection reset",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			verifier, creationError := release.NewVerifier(testCase.client, &recordingReporter{}, zap.NewNop(), release.DefaultWorkflowName)
			require.NoError(testInstance, creationError)

			_, verifyError := verifier.Verify(context.Background(), testReference())
			require.Error(testInstance, verifyError)
			require.Contains(testInstance, verifyError.Error(), testCase.expectedSubstring)
			require.Equal(testInstance, testCase.expectNotFound, reviewerrors.IsNotFound(verifyError))
			require.Equal(testInstance, testCase.expectPolicy, reviewerrors.IsPolicyViolation(verifyError))
		})
	}
}

func TestVerifyHonorsCustomWorkflowName(testInstance *testing.T) {
	client := &stubReleaseClient{
		release: testRelease(),
		runs:    []forge.WorkflowRun{{ID: 42, RunNumber: 7, Name: "CI", Event: "release", HeadBranch: testTagConstant, Status: "completed", Conclusion: "success"}},
	}
	verifier, creationError := release.NewVerifier(client, nil, nil, " CI ")
	require.NoError(testInstance, creationError)

	verification, verifyError := verifier.Verify(context.Background(), testReference())
	require.NoError(testInstance, verifyError)
	require.Equal(testInstance, int64(42), verification.TestRunID)
}
