package review_test

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/temirov/revreq/internal/execshell"
	"github.com/temirov/revreq/internal/forge"
	"github.com/temirov/revreq/internal/review"
	"github.com/temirov/revreq/internal/ui"
)

const (
	testTokenConstant            = "ghs_secret"
	testOutputPathConstant       = "/runner/output"
	testRepositoryConstant       = "classroom/project-student"
	testActorConstant            = "student"
	testReleaseURLConstant       = "https://github.com/classroom/project-student/releases/tag/v2.3.1"
	testRunURLConstant           = "https://github.com/classroom/project-student/actions/runs/99"
	testIssueURLConstant         = "https://github.com/classroom/project-student/issues/4"
	testPullRequestURLConstant   = "https://github.com/classroom/project-student/pull/15"
	quietDiffCommandConstant     = "git diff --quiet main v2.3.1"
	compileCommandPrefixConstant = "mvn -ntp -B clean compile"
	markerCommandConstant        = `grep -r -n -i -E //\s*TODO src/main/java`
	entryPointCommandConstant    = `grep -r -n --exclude=Driver.java -E public\s+static\s+void\s+main src/main/java`
	pushCommandConstant          = "git push origin review/v2.3.1"
)

type stubForge struct {
	release            forge.Release
	releaseError       error
	workflowRuns       []forge.WorkflowRun
	issues             map[string][]forge.Issue
	defaultBranch      string
	milestones         []forge.Milestone
	createdMilestone   forge.Milestone
	pullRequests       []forge.PullRequest
	reviews            map[int][]forge.Review
	createdPullRequest forge.PullRequest
	calls              []string
}

func (client *stubForge) record(format string, arguments ...any) {
	client.calls = append(client.calls, fmt.Sprintf(format, arguments...))
}

func (client *stubForge) DefaultBranch(requestContext context.Context, repository forge.Repository) (string, error) {
	client.record("DefaultBranch %s", repository)
	return client.defaultBranch, nil
}

func (client *stubForge) ReleaseByTag(requestContext context.Context, repository forge.Repository, tag string) (forge.Release, error) {
	client.record("ReleaseByTag %s %s", repository, tag)
	return client.release, client.releaseError
}

func (client *stubForge) WorkflowRuns(requestContext context.Context, repository forge.Repository, event string) ([]forge.WorkflowRun, error) {
	client.record("WorkflowRuns %s %s", repository, event)
	return client.workflowRuns, nil
}

func (client *stubForge) IssuesWithLabels(requestContext context.Context, repository forge.Repository, labels []string) ([]forge.Issue, error) {
	client.record("IssuesWithLabels %s", strings.Join(labels, ","))
	return client.issues[strings.Join(labels, ",")], nil
}

func (client *stubForge) Milestones(requestContext context.Context, repository forge.Repository) ([]forge.Milestone, error) {
	client.record("Milestones")
	return client.milestones, nil
}

func (client *stubForge) CreateMilestone(requestContext context.Context, repository forge.Repository, title string) (forge.Milestone, error) {
	client.record("CreateMilestone %s", title)
	return client.createdMilestone, nil
}

func (client *stubForge) PullRequests(requestContext context.Context, repository forge.Repository) ([]forge.PullRequest, error) {
	client.record("PullRequests")
	return client.pullRequests, nil
}

func (client *stubForge) Reviews(requestContext context.Context, repository forge.Repository, pullRequestNumber int) ([]forge.Review, error) {
	client.record("Reviews %d", pullRequestNumber)
	return client.reviews[pullRequestNumber], nil
}

func (client *stubForge) CreatePullRequest(requestContext context.Context, repository forge.Repository, newPullRequest forge.NewPullRequest) (forge.PullRequest, error) {
	client.record("CreatePullRequest %s %s draft=%t", newPullRequest.Head, newPullRequest.Base, newPullRequest.Draft)
	return client.createdPullRequest, nil
}

func (client *stubForge) AddLabels(requestContext context.Context, repository forge.Repository, number int, labels []string) error {
	client.record("AddLabels %d %s", number, strings.Join(labels, ","))
	return nil
}

func (client *stubForge) SetMilestone(requestContext context.Context, repository forge.Repository, number int, milestoneNumber int) error {
	client.record("SetMilestone %d %d", number, milestoneNumber)
	return nil
}

func (client *stubForge) AddAssignees(requestContext context.Context, repository forge.Repository, number int, logins []string) error {
	client.record("AddAssignees %d %s", number, strings.Join(logins, ","))
	return nil
}

func (client *stubForge) RequestReviewers(requestContext context.Context, repository forge.Repository, pullRequestNumber int, logins []string) error {
	client.record("RequestReviewers %d %s", pullRequestNumber, strings.Join(logins, ","))
	return nil
}

func (client *stubForge) CreateIssueComment(requestContext context.Context, repository forge.Repository, number int, body string) error {
	client.record("CreateIssueComment %d", number)
	return nil
}

func (client *stubForge) mutatingCalls() []string {
	mutating := make([]string, 0, len(client.calls))
	for _, call := range client.calls {
		for _, prefix := range []string{"Create", "AddLabels", "SetMilestone", "AddAssignees", "RequestReviewers"} {
			if strings.HasPrefix(call, prefix) {
				mutating = append(mutating, call)
				break
			}
		}
	}
	return mutating
}

type stubExecutor struct {
	failures map[string]error
	outputs  map[string]string
	commands []string
	secrets  []string
}

func (executor *stubExecutor) run(name execshell.CommandName, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	key := string(name) + " " + strings.Join(details.Arguments, " ")
	executor.commands = append(executor.commands, key)
	if failure, found := executor.failures[key]; found {
		return execshell.ExecutionResult{}, failure
	}
	return execshell.ExecutionResult{StandardOutput: executor.outputs[key]}, nil
}

func (executor *stubExecutor) ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return executor.run(execshell.CommandGit, details)
}

func (executor *stubExecutor) ExecuteMaven(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return executor.run(execshell.CommandMaven, details)
}

func (executor *stubExecutor) ExecuteJava(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return executor.run(execshell.CommandJava, details)
}

func (executor *stubExecutor) ExecuteGrep(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return executor.run(execshell.CommandGrep, details)
}

func (executor *stubExecutor) RegisterSecret(value string) {
	executor.secrets = append(executor.secrets, value)
}

func (executor *stubExecutor) ranCommand(prefix string) bool {
	for _, command := range executor.commands {
		if strings.HasPrefix(command, prefix) {
			return true
		}
	}
	return false
}

func commandFailure(name execshell.CommandName, arguments string, exitCode int) error {
	return execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: name, Details: execshell.CommandDetails{Arguments: strings.Fields(arguments)}},
		Result:  execshell.ExecutionResult{ExitCode: exitCode},
	}
}

func environment(values map[string]string) review.EnvironmentLookup {
	return func(key string) (string, bool) {
		value, found := values[key]
		return value, found
	}
}

func newReadyForge() *stubForge {
	return &stubForge{
		release: forge.Release{HTMLURL: testReleaseURLConstant, TagName: "v2.3.1", CreatedAt: time.Date(2024, time.March, 1, 17, 4, 5, 0, time.UTC)},
		workflowRuns: []forge.WorkflowRun{
			{ID: 98, RunNumber: 6, Name: "Run Tests", Event: "release", HeadBranch: "v2.3.0", Status: "completed", Conclusion: "failure"},
			{ID: 99, RunNumber: 7, Name: "Run Tests", Event: "release", HeadBranch: "v2.3.1", Status: "completed", Conclusion: "success", HTMLURL: testRunURLConstant},
		},
		issues: map[string][]forge.Issue{
			"project2,functionality": {{Number: 4, HTMLURL: testIssueURLConstant, State: "closed", Locked: true, LockReason: "resolved"}},
		},
		defaultBranch:      "main",
		milestones:         []forge.Milestone{{Number: 3, Title: "Project 2"}},
		createdPullRequest: forge.PullRequest{Number: 15, HTMLURL: testPullRequestURLConstant, Draft: true},
	}
}

func newSourceFileSystem(testInstance *testing.T) afero.Fs {
	testInstance.Helper()
	fileSystem := afero.NewMemMapFs()
	require.NoError(testInstance, afero.WriteFile(fileSystem, "repository/src/main/java/Driver.java", []byte("class Driver {}"), 0o644))
	return fileSystem
}

func newPassingExecutor() *stubExecutor {
	return &stubExecutor{outputs: map[string]string{
		markerCommandConstant:     "src/main/java/Driver.java:3:// TODO remove before review\n",
		entryPointCommandConstant: "src/main/java/Main.java:5:public static void main(String[] args) {\n",
	}}
}

func newTestService(testInstance *testing.T, forgeClient *stubForge, executor *stubExecutor, fileSystem afero.Fs, values map[string]string) (*review.Service, *bytes.Buffer) {
	testInstance.Helper()
	var outputBuffer bytes.Buffer
	service, serviceError := review.NewService(review.Dependencies{
		Forge:             forgeClient,
		Executor:          executor,
		Console:           ui.NewConsole(ui.ConsoleOptions{Writer: &outputBuffer, Annotations: true}),
		FileSystem:        fileSystem,
		EnvironmentLookup: environment(values),
	})
	require.NoError(testInstance, serviceError)
	return service, &outputBuffer
}
