package review

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/revreq/internal/forge"
	"github.com/temirov/revreq/internal/reference"
	"github.com/temirov/revreq/internal/reviewerrors"
)

const (
	// GitHubRepositoryEnvironmentVariable names the owner/name of the repository running the workflow.
	GitHubRepositoryEnvironmentVariable = "GITHUB_REPOSITORY"
	// GitHubActorEnvironmentVariable names the login that triggered the workflow.
	GitHubActorEnvironmentVariable = "GITHUB_ACTOR"

	forgeRequiredMessageConstant    = "review service requires a forge client"
	executorRequiredMessageConstant = "review service requires a command executor"
	consoleRequiredMessageConstant  = "review service requires a console"
	actorFieldNameConstant          = "actor"
	actorMissingMessageConstant     = "must be configured as review.actor or provided through GITHUB_ACTOR"
	logFieldRepositoryConstant      = "repository"
	logFieldTagConstant             = "tag"
	logFieldPullRequestConstant     = "pull_request"
	logFieldDryRunConstant          = "dry_run"
)

var (
	// ErrForgeNotConfigured indicates the service was constructed without a forge client.
	ErrForgeNotConfigured = errors.New(forgeRequiredMessageConstant)
	// ErrExecutorNotConfigured indicates the service was constructed without a command executor.
	ErrExecutorNotConfigured = errors.New(executorRequiredMessageConstant)
	// ErrConsoleNotConfigured indicates the service was constructed without a console.
	ErrConsoleNotConfigured = errors.New(consoleRequiredMessageConstant)
)

// Dependencies lists the collaborators of a Service.
type Dependencies struct {
	Forge             ForgeClient
	Executor          CommandExecutor
	Console           Console
	FileSystem        afero.Fs
	Logger            *zap.Logger
	EnvironmentLookup EnvironmentLookup
}

// Service runs the setup and request sequences.
type Service struct {
	forge             ForgeClient
	executor          CommandExecutor
	console           Console
	fileSystem        afero.Fs
	logger            *zap.Logger
	environmentLookup EnvironmentLookup
}

// NewService constructs a Service. FileSystem, Logger, and EnvironmentLookup fall back to the operating system and a no-op logger.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.Forge == nil {
		return nil, ErrForgeNotConfigured
	}
	if dependencies.Executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	if dependencies.Console == nil {
		return nil, ErrConsoleNotConfigured
	}

	fileSystem := dependencies.FileSystem
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	environmentLookup := dependencies.EnvironmentLookup
	if environmentLookup == nil {
		environmentLookup = os.LookupEnv
	}

	return &Service{
		forge:             dependencies.Forge,
		executor:          dependencies.Executor,
		console:           dependencies.Console,
		fileSystem:        fileSystem,
		logger:            logger,
		environmentLookup: environmentLookup,
	}, nil
}

// repositoryContext combines configured repository names with GITHUB_REPOSITORY for whatever is not configured.
func (service *Service) repositoryContext(configuration CommandConfiguration) (reference.RepositoryContext, error) {
	repositoryContext := reference.RepositoryContext{
		Owner:          configuration.Owner,
		MainRepository: configuration.Repository,
		TestRepository: configuration.TestRepository,
	}
	if len(repositoryContext.Owner) > 0 && len(repositoryContext.MainRepository) > 0 {
		return repositoryContext, nil
	}

	identifier, found := service.lookup(GitHubRepositoryEnvironmentVariable)
	if !found {
		return repositoryContext, nil
	}
	owner, name, parseError := reference.ParseRepositoryIdentifier(identifier)
	if parseError != nil {
		return reference.RepositoryContext{}, parseError
	}
	if len(repositoryContext.Owner) == 0 {
		repositoryContext.Owner = owner
	}
	if len(repositoryContext.MainRepository) == 0 {
		repositoryContext.MainRepository = name
	}
	return repositoryContext, nil
}

func (service *Service) actor(configuration CommandConfiguration) (string, error) {
	if len(configuration.Actor) > 0 {
		return configuration.Actor, nil
	}
	if actor, found := service.lookup(GitHubActorEnvironmentVariable); found {
		return actor, nil
	}
	return "", reviewerrors.ValidationError{FieldName: actorFieldNameConstant, Message: actorMissingMessageConstant}
}

// lookup reports a trimmed, non-empty environment value.
func (service *Service) lookup(key string) (string, bool) {
	value, found := service.environmentLookup(key)
	trimmedValue := strings.TrimSpace(value)
	if !found || len(trimmedValue) == 0 {
		return "", false
	}
	return trimmedValue, true
}

// conclude prints the outcome of a sequence outside of any log group.
func (service *Service) conclude(sequenceError error, notice string) error {
	if sequenceError != nil {
		service.console.Failure(sequenceError.Error())
		service.console.SummarizeWarnings()
		return sequenceError
	}
	service.console.SummarizeWarnings()
	service.console.Notice(notice)
	return nil
}

func mainRepository(parsedReference reference.ParsedReference) forge.Repository {
	return forge.Repository{Owner: parsedReference.Owner, Name: parsedReference.MainRepository}
}
