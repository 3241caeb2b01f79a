package checkout

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/revreq/internal/execshell"
	"github.com/temirov/revreq/internal/gitrepo"
	"github.com/temirov/revreq/internal/reference"
	"github.com/temirov/revreq/internal/reviewerrors"
)

const (
	// DefaultCloneDirectory is the working tree created by the clone.
	DefaultCloneDirectory = "repository"
	// DefaultSourceDirectory is listed after cloning to confirm the project layout.
	DefaultSourceDirectory = "src/main/java"
	// DefaultBotName is the commit author name configured in the working tree.
	DefaultBotName = "github-actions[bot]"
	// DefaultBotEmail is the commit author email configured in the working tree.
	DefaultBotEmail = "41898282+github-actions[bot]@users.noreply.github.com"

	gitCloneSubcommandConstant           = "clone"
	gitFetchSubcommandConstant           = "fetch"
	gitDiffSubcommandConstant            = "diff"
	gitConfigSubcommandConstant          = "config"
	gitCheckoutSubcommandConstant        = "checkout"
	gitDepthFlagConstant                 = "--depth"
	gitDepthValueConstant                = "1"
	gitNoTagsFlagConstant                = "--no-tags"
	gitUnshallowFlagConstant             = "--unshallow"
	gitTagsFlagConstant                  = "--tags"
	gitStatFlagConstant                  = "--stat"
	gitQuietFlagConstant                 = "--quiet"
	gitCreateBranchFlagConstant          = "-b"
	gitUserNameKeyConstant               = "user.name"
	gitUserEmailKeyConstant              = "user.email"
	originRemoteNameConstant             = "origin"
	diffDetectedExitCodeConstant         = 1
	sourceDirectoryResourceConstant      = "source directory"
	mainChangedPolicyConstant            = "main_unchanged_since_release"
	mainChangedTemplateConstant          = "%s has changed since release %s; tag a new release from %s and request the review for it"
	cloneFailureTemplateConstant         = "Unable to clone %s"
	sourceListingFailureTemplateConstant = "Unable to list %s in %s"
	historyFailureTemplateConstant       = "Unable to fetch history of %s"
	diffFailureTemplateConstant          = "Unable to compare %s with %s"
	identityFailureTemplateConstant      = "Unable to configure git identity in %s"
	branchFailureTemplateConstant        = "Unable to create branch %s"
	clonedTemplateConstant               = "Cloned %s into %s"
	sourceListingTemplateConstant        = "%s: %s"
	emptySourceListingTemplateConstant   = "%s is empty"
	sourceEntrySeparatorConstant         = ", "
	noDifferencesTemplateConstant        = "%s and %s are identical"
	branchCreatedTemplateConstant        = "Created %s from %s"
	executorRequiredMessageConstant      = "checkout requires a git executor"
	tokenRequiredMessageConstant         = "checkout requires a token"
	defaultBranchRequiredMessageConstant = "checkout requires the default branch name"
	logFieldDirectoryConstant            = "directory"
	logFieldBranchConstant               = "branch"
	branchPreparedLogMessageConstant     = "review branch prepared"
)

var (
	// ErrExecutorNotConfigured indicates the preparer was constructed without a git executor.
	ErrExecutorNotConfigured = errors.New(executorRequiredMessageConstant)
	// ErrTokenMissing indicates the clone credentials were not provided.
	ErrTokenMissing = errors.New(tokenRequiredMessageConstant)
	// ErrDefaultBranchMissing indicates the default branch to compare against was not provided.
	ErrDefaultBranchMissing = errors.New(defaultBranchRequiredMessageConstant)
)

// Options configures a checkout.
type Options struct {
	Token           string
	DefaultBranch   string
	CloneDirectory  string
	SourceDirectory string
	BotName         string
	BotEmail        string
}

// Result describes the prepared working tree.
type Result struct {
	CloneDirectory string
	ReviewBranch   string
	SourceEntries  []string
}

// Preparer clones the main repository and creates the review branch at the release commit.
type Preparer struct {
	executor   GitExecutor
	fileSystem afero.Fs
	reporter   Reporter
	logger     *zap.Logger
}

// NewPreparer constructs a Preparer. A nil fileSystem selects the operating system filesystem.
func NewPreparer(executor GitExecutor, fileSystem afero.Fs, reporter Reporter, logger *zap.Logger) (*Preparer, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Preparer{executor: executor, fileSystem: fileSystem, reporter: reporter, logger: logger}, nil
}

// Prepare clones the repository, requires the default branch to match the release tag, and checks out the review branch.
func (preparer *Preparer) Prepare(prepareContext context.Context, parsedReference reference.ParsedReference, options Options) (Result, error) {
	options = applyDefaults(options)
	if len(strings.TrimSpace(options.Token)) == 0 {
		return Result{}, ErrTokenMissing
	}
	if len(strings.TrimSpace(options.DefaultBranch)) == 0 {
		return Result{}, ErrDefaultBranchMissing
	}
	preparer.executor.RegisterSecret(options.Token)

	remote := gitrepo.NewRemoteURL(parsedReference.Owner, parsedReference.MainRepository)
	publicURL, publicURLError := gitrepo.FormatRemoteURL(remote)
	if publicURLError != nil {
		return Result{}, publicURLError
	}
	cloneURL, cloneURLError := gitrepo.FormatAuthenticatedCloneURL(remote, options.Token)
	if cloneURLError != nil {
		return Result{}, cloneURLError
	}

	if _, cloneError := preparer.executor.ExecuteGit(prepareContext, execshell.CommandDetails{
		Arguments: []string{gitCloneSubcommandConstant, gitDepthFlagConstant, gitDepthValueConstant, gitNoTagsFlagConstant, cloneURL, options.CloneDirectory},
	}); cloneError != nil {
		return Result{}, reviewerrors.Wrap(fmt.Sprintf(cloneFailureTemplateConstant, publicURL), cloneError)
	}
	preparer.report(fmt.Sprintf(clonedTemplateConstant, publicURL, options.CloneDirectory))

	sourceEntries, listingError := preparer.listSourceDirectory(options)
	if listingError != nil {
		return Result{}, listingError
	}

	if historyError := preparer.fetchHistory(prepareContext, options.CloneDirectory); historyError != nil {
		return Result{}, reviewerrors.Wrap(fmt.Sprintf(historyFailureTemplateConstant, publicURL), historyError)
	}

	if diffError := preparer.requireUnchangedDefaultBranch(prepareContext, options, parsedReference.VersionTag); diffError != nil {
		return Result{}, diffError
	}

	if identityError := preparer.configureIdentity(prepareContext, options); identityError != nil {
		return Result{}, reviewerrors.Wrap(fmt.Sprintf(identityFailureTemplateConstant, options.CloneDirectory), identityError)
	}

	reviewBranch := parsedReference.ReviewBranchName()
	if _, branchError := preparer.executor.ExecuteGit(prepareContext, execshell.CommandDetails{
		Arguments:        []string{gitCheckoutSubcommandConstant, gitCreateBranchFlagConstant, reviewBranch, parsedReference.VersionTag},
		WorkingDirectory: options.CloneDirectory,
	}); branchError != nil {
		return Result{}, reviewerrors.Wrap(fmt.Sprintf(branchFailureTemplateConstant, reviewBranch), branchError)
	}
	preparer.report(fmt.Sprintf(branchCreatedTemplateConstant, reviewBranch, parsedReference.VersionTag))
	preparer.logger.Info(branchPreparedLogMessageConstant, zap.String(logFieldDirectoryConstant, options.CloneDirectory), zap.String(logFieldBranchConstant, reviewBranch))

	return Result{CloneDirectory: options.CloneDirectory, ReviewBranch: reviewBranch, SourceEntries: sourceEntries}, nil
}

func (preparer *Preparer) listSourceDirectory(options Options) ([]string, error) {
	sourcePath := filepath.Join(options.CloneDirectory, options.SourceDirectory)
	entries, readError := afero.ReadDir(preparer.fileSystem, sourcePath)
	if readError != nil {
		notFoundError := reviewerrors.NotFoundError{Resource: sourceDirectoryResourceConstant, Message: sourcePath, Cause: readError}
		return nil, reviewerrors.Wrap(fmt.Sprintf(sourceListingFailureTemplateConstant, options.SourceDirectory, options.CloneDirectory), notFoundError)
	}

	entryNames := make([]string, 0, len(entries))
	for _, entry := range entries {
		entryNames = append(entryNames, entry.Name())
	}
	if len(entryNames) == 0 {
		preparer.report(fmt.Sprintf(emptySourceListingTemplateConstant, options.SourceDirectory))
	} else {
		preparer.report(fmt.Sprintf(sourceListingTemplateConstant, options.SourceDirectory, strings.Join(entryNames, sourceEntrySeparatorConstant)))
	}
	return entryNames, nil
}

func (preparer *Preparer) fetchHistory(prepareContext context.Context, cloneDirectory string) error {
	_, fetchError := preparer.executor.ExecuteGit(prepareContext, execshell.CommandDetails{
		Arguments:        []string{gitFetchSubcommandConstant, gitUnshallowFlagConstant, gitTagsFlagConstant, originRemoteNameConstant},
		WorkingDirectory: cloneDirectory,
	})
	return fetchError
}

func (preparer *Preparer) requireUnchangedDefaultBranch(prepareContext context.Context, options Options, tag string) error {
	statResult, statError := preparer.executor.ExecuteGit(prepareContext, execshell.CommandDetails{
		Arguments:        []string{gitDiffSubcommandConstant, gitStatFlagConstant, options.DefaultBranch, tag},
		WorkingDirectory: options.CloneDirectory,
	})
	if statError != nil {
		return reviewerrors.Wrap(fmt.Sprintf(diffFailureTemplateConstant, options.DefaultBranch, tag), statError)
	}
	if preparer.reporter != nil {
		preparer.reporter.Block(statResult.StandardOutput)
	}

	_, quietError := preparer.executor.ExecuteGit(prepareContext, execshell.CommandDetails{
		Arguments:        []string{gitDiffSubcommandConstant, gitQuietFlagConstant, options.DefaultBranch, tag},
		WorkingDirectory: options.CloneDirectory,
	})
	if quietError == nil {
		preparer.report(fmt.Sprintf(noDifferencesTemplateConstant, options.DefaultBranch, tag))
		return nil
	}
	if exitCode, exited := execshell.ExitCode(quietError); exited && exitCode == diffDetectedExitCodeConstant {
		return reviewerrors.PolicyViolationError{
			Policy:  mainChangedPolicyConstant,
			Message: fmt.Sprintf(mainChangedTemplateConstant, options.DefaultBranch, tag, options.DefaultBranch),
		}
	}
	return reviewerrors.Wrap(fmt.Sprintf(diffFailureTemplateConstant, options.DefaultBranch, tag), quietError)
}

func (preparer *Preparer) configureIdentity(prepareContext context.Context, options Options) error {
	identity := [][2]string{
		{gitUserNameKeyConstant, options.BotName},
		{gitUserEmailKeyConstant, options.BotEmail},
	}
	for _, setting := range identity {
		if _, configError := preparer.executor.ExecuteGit(prepareContext, execshell.CommandDetails{
			Arguments:        []string{gitConfigSubcommandConstant, setting[0], setting[1]},
			WorkingDirectory: options.CloneDirectory,
		}); configError != nil {
			return configError
		}
	}
	return nil
}

func (preparer *Preparer) report(message string) {
	if preparer.reporter == nil {
		return
	}
	preparer.reporter.Info(message)
}

func applyDefaults(options Options) Options {
	if len(strings.TrimSpace(options.CloneDirectory)) == 0 {
		options.CloneDirectory = DefaultCloneDirectory
	}
	if len(strings.TrimSpace(options.SourceDirectory)) == 0 {
		options.SourceDirectory = DefaultSourceDirectory
	}
	if len(strings.TrimSpace(options.BotName)) == 0 {
		options.BotName = DefaultBotName
	}
	if len(strings.TrimSpace(options.BotEmail)) == 0 {
		options.BotEmail = DefaultBotEmail
	}
	options.DefaultBranch = strings.TrimSpace(options.DefaultBranch)
	return options
}
