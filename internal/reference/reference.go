package reference

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/blang/semver"

	"github.com/temirov/revreq/internal/reviewerrors"
)

const (
	versionTagPatternConstant                = `^v([1-4])\.(\d+)\.(\d+)$`
	versionTagSubjectConstant                = "release reference"
	versionTagMismatchMessageConstant        = "expected v<1-4>.<reviews>.<patches>"
	versionComponentOverflowTemplateConstant = "component %d is out of range"
	versionTagPrefixConstant                 = "v"
	reviewTypeFieldNameConstant              = "review type"
	reviewTypeEmptyMessageConstant           = "must start with s (synchronous) or a (asynchronous), got an empty value"
	reviewTypeUnknownTemplateConstant        = "must start with s (synchronous) or a (asynchronous), got %q"
	repositoryIdentifierSubjectConstant      = "repository identifier"
	repositoryIdentifierMessageConstant      = "expected owner/name"
	repositoryIdentifierSeparatorConstant    = "/"
	reviewBranchPrefixConstant               = "review/"
	projectLabelPrefixConstant               = "project"
	milestoneTitleTemplateConstant           = "Project %d"
	reviewBranchProjectPrefixTemplate        = "review/v%d."
	synchronousPrefixConstant                = "s"
	asynchronousPrefixConstant               = "a"
	synchronousValueConstant                 = "synchronous"
	asynchronousValueConstant                = "asynchronous"
	ownerFieldNameConstant                   = "repository owner"
	mainRepositoryFieldNameConstant          = "main repository"
	missingValueMessageConstant              = "must be provided"
)

var versionTagPattern = regexp.MustCompile(versionTagPatternConstant)

// ReviewType identifies the requested review modality.
type ReviewType string

// Supported review types. The values double as pull request labels.
const (
	ReviewTypeSynchronous  ReviewType = ReviewType(synchronousValueConstant)
	ReviewTypeAsynchronous ReviewType = ReviewType(asynchronousValueConstant)
)

// Version holds the components encoded in a release tag.
type Version struct {
	Tag           string
	ProjectNumber int
	ReviewCount   int
	PatchCount    int
}

// RepositoryContext names the repositories a review targets.
type RepositoryContext struct {
	Owner          string
	MainRepository string
	TestRepository string
}

// ParsedReference combines the release version, requested review type, and repository context.
type ParsedReference struct {
	ReviewType     ReviewType
	Owner          string
	MainRepository string
	TestRepository string
	ProjectNumber  int
	ReviewCount    int
	PatchCount     int
	VersionTag     string
}

// ReviewBranchName returns the branch used as the pull request head.
func (parsedReference ParsedReference) ReviewBranchName() string {
	return ReviewBranchName(parsedReference.VersionTag)
}

// ProjectLabel returns the label shared by every issue and pull request of the project.
func (parsedReference ParsedReference) ProjectLabel() string {
	return ProjectLabel(parsedReference.ProjectNumber)
}

// MilestoneTitle returns the milestone title of the project.
func (parsedReference ParsedReference) MilestoneTitle() string {
	return fmt.Sprintf(milestoneTitleTemplateConstant, parsedReference.ProjectNumber)
}

// ProjectBranchPrefix returns the prefix shared by review branches of the project.
func (parsedReference ParsedReference) ProjectBranchPrefix() string {
	return fmt.Sprintf(reviewBranchProjectPrefixTemplate, parsedReference.ProjectNumber)
}

// ReviewBranchName derives the review branch from a version tag.
func ReviewBranchName(versionTag string) string {
	return reviewBranchPrefixConstant + versionTag
}

// ProjectLabel builds the project label for a project number.
func ProjectLabel(projectNumber int) string {
	return projectLabelPrefixConstant + strconv.Itoa(projectNumber)
}

// ParseVersionTag extracts the project, review, and patch numbers from a tag of the form v<1-4>.<int>.<int>.
func ParseVersionTag(tag string) (Version, error) {
	if !versionTagPattern.MatchString(tag) {
		return Version{}, reviewerrors.ParseError{Subject: versionTagSubjectConstant, Input: tag, Message: versionTagMismatchMessageConstant}
	}

	semanticVersion, semanticError := semver.Parse(strings.TrimPrefix(tag, versionTagPrefixConstant))
	if semanticError != nil {
		return Version{}, reviewerrors.ParseError{Subject: versionTagSubjectConstant, Input: tag, Message: semanticError.Error()}
	}
	for _, component := range []uint64{semanticVersion.Minor, semanticVersion.Patch} {
		if component > math.MaxInt32 {
			return Version{}, reviewerrors.ParseError{
				Subject: versionTagSubjectConstant,
				Input:   tag,
				Message: fmt.Sprintf(versionComponentOverflowTemplateConstant, component),
			}
		}
	}

	return Version{
		Tag:           tag,
		ProjectNumber: int(semanticVersion.Major),
		ReviewCount:   int(semanticVersion.Minor),
		PatchCount:    int(semanticVersion.Patch),
	}, nil
}

// ParseReviewType resolves the review type from the first character of flag, ignoring case.
func ParseReviewType(flag string) (ReviewType, error) {
	trimmedFlag := strings.ToLower(strings.TrimSpace(flag))
	switch {
	case len(trimmedFlag) == 0:
		return "", reviewerrors.ValidationError{FieldName: reviewTypeFieldNameConstant, Message: reviewTypeEmptyMessageConstant}
	case strings.HasPrefix(trimmedFlag, synchronousPrefixConstant):
		return ReviewTypeSynchronous, nil
	case strings.HasPrefix(trimmedFlag, asynchronousPrefixConstant):
		return ReviewTypeAsynchronous, nil
	default:
		return "", reviewerrors.ValidationError{FieldName: reviewTypeFieldNameConstant, Message: fmt.Sprintf(reviewTypeUnknownTemplateConstant, flag)}
	}
}

// ParseRepositoryIdentifier splits an owner/name identifier such as the GITHUB_REPOSITORY value.
func ParseRepositoryIdentifier(identifier string) (string, string, error) {
	components := strings.Split(strings.TrimSpace(identifier), repositoryIdentifierSeparatorConstant)
	if len(components) != 2 || len(strings.TrimSpace(components[0])) == 0 || len(strings.TrimSpace(components[1])) == 0 {
		return "", "", reviewerrors.ParseError{Subject: repositoryIdentifierSubjectConstant, Input: identifier, Message: repositoryIdentifierMessageConstant}
	}
	return strings.TrimSpace(components[0]), strings.TrimSpace(components[1]), nil
}

// ParseReference parses the release tag and review type flag and binds them to the repository context.
func ParseReference(tag string, reviewTypeFlag string, repositoryContext RepositoryContext) (ParsedReference, error) {
	version, versionError := ParseVersionTag(strings.TrimSpace(tag))
	if versionError != nil {
		return ParsedReference{}, versionError
	}

	reviewType, reviewTypeError := ParseReviewType(reviewTypeFlag)
	if reviewTypeError != nil {
		return ParsedReference{}, reviewTypeError
	}

	if len(strings.TrimSpace(repositoryContext.Owner)) == 0 {
		return ParsedReference{}, reviewerrors.ValidationError{FieldName: ownerFieldNameConstant, Message: missingValueMessageConstant}
	}
	if len(strings.TrimSpace(repositoryContext.MainRepository)) == 0 {
		return ParsedReference{}, reviewerrors.ValidationError{FieldName: mainRepositoryFieldNameConstant, Message: missingValueMessageConstant}
	}

	return ParsedReference{
		ReviewType:     reviewType,
		Owner:          strings.TrimSpace(repositoryContext.Owner),
		MainRepository: strings.TrimSpace(repositoryContext.MainRepository),
		TestRepository: strings.TrimSpace(repositoryContext.TestRepository),
		ProjectNumber:  version.ProjectNumber,
		ReviewCount:    version.ReviewCount,
		PatchCount:     version.PatchCount,
		VersionTag:     version.Tag,
	}, nil
}
