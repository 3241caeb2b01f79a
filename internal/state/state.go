package state

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/temirov/revreq/internal/gatekeeper"
	"github.com/temirov/revreq/internal/reference"
	"github.com/temirov/revreq/internal/release"
	"github.com/temirov/revreq/internal/reviewerrors"
)

const (
	encodeFailureTemplateConstant    = "unable to encode state: %w"
	decodeFieldNameConstant          = "state"
	missingFieldMessageConstant      = "is missing; run setup before request"
	invalidTimestampMessageConstant  = "must be an RFC 3339 timestamp"
	releaseCreatedAtFieldConstant    = "release_created_at"
	ownerFieldConstant               = "owner"
	mainRepositoryFieldConstant      = "main_repository"
	versionTagFieldConstant          = "version_tag"
	reviewTypeFieldConstant          = "review_type"
	defaultBranchFieldConstant       = "default_branch"
	reviewBranchFieldConstant        = "review_branch"
	cloneDirectoryFieldConstant      = "clone_directory"
	releaseURLFieldConstant          = "release_url"
	testRunURLFieldConstant          = "test_run_url"
	approvalIssueNumberFieldConstant = "approval_issue_number"
	positiveNumberMessageConstant    = "must be a positive number; run setup before request"
	branchMismatchTemplateConstant   = "%q does not match release %s"
)

// State carries the results of the setup sequence to the request sequence.
type State struct {
	ReviewType          string `mapstructure:"review_type,omitempty"`
	Owner               string `mapstructure:"owner,omitempty"`
	MainRepository      string `mapstructure:"main_repository,omitempty"`
	TestRepository      string `mapstructure:"test_repository,omitempty"`
	ProjectNumber       int    `mapstructure:"project_number,omitempty"`
	ReviewCount         int    `mapstructure:"review_count,omitempty"`
	PatchCount          int    `mapstructure:"patch_count,omitempty"`
	VersionTag          string `mapstructure:"version_tag,omitempty"`
	ReleaseURL          string `mapstructure:"release_url,omitempty"`
	ReleaseCreatedAt    string `mapstructure:"release_created_at,omitempty"`
	TestRunNumber       int    `mapstructure:"test_run_number,omitempty"`
	TestRunID           int64  `mapstructure:"test_run_id,omitempty"`
	TestRunURL          string `mapstructure:"test_run_url,omitempty"`
	ApprovalIssueNumber int    `mapstructure:"approval_issue_number,omitempty"`
	ApprovalIssueURL    string `mapstructure:"approval_issue_url,omitempty"`
	DefaultBranch       string `mapstructure:"default_branch,omitempty"`
	ReviewBranch        string `mapstructure:"review_branch,omitempty"`
	CloneDirectory      string `mapstructure:"clone_directory,omitempty"`
	CacheHit            bool   `mapstructure:"cache_hit,omitempty"`
}

// RecordReference stores the parsed reference.
func (state *State) RecordReference(parsedReference reference.ParsedReference) {
	state.ReviewType = string(parsedReference.ReviewType)
	state.Owner = parsedReference.Owner
	state.MainRepository = parsedReference.MainRepository
	state.TestRepository = parsedReference.TestRepository
	state.ProjectNumber = parsedReference.ProjectNumber
	state.ReviewCount = parsedReference.ReviewCount
	state.PatchCount = parsedReference.PatchCount
	state.VersionTag = parsedReference.VersionTag
}

// RecordVerification stores the verified release and test run.
func (state *State) RecordVerification(verification release.Verification) {
	state.ReleaseURL = verification.ReleaseURL
	state.ReleaseCreatedAt = ""
	if !verification.ReleaseCreatedAt.IsZero() {
		state.ReleaseCreatedAt = verification.ReleaseCreatedAt.UTC().Format(time.RFC3339)
	}
	state.TestRunNumber = verification.TestRunNumber
	state.TestRunID = verification.TestRunID
	state.TestRunURL = verification.TestRunURL
}

// RecordApproval stores the approved functionality issue.
func (state *State) RecordApproval(approvalRecord gatekeeper.ApprovalRecord) {
	state.ApprovalIssueNumber = approvalRecord.Number
	state.ApprovalIssueURL = approvalRecord.URL
}

// Reference rebuilds the parsed reference, re-validating the stored tag and review type.
func (state State) Reference() (reference.ParsedReference, error) {
	return reference.ParseReference(state.VersionTag, state.ReviewType, reference.RepositoryContext{
		Owner:          state.Owner,
		MainRepository: state.MainRepository,
		TestRepository: state.TestRepository,
	})
}

// Verification rebuilds the release verification.
func (state State) Verification() (release.Verification, error) {
	var createdAt time.Time
	if len(strings.TrimSpace(state.ReleaseCreatedAt)) > 0 {
		parsedTime, parseError := time.Parse(time.RFC3339, state.ReleaseCreatedAt)
		if parseError != nil {
			return release.Verification{}, reviewerrors.ValidationError{FieldName: releaseCreatedAtFieldConstant, Message: invalidTimestampMessageConstant}
		}
		createdAt = parsedTime
	}
	return release.Verification{
		ReleaseURL:       state.ReleaseURL,
		ReleaseTag:       state.VersionTag,
		ReleaseCreatedAt: createdAt,
		TestRunNumber:    state.TestRunNumber,
		TestRunID:        state.TestRunID,
		TestRunURL:       state.TestRunURL,
	}, nil
}

// Approval rebuilds the approved functionality issue.
func (state State) Approval() gatekeeper.ApprovalRecord {
	return gatekeeper.ApprovalRecord{Number: state.ApprovalIssueNumber, URL: state.ApprovalIssueURL}
}

// ValidateForRequest reports the first field the request sequence needs that setup did not record.
func (state State) ValidateForRequest() error {
	requiredText := []struct {
		fieldName string
		value     string
	}{
		{fieldName: ownerFieldConstant, value: state.Owner},
		{fieldName: mainRepositoryFieldConstant, value: state.MainRepository},
		{fieldName: versionTagFieldConstant, value: state.VersionTag},
		{fieldName: reviewTypeFieldConstant, value: state.ReviewType},
		{fieldName: defaultBranchFieldConstant, value: state.DefaultBranch},
		{fieldName: reviewBranchFieldConstant, value: state.ReviewBranch},
		{fieldName: cloneDirectoryFieldConstant, value: state.CloneDirectory},
		{fieldName: releaseURLFieldConstant, value: state.ReleaseURL},
		{fieldName: testRunURLFieldConstant, value: state.TestRunURL},
	}
	for _, field := range requiredText {
		if len(strings.TrimSpace(field.value)) == 0 {
			return reviewerrors.ValidationError{FieldName: field.fieldName, Message: missingFieldMessageConstant}
		}
	}
	if state.ApprovalIssueNumber <= 0 {
		return reviewerrors.ValidationError{FieldName: approvalIssueNumberFieldConstant, Message: positiveNumberMessageConstant}
	}

	parsedReference, referenceError := state.Reference()
	if referenceError != nil {
		return referenceError
	}
	if parsedReference.ReviewBranchName() != state.ReviewBranch {
		return reviewerrors.ValidationError{FieldName: reviewBranchFieldConstant, Message: fmt.Sprintf(branchMismatchTemplateConstant, state.ReviewBranch, state.VersionTag)}
	}
	if _, verificationError := state.Verification(); verificationError != nil {
		return verificationError
	}
	return nil
}

// Values flattens the state into its persisted string mapping. Unset fields are omitted.
func (state State) Values() (map[string]string, error) {
	encoded := map[string]any{}
	if decodeError := mapstructure.Decode(state, &encoded); decodeError != nil {
		return nil, fmt.Errorf(encodeFailureTemplateConstant, decodeError)
	}

	values := make(map[string]string, len(encoded))
	for key, value := range encoded {
		switch typedValue := value.(type) {
		case string:
			values[key] = typedValue
		case int:
			values[key] = strconv.Itoa(typedValue)
		case int64:
			values[key] = strconv.FormatInt(typedValue, 10)
		case bool:
			values[key] = strconv.FormatBool(typedValue)
		default:
			values[key] = fmt.Sprint(typedValue)
		}
	}
	return values, nil
}

// FromValues restores a state from its persisted string mapping. Unknown keys are rejected.
func FromValues(values map[string]string) (State, error) {
	var restored State
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &restored,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if decoderError != nil {
		return State{}, decoderError
	}
	if decodeError := decoder.Decode(values); decodeError != nil {
		return State{}, reviewerrors.ValidationError{FieldName: decodeFieldNameConstant, Message: decodeError.Error()}
	}
	return restored, nil
}
