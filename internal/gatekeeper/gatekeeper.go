package gatekeeper

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/revreq/internal/forge"
	"github.com/temirov/revreq/internal/reference"
	"github.com/temirov/revreq/internal/reviewerrors"
)

const (
	functionalityLabelConstant            = "functionality"
	designLabelConstant                   = "design"
	closedStateConstant                   = "closed"
	openStateConstant                     = "open"
	resolvedLockReasonConstant            = "resolved"
	functionalityResourceConstant         = "approved functionality issue"
	multipleFunctionalityPolicyConstant   = "single_functionality_approval"
	designApprovedPolicyConstant          = "design_not_approved"
	openPullRequestPolicyConstant         = "no_open_review"
	gateFailureTemplateConstant           = "Unable to request a review for project %d"
	missingFunctionalityTemplateConstant  = "no closed, locked, and resolved issue labeled %s and %s"
	multipleFunctionalityTemplateConstant = "%d approved functionality issues found (%s); exactly one is allowed"
	designApprovedTemplateConstant        = "design issue #%d is approved; a code review is not needed"
	openPullRequestTemplateConstant       = "pull request #%d is still open; finish that review first"
	approvalFoundTemplateConstant         = "Functionality approved in issue #%d %s"
	labelSetSummaryTemplateConstant       = "%s + %s: %d item(s)"
	issueNumberTemplateConstant           = "#%d"
	issueNumberSeparatorConstant          = ", "
	clientRequiredMessageConstant         = "gatekeeper requires a forge client"
	logFieldLabelsConstant                = "labels"
	logFieldCountConstant                 = "count"
	labelSetLogMessageConstant            = "label set fetched"
)

// ErrClientNotConfigured indicates the gatekeeper was constructed without a forge client.
var ErrClientNotConfigured = errors.New(clientRequiredMessageConstant)

// ApprovalRecord identifies an issue and its approval state.
type ApprovalRecord struct {
	Number     int
	URL        string
	State      string
	Locked     bool
	LockReason string
}

// Approved reports whether the issue is closed, locked, and resolved.
func (record ApprovalRecord) Approved() bool {
	return record.State == closedStateConstant && record.Locked && record.LockReason == resolvedLockReasonConstant
}

// Gatekeeper enforces the issue and pull request preconditions of a review request.
type Gatekeeper struct {
	client   IssueClient
	reporter Reporter
	logger   *zap.Logger
}

// NewGatekeeper constructs a Gatekeeper.
func NewGatekeeper(client IssueClient, reporter Reporter, logger *zap.Logger) (*Gatekeeper, error) {
	if client == nil {
		return nil, ErrClientNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gatekeeper{client: client, reporter: reporter, logger: logger}, nil
}

// Check requires exactly one approved functionality issue, no approved design issue, and no open
// review pull request for the project. It returns the approved functionality issue.
func (gatekeeper *Gatekeeper) Check(checkContext context.Context, parsedReference reference.ParsedReference) (ApprovalRecord, error) {
	approvalRecord, checkError := gatekeeper.check(checkContext, parsedReference)
	if checkError != nil {
		return ApprovalRecord{}, reviewerrors.Wrap(fmt.Sprintf(gateFailureTemplateConstant, parsedReference.ProjectNumber), checkError)
	}
	return approvalRecord, nil
}

func (gatekeeper *Gatekeeper) check(checkContext context.Context, parsedReference reference.ParsedReference) (ApprovalRecord, error) {
	repository := forge.Repository{Owner: parsedReference.Owner, Name: parsedReference.MainRepository}
	projectLabel := parsedReference.ProjectLabel()

	functionalityIssues, functionalityError := gatekeeper.fetch(checkContext, repository, projectLabel, functionalityLabelConstant, false)
	if functionalityError != nil {
		return ApprovalRecord{}, functionalityError
	}
	designIssues, designError := gatekeeper.fetch(checkContext, repository, projectLabel, designLabelConstant, false)
	if designError != nil {
		return ApprovalRecord{}, designError
	}
	synchronousPullRequests, synchronousError := gatekeeper.fetch(checkContext, repository, projectLabel, string(reference.ReviewTypeSynchronous), true)
	if synchronousError != nil {
		return ApprovalRecord{}, synchronousError
	}
	asynchronousPullRequests, asynchronousError := gatekeeper.fetch(checkContext, repository, projectLabel, string(reference.ReviewTypeAsynchronous), true)
	if asynchronousError != nil {
		return ApprovalRecord{}, asynchronousError
	}

	approvedFunctionality := approvedRecords(functionalityIssues)
	switch {
	case len(approvedFunctionality) == 0:
		return ApprovalRecord{}, reviewerrors.NotFoundError{
			Resource: functionalityResourceConstant,
			Message:  fmt.Sprintf(missingFunctionalityTemplateConstant, projectLabel, functionalityLabelConstant),
		}
	case len(approvedFunctionality) > 1:
		return ApprovalRecord{}, reviewerrors.PolicyViolationError{
			Policy:  multipleFunctionalityPolicyConstant,
			Message: fmt.Sprintf(multipleFunctionalityTemplateConstant, len(approvedFunctionality), formatNumbers(approvedFunctionality)),
		}
	}

	if approvedDesign := approvedRecords(designIssues); len(approvedDesign) > 0 {
		return ApprovalRecord{}, reviewerrors.PolicyViolationError{
			Policy:  designApprovedPolicyConstant,
			Message: fmt.Sprintf(designApprovedTemplateConstant, approvedDesign[0].Number),
		}
	}

	for _, pullRequest := range append(synchronousPullRequests, asynchronousPullRequests...) {
		if pullRequest.State != openStateConstant {
			continue
		}
		return ApprovalRecord{}, reviewerrors.PolicyViolationError{
			Policy:  openPullRequestPolicyConstant,
			Message: fmt.Sprintf(openPullRequestTemplateConstant, pullRequest.Number),
		}
	}

	approvalRecord := approvedFunctionality[0]
	gatekeeper.report(fmt.Sprintf(approvalFoundTemplateConstant, approvalRecord.Number, approvalRecord.URL))
	return approvalRecord, nil
}

func (gatekeeper *Gatekeeper) fetch(checkContext context.Context, repository forge.Repository, projectLabel string, kindLabel string, pullRequests bool) ([]ApprovalRecord, error) {
	labels := []string{projectLabel, kindLabel}
	issues, listError := gatekeeper.client.IssuesWithLabels(checkContext, repository, labels)
	if listError != nil {
		return nil, listError
	}

	records := make([]ApprovalRecord, 0, len(issues))
	for _, issue := range issues {
		if issue.IsPullRequest != pullRequests {
			continue
		}
		records = append(records, ApprovalRecord{
			Number:     issue.Number,
			URL:        issue.HTMLURL,
			State:      issue.State,
			Locked:     issue.Locked,
			LockReason: issue.LockReason,
		})
	}

	gatekeeper.logger.Debug(labelSetLogMessageConstant, zap.Strings(logFieldLabelsConstant, labels), zap.Int(logFieldCountConstant, len(records)))
	gatekeeper.report(fmt.Sprintf(labelSetSummaryTemplateConstant, projectLabel, kindLabel, len(records)))
	return records, nil
}

func (gatekeeper *Gatekeeper) report(message string) {
	if gatekeeper.reporter == nil {
		return
	}
	gatekeeper.reporter.Info(message)
}

func approvedRecords(records []ApprovalRecord) []ApprovalRecord {
	approved := make([]ApprovalRecord, 0, len(records))
	for _, record := range records {
		if record.Approved() {
			approved = append(approved, record)
		}
	}
	return approved
}

func formatNumbers(records []ApprovalRecord) string {
	formattedNumbers := make([]string, 0, len(records))
	for _, record := range records {
		formattedNumbers = append(formattedNumbers, fmt.Sprintf(issueNumberTemplateConstant, record.Number))
	}
	return strings.Join(formattedNumbers, issueNumberSeparatorConstant)
}
