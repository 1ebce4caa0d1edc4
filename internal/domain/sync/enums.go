package sync

import "strings"

// Kind names one of the twelve reconciled entity kinds.
type Kind string

const (
	KindWorkspace       Kind = "workspace"
	KindProject         Kind = "project"
	KindRepository      Kind = "repository"
	KindCommit          Kind = "commit"
	KindPullRequest     Kind = "pull_request"
	KindBranch          Kind = "branch"
	KindOrganization    Kind = "organization"
	KindAnalysisProject Kind = "analysis_project"
	KindIssue           Kind = "issue"
	KindSecurityHotspot Kind = "security_hotspot"
	KindQualityGate     Kind = "quality_gate"
	KindMetric          Kind = "metric"
)

// Closed enum sets per the external data contracts. A value outside the
// set is a DataContractViolation, never a silent default.
var (
	PullRequestStates = enumSet("OPEN", "MERGED", "DECLINED", "SUPERSEDED")

	IssueSeverities  = enumSet("BLOCKER", "CRITICAL", "MAJOR", "MINOR", "INFO")
	IssueTypes       = enumSet("BUG", "VULNERABILITY", "CODE_SMELL")
	IssueStatuses    = enumSet("OPEN", "CONFIRMED", "REOPENED", "RESOLVED", "CLOSED")
	IssueResolutions = enumSet("FIXED", "WONTFIX", "FALSEPOSITIVE", "REMOVED")

	HotspotPriorities  = enumSet("CRITICAL", "HIGH", "MEDIUM", "LOW")
	HotspotStatuses    = enumSet("TO_REVIEW", "REVIEWED")
	HotspotResolutions = enumSet("FIXED", "SAFE", "ACKNOWLEDGED")

	QualityGateStatuses = enumSet("PASSED", "FAILED", "WARN")

	MetricValueTypes = enumSet("FLOAT", "INT", "STRING", "BOOL")
)

func enumSet(values ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// ValidateEnum checks value against the closed set. The empty string is
// rejected; use ValidateOptionalEnum for nullable fields.
func ValidateEnum(kind Kind, field, value string, set map[string]struct{}) error {
	if _, ok := set[strings.ToUpper(strings.TrimSpace(value))]; !ok {
		return &DataContractViolation{Kind: kind, Field: field, Value: value}
	}
	return nil
}

// ValidateOptionalEnum accepts the empty string for fields the platform
// only sets on resolved records.
func ValidateOptionalEnum(kind Kind, field, value string, set map[string]struct{}) error {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return ValidateEnum(kind, field, value, set)
}

// NormalizeEnum returns the canonical upper-case form of an already
// validated value.
func NormalizeEnum(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}
