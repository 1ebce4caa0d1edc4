package sync

import (
	"context"
	"encoding/json"
	"strconv"

	domainsync "qualisync/internal/domain/sync"
	"qualisync/internal/ports"
)

// Quality-hierarchy reconcilers. Entities minted here get engine-owned
// UUIDs at insert time; the platform keys stay the natural identity.

func (s *Service) reconcileOrganization(ctx context.Context, raw ports.RawOrganization) (ports.Organization, domainsync.Outcome, error) {
	if raw.Key == "" {
		return ports.Organization{}, "", &domainsync.DataContractViolation{Kind: domainsync.KindOrganization, Field: "key", Value: ""}
	}

	lookup := func(ctx context.Context) (ports.Organization, error) {
		return s.qualityCat.OrganizationByKey(ctx, raw.Key)
	}

	insert := func(ctx context.Context) (ports.Organization, error) {
		now := s.now()
		return s.qualityCat.InsertOrganization(ctx, ports.Organization{
			Key:         raw.Key,
			Name:        raw.Name,
			Description: raw.Description,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	update := func(ctx context.Context, existing ports.Organization) (ports.Organization, domainsync.Outcome, error) {
		next := existing
		next.Name = raw.Name
		next.Description = raw.Description

		outcome := domainsync.OutcomeUnchanged
		if next != existing {
			outcome = domainsync.OutcomeUpdated
		}
		next.UpdatedAt = s.now()
		if err := s.qualityCat.UpdateOrganization(ctx, next); err != nil {
			return ports.Organization{}, "", err
		}
		return next, outcome, nil
	}

	return reconcileFlow(ctx, domainsync.KindOrganization, lookup, insert, update)
}

func (s *Service) reconcileAnalysisProject(ctx context.Context, organizationID uint64, raw ports.RawAnalysisProject) (ports.AnalysisProject, domainsync.Outcome, error) {
	if organizationID == 0 {
		return ports.AnalysisProject{}, "", &domainsync.ReferentialIntegrityError{Kind: domainsync.KindAnalysisProject, Parent: domainsync.KindOrganization}
	}
	if raw.Key == "" {
		return ports.AnalysisProject{}, "", &domainsync.DataContractViolation{Kind: domainsync.KindAnalysisProject, Field: "key", Value: ""}
	}

	lookup := func(ctx context.Context) (ports.AnalysisProject, error) {
		return s.qualityCat.AnalysisProjectByKey(ctx, raw.Key)
	}

	insert := func(ctx context.Context) (ports.AnalysisProject, error) {
		now := s.now()
		return s.qualityCat.InsertAnalysisProject(ctx, ports.AnalysisProject{
			OrganizationID: organizationID,
			UUID:           s.newUUID(),
			Key:            raw.Key,
			Name:           raw.Name,
			Visibility:     raw.Visibility,
			LastAnalysisAt: raw.LastAnalysisAt,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}

	// Aggregates and the repository link are owned by other passes, so
	// the update only touches the descriptive fields.
	update := func(ctx context.Context, existing ports.AnalysisProject) (ports.AnalysisProject, domainsync.Outcome, error) {
		next := existing
		next.OrganizationID = organizationID
		next.Name = raw.Name
		next.Visibility = raw.Visibility
		next.LastAnalysisAt = raw.LastAnalysisAt

		outcome := domainsync.OutcomeUnchanged
		if !analysisProjectsEqual(next, existing) {
			outcome = domainsync.OutcomeUpdated
		}
		next.UpdatedAt = s.now()
		if err := s.qualityCat.UpdateAnalysisProject(ctx, next); err != nil {
			return ports.AnalysisProject{}, "", err
		}
		return next, outcome, nil
	}

	return reconcileFlow(ctx, domainsync.KindAnalysisProject, lookup, insert, update)
}

func analysisProjectsEqual(a, b ports.AnalysisProject) bool {
	return a.OrganizationID == b.OrganizationID &&
		a.Key == b.Key &&
		a.Name == b.Name &&
		a.Visibility == b.Visibility &&
		a.LastAnalysisAt == b.LastAnalysisAt
}

func (s *Service) reconcileIssue(ctx context.Context, analysisProjectID uint64, raw ports.RawIssue) (ports.Issue, domainsync.Outcome, error) {
	if analysisProjectID == 0 {
		return ports.Issue{}, "", &domainsync.ReferentialIntegrityError{Kind: domainsync.KindIssue, Parent: domainsync.KindAnalysisProject}
	}
	if raw.Key == "" {
		return ports.Issue{}, "", &domainsync.DataContractViolation{Kind: domainsync.KindIssue, Field: "key", Value: ""}
	}
	if err := domainsync.ValidateEnum(domainsync.KindIssue, "severity", raw.Severity, domainsync.IssueSeverities); err != nil {
		return ports.Issue{}, "", err
	}
	if err := domainsync.ValidateEnum(domainsync.KindIssue, "type", raw.Type, domainsync.IssueTypes); err != nil {
		return ports.Issue{}, "", err
	}
	if err := domainsync.ValidateEnum(domainsync.KindIssue, "status", raw.Status, domainsync.IssueStatuses); err != nil {
		return ports.Issue{}, "", err
	}
	if err := domainsync.ValidateOptionalEnum(domainsync.KindIssue, "resolution", raw.Resolution, domainsync.IssueResolutions); err != nil {
		return ports.Issue{}, "", err
	}

	tagsJSON, err := encodeTags(raw.Tags)
	if err != nil {
		return ports.Issue{}, "", err
	}

	fill := func(row *ports.Issue) {
		row.AnalysisProjectID = analysisProjectID
		row.Rule = raw.Rule
		row.Severity = domainsync.NormalizeEnum(raw.Severity)
		row.Type = domainsync.NormalizeEnum(raw.Type)
		row.Status = domainsync.NormalizeEnum(raw.Status)
		row.Resolution = domainsync.NormalizeEnum(raw.Resolution)
		row.Component = raw.Component
		row.Line = raw.Line
		row.Message = raw.Message
		row.Effort = raw.Effort
		row.Author = raw.Author
		row.Assignee = raw.Assignee
		row.TagsJSON = tagsJSON
		row.OpenedAt = raw.CreatedAt
		row.LastActivity = raw.UpdatedAt
		row.ClosedAt = raw.ClosedAt
	}

	lookup := func(ctx context.Context) (ports.Issue, error) {
		return s.qualityCat.IssueByKey(ctx, raw.Key)
	}

	insert := func(ctx context.Context) (ports.Issue, error) {
		now := s.now()
		row := ports.Issue{UUID: s.newUUID(), Key: raw.Key, CreatedAt: now, UpdatedAt: now}
		fill(&row)
		return s.qualityCat.InsertIssue(ctx, row)
	}

	update := func(ctx context.Context, existing ports.Issue) (ports.Issue, domainsync.Outcome, error) {
		next := existing
		fill(&next)

		outcome := domainsync.OutcomeUnchanged
		if next != existing {
			outcome = domainsync.OutcomeUpdated
		}
		next.UpdatedAt = s.now()
		if err := s.qualityCat.UpdateIssue(ctx, next); err != nil {
			return ports.Issue{}, "", err
		}
		return next, outcome, nil
	}

	return reconcileFlow(ctx, domainsync.KindIssue, lookup, insert, update)
}

func encodeTags(tags []string) (string, error) {
	if len(tags) == 0 {
		return "[]", nil
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return "", &domainsync.DataContractViolation{Kind: domainsync.KindIssue, Field: "tags", Value: err.Error()}
	}
	return string(raw), nil
}

func (s *Service) reconcileHotspot(ctx context.Context, analysisProjectID uint64, raw ports.RawHotspot) (ports.SecurityHotspot, domainsync.Outcome, error) {
	if analysisProjectID == 0 {
		return ports.SecurityHotspot{}, "", &domainsync.ReferentialIntegrityError{Kind: domainsync.KindSecurityHotspot, Parent: domainsync.KindAnalysisProject}
	}
	if raw.Key == "" {
		return ports.SecurityHotspot{}, "", &domainsync.DataContractViolation{Kind: domainsync.KindSecurityHotspot, Field: "key", Value: ""}
	}
	if err := domainsync.ValidateEnum(domainsync.KindSecurityHotspot, "review_priority", raw.ReviewPriority, domainsync.HotspotPriorities); err != nil {
		return ports.SecurityHotspot{}, "", err
	}
	if err := domainsync.ValidateEnum(domainsync.KindSecurityHotspot, "status", raw.Status, domainsync.HotspotStatuses); err != nil {
		return ports.SecurityHotspot{}, "", err
	}
	if err := domainsync.ValidateOptionalEnum(domainsync.KindSecurityHotspot, "resolution", raw.Resolution, domainsync.HotspotResolutions); err != nil {
		return ports.SecurityHotspot{}, "", err
	}

	fill := func(row *ports.SecurityHotspot) {
		row.AnalysisProjectID = analysisProjectID
		row.RuleKey = raw.RuleKey
		row.ReviewPriority = domainsync.NormalizeEnum(raw.ReviewPriority)
		row.SecurityCategory = raw.SecurityCategory
		row.Status = domainsync.NormalizeEnum(raw.Status)
		row.Resolution = domainsync.NormalizeEnum(raw.Resolution)
		row.Component = raw.Component
		row.Line = raw.Line
		row.Message = raw.Message
		row.Author = raw.Author
		row.Assignee = raw.Assignee
	}

	lookup := func(ctx context.Context) (ports.SecurityHotspot, error) {
		return s.qualityCat.HotspotByKey(ctx, raw.Key)
	}

	insert := func(ctx context.Context) (ports.SecurityHotspot, error) {
		now := s.now()
		row := ports.SecurityHotspot{UUID: s.newUUID(), Key: raw.Key, CreatedAt: now, UpdatedAt: now}
		fill(&row)
		return s.qualityCat.InsertHotspot(ctx, row)
	}

	update := func(ctx context.Context, existing ports.SecurityHotspot) (ports.SecurityHotspot, domainsync.Outcome, error) {
		next := existing
		fill(&next)

		outcome := domainsync.OutcomeUnchanged
		if next != existing {
			outcome = domainsync.OutcomeUpdated
		}
		next.UpdatedAt = s.now()
		if err := s.qualityCat.UpdateHotspot(ctx, next); err != nil {
			return ports.SecurityHotspot{}, "", err
		}
		return next, outcome, nil
	}

	return reconcileFlow(ctx, domainsync.KindSecurityHotspot, lookup, insert, update)
}

func (s *Service) reconcileQualityGate(ctx context.Context, analysisProjectID uint64, raw ports.RawQualityGate) (ports.QualityGate, domainsync.Outcome, error) {
	if analysisProjectID == 0 {
		return ports.QualityGate{}, "", &domainsync.ReferentialIntegrityError{Kind: domainsync.KindQualityGate, Parent: domainsync.KindAnalysisProject}
	}
	if raw.ExternalID == "" {
		return ports.QualityGate{}, "", &domainsync.DataContractViolation{Kind: domainsync.KindQualityGate, Field: "id", Value: ""}
	}
	if err := domainsync.ValidateEnum(domainsync.KindQualityGate, "status", raw.Status, domainsync.QualityGateStatuses); err != nil {
		return ports.QualityGate{}, "", err
	}

	fill := func(row *ports.QualityGate) {
		row.AnalysisProjectID = analysisProjectID
		row.Name = raw.Name
		row.Status = domainsync.NormalizeEnum(raw.Status)
		row.IsDefault = raw.IsDefault
		row.IsBuiltIn = raw.IsBuiltIn
		row.EvaluatedAt = raw.EvaluatedAt
	}

	lookup := func(ctx context.Context) (ports.QualityGate, error) {
		return s.qualityCat.QualityGateByExternalID(ctx, raw.ExternalID)
	}

	insert := func(ctx context.Context) (ports.QualityGate, error) {
		now := s.now()
		row := ports.QualityGate{UUID: s.newUUID(), ExternalID: raw.ExternalID, CreatedAt: now, UpdatedAt: now}
		fill(&row)
		if row.EvaluatedAt == "" {
			row.EvaluatedAt = now
		}
		return s.qualityCat.InsertQualityGate(ctx, row)
	}

	update := func(ctx context.Context, existing ports.QualityGate) (ports.QualityGate, domainsync.Outcome, error) {
		next := existing
		fill(&next)
		if next.EvaluatedAt == "" {
			next.EvaluatedAt = existing.EvaluatedAt
		}

		outcome := domainsync.OutcomeUnchanged
		if next != existing {
			outcome = domainsync.OutcomeUpdated
		}
		next.UpdatedAt = s.now()
		if err := s.qualityCat.UpdateQualityGate(ctx, next); err != nil {
			return ports.QualityGate{}, "", err
		}
		return next, outcome, nil
	}

	return reconcileFlow(ctx, domainsync.KindQualityGate, lookup, insert, update)
}

// metricValueTypeAliases maps the platform's measure types onto the stored
// closed set. Unknown types fall through to validation and fail the
// record.
var metricValueTypeAliases = map[string]string{
	"PERCENT":  "FLOAT",
	"RATING":   "INT",
	"WORK_DUR": "INT",
	"MILLISEC": "INT",
	"LEVEL":    "STRING",
	"DATA":     "STRING",
	"DISTRIB":  "STRING",
}

func metricValueType(raw string) string {
	normalized := domainsync.NormalizeEnum(raw)
	if normalized == "" {
		return "FLOAT"
	}
	if mapped, ok := metricValueTypeAliases[normalized]; ok {
		return mapped
	}
	return normalized
}

func (s *Service) reconcileMetric(ctx context.Context, analysisProjectID uint64, raw ports.RawMeasure) (ports.Metric, domainsync.Outcome, error) {
	if analysisProjectID == 0 {
		return ports.Metric{}, "", &domainsync.ReferentialIntegrityError{Kind: domainsync.KindMetric, Parent: domainsync.KindAnalysisProject}
	}
	if raw.MetricKey == "" {
		return ports.Metric{}, "", &domainsync.DataContractViolation{Kind: domainsync.KindMetric, Field: "key", Value: ""}
	}
	valueType := metricValueType(raw.ValueType)
	if err := domainsync.ValidateEnum(domainsync.KindMetric, "value_type", valueType, domainsync.MetricValueTypes); err != nil {
		return ports.Metric{}, "", err
	}

	var numeric *float64
	stringValue := ""
	switch valueType {
	case "FLOAT", "INT":
		parsed, err := strconv.ParseFloat(raw.Value, 64)
		if err != nil {
			return ports.Metric{}, "", &domainsync.DataContractViolation{Kind: domainsync.KindMetric, Field: "value", Value: raw.Value}
		}
		numeric = &parsed
	default:
		stringValue = raw.Value
	}

	measuredAt := raw.MeasuredAt
	if measuredAt == "" {
		measuredAt = s.now()
	}

	fill := func(row *ports.Metric) {
		row.AnalysisProjectID = analysisProjectID
		row.Name = raw.Name
		row.Description = raw.Description
		row.Value = numeric
		row.StringValue = stringValue
		row.ValueType = valueType
		row.Domain = raw.Domain
		row.Direction = raw.Direction
		row.MeasuredAt = measuredAt
	}

	lookup := func(ctx context.Context) (ports.Metric, error) {
		return s.qualityCat.MetricByKey(ctx, analysisProjectID, raw.MetricKey)
	}

	insert := func(ctx context.Context) (ports.Metric, error) {
		now := s.now()
		row := ports.Metric{UUID: s.newUUID(), Key: raw.MetricKey, CreatedAt: now, UpdatedAt: now}
		fill(&row)
		return s.qualityCat.InsertMetric(ctx, row)
	}

	update := func(ctx context.Context, existing ports.Metric) (ports.Metric, domainsync.Outcome, error) {
		next := existing
		fill(&next)

		outcome := domainsync.OutcomeUnchanged
		if !metricsEqual(next, existing) {
			outcome = domainsync.OutcomeUpdated
		}
		next.UpdatedAt = s.now()
		if err := s.qualityCat.UpdateMetric(ctx, next); err != nil {
			return ports.Metric{}, "", err
		}
		return next, outcome, nil
	}

	return reconcileFlow(ctx, domainsync.KindMetric, lookup, insert, update)
}

func metricsEqual(a, b ports.Metric) bool {
	aValue, aHas := 0.0, a.Value != nil
	bValue, bHas := 0.0, b.Value != nil
	if aHas {
		aValue = *a.Value
	}
	if bHas {
		bValue = *b.Value
	}
	if aHas != bHas || aValue != bValue {
		return false
	}
	return a.AnalysisProjectID == b.AnalysisProjectID &&
		a.Name == b.Name &&
		a.Description == b.Description &&
		a.StringValue == b.StringValue &&
		a.ValueType == b.ValueType &&
		a.Domain == b.Domain &&
		a.Direction == b.Direction
}
