package sync

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"qualisync/internal/bootstrap/logging"
	domainsync "qualisync/internal/domain/sync"
	"qualisync/internal/ports"
)

// SyncQualityTarget ingests one organization slice. The organization is
// the prelude transaction; each analysis project with its issues,
// hotspots, gate and measures is one hierarchy unit.
func (s *Service) SyncQualityTarget(ctx context.Context, target QualityTarget) (domainsync.Stats, []domainsync.RecordFailure, error) {
	stats := domainsync.NewStats()
	var failures []domainsync.RecordFailure

	rawOrg, err := s.quality.Organization(ctx, target.Organization)
	if err != nil {
		return stats, failures, err
	}

	var organization ports.Organization
	err = s.uow.WithTx(ctx, func(ctx context.Context) error {
		org, outcome, err := s.reconcileOrganization(ctx, rawOrg)
		if err != nil {
			return err
		}
		organization = org
		stats.Record(domainsync.KindOrganization, outcome)
		return nil
	})
	if err != nil {
		stats.RecordFailure(domainsync.KindOrganization)
		return stats, failures, err
	}

	var rawProjects []ports.RawAnalysisProject
	err = s.quality.Projects(ctx, target.Organization, func(p ports.RawAnalysisProject) error {
		rawProjects = append(rawProjects, p)
		return nil
	})
	if err != nil {
		return stats, failures, err
	}

	wanted := make(map[string]bool, len(target.Projects))
	for _, key := range target.Projects {
		wanted[key] = true
	}

	for _, rawProject := range rawProjects {
		if err := ctx.Err(); err != nil {
			return stats, failures, err
		}
		if len(wanted) > 0 && !wanted[rawProject.Key] {
			continue
		}

		if err := s.syncAnalysisProjectUnit(ctx, target.Organization, organization, rawProject, stats, &failures); err != nil {
			stats.RecordFailure(domainsync.KindAnalysisProject)
			failures = append(failures, failureOf(domainsync.KindAnalysisProject, rawProject.Key, err))
			logging.Warn(ctx, "analysis project unit failed",
				slog.String("organization", target.Organization),
				slog.String("project", rawProject.Key),
				slog.String("error", err.Error()))
		}
	}

	return stats, failures, nil
}

func (s *Service) syncAnalysisProjectUnit(
	ctx context.Context,
	organizationKey string,
	organization ports.Organization,
	rawProject ports.RawAnalysisProject,
	stats domainsync.Stats,
	failures *[]domainsync.RecordFailure,
) error {
	var issues []ports.RawIssue
	err := s.quality.Issues(ctx, organizationKey, rawProject.Key, func(i ports.RawIssue) error {
		issues = append(issues, i)
		return nil
	})
	if err != nil {
		return err
	}

	var hotspots []ports.RawHotspot
	err = s.quality.Hotspots(ctx, rawProject.Key, func(h ports.RawHotspot) error {
		hotspots = append(hotspots, h)
		return nil
	})
	if err != nil {
		return err
	}

	// A project without a configured gate is normal, any other gate
	// failure is a child failure and the unit keeps going.
	gate, hasGate := ports.RawQualityGate{}, false
	switch g, err := s.quality.QualityGate(ctx, rawProject.Key); {
	case err == nil:
		gate, hasGate = g, true
	case isNotFound(err):
	default:
		stats.RecordFailure(domainsync.KindQualityGate)
		*failures = append(*failures, failureOf(domainsync.KindQualityGate, rawProject.Key, err))
	}

	measures, err := s.quality.Measures(ctx, rawProject.Key)
	if err != nil {
		stats.RecordFailure(domainsync.KindMetric)
		*failures = append(*failures, failureOf(domainsync.KindMetric, rawProject.Key, err))
		measures = nil
	}

	return s.uow.WithTx(ctx, func(ctx context.Context) error {
		project, outcome, err := s.reconcileAnalysisProject(ctx, organization.OrganizationID, rawProject)
		if err != nil {
			return err
		}
		stats.Record(domainsync.KindAnalysisProject, outcome)

		for _, raw := range issues {
			_, outcome, err := s.reconcileIssue(ctx, project.AnalysisProjectID, raw)
			if err != nil {
				stats.RecordFailure(domainsync.KindIssue)
				*failures = append(*failures, failureOf(domainsync.KindIssue, raw.Key, err))
				continue
			}
			stats.Record(domainsync.KindIssue, outcome)
		}

		for _, raw := range hotspots {
			_, outcome, err := s.reconcileHotspot(ctx, project.AnalysisProjectID, raw)
			if err != nil {
				stats.RecordFailure(domainsync.KindSecurityHotspot)
				*failures = append(*failures, failureOf(domainsync.KindSecurityHotspot, raw.Key, err))
				continue
			}
			stats.Record(domainsync.KindSecurityHotspot, outcome)
		}

		gateStatus := ""
		if hasGate {
			stored, outcome, err := s.reconcileQualityGate(ctx, project.AnalysisProjectID, gate)
			if err != nil {
				stats.RecordFailure(domainsync.KindQualityGate)
				*failures = append(*failures, failureOf(domainsync.KindQualityGate, gate.ExternalID, err))
			} else {
				stats.Record(domainsync.KindQualityGate, outcome)
				gateStatus = stored.Status
			}
		}

		for _, raw := range measures {
			_, outcome, err := s.reconcileMetric(ctx, project.AnalysisProjectID, raw)
			if err != nil {
				stats.RecordFailure(domainsync.KindMetric)
				*failures = append(*failures, failureOf(domainsync.KindMetric, raw.MetricKey, err))
				continue
			}
			stats.Record(domainsync.KindMetric, outcome)
		}

		return s.refreshProjectAggregates(ctx, project, measures, gateStatus)
	})
}

// refreshProjectAggregates folds the measure pass into the denormalized
// columns the ranking engine reads.
func (s *Service) refreshProjectAggregates(ctx context.Context, project ports.AnalysisProject, measures []ports.RawMeasure, gateStatus string) error {
	next := project
	for _, m := range measures {
		value, err := strconv.ParseFloat(m.Value, 64)
		if err != nil {
			continue
		}
		switch m.MetricKey {
		case "coverage":
			v := value
			next.Coverage = &v
		case "duplicated_lines_density":
			v := value
			next.Duplications = &v
		case "bugs":
			next.BugsCount = int64(value)
		case "vulnerabilities":
			next.VulnerabilitiesCount = int64(value)
		case "code_smells":
			next.CodeSmellsCount = int64(value)
		case "new_violations":
			next.NewIssuesCount = int64(value)
		case "sqale_rating":
			next.MaintainabilityRating = int(value)
		case "reliability_rating":
			next.ReliabilityRating = int(value)
		case "security_rating":
			next.SecurityRating = int(value)
		case "security_review_rating":
			next.SecurityReviewRating = int(value)
		}
	}
	if gateStatus != "" {
		next.QualityGateStatus = gateStatus
	}

	next.UpdatedAt = s.now()
	return s.qualityCat.UpdateAnalysisProject(ctx, next)
}

func isNotFound(err error) bool {
	var api *domainsync.APIError
	return errors.As(err, &api) && api.StatusCode == http.StatusNotFound
}
