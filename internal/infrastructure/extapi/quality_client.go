package extapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	domainsync "qualisync/internal/domain/sync"
	"qualisync/internal/ports"
)

// metricKeys is the fixed measure set requested per analysis project. It
// feeds both the metric catalog and the denormalized project aggregates.
const metricKeys = "coverage,duplicated_lines_density,ncloc,bugs,vulnerabilities,code_smells," +
	"new_violations,sqale_rating,reliability_rating,security_rating,security_review_rating"

// QualityClient talks to the quality-analysis platform. Listings use
// index-based paging: the cursor is the 1-based page number and the walk
// ends once pageIndex*pageSize covers the reported total.
type QualityClient struct {
	*client
}

var _ ports.QualityAPI = (*QualityClient)(nil)

func NewQualityClient(cfg Config) *QualityClient {
	return &QualityClient{client: newClient(cfg)}
}

type qcPaging struct {
	PageIndex int `json:"pageIndex"`
	PageSize  int `json:"pageSize"`
	Total     int `json:"total"`
}

func (p qcPaging) nextCursor() string {
	if p.PageSize <= 0 || p.PageIndex*p.PageSize >= p.Total {
		return ""
	}
	return strconv.Itoa(p.PageIndex + 1)
}

func (q *QualityClient) Organization(ctx context.Context, key string) (ports.RawOrganization, error) {
	u := q.endpoint("/organizations/search?organizations=" + url.QueryEscape(key))
	var env struct {
		Organizations []struct {
			Key         string `json:"key"`
			Name        string `json:"name"`
			Description string `json:"description"`
		} `json:"organizations"`
	}
	if err := q.getWithRetry(ctx, u, &env); err != nil {
		return ports.RawOrganization{}, err
	}
	if len(env.Organizations) == 0 {
		return ports.RawOrganization{}, &domainsync.APIError{
			StatusCode: http.StatusNotFound,
			URL:        u,
			Message:    "organization not found: " + key,
		}
	}
	org := env.Organizations[0]
	return ports.RawOrganization{Key: org.Key, Name: org.Name, Description: org.Description}, nil
}

func (q *QualityClient) Projects(ctx context.Context, organization string, fn func(ports.RawAnalysisProject) error) error {
	base := "/projects/search?organization=" + url.QueryEscape(organization)
	return q.list(ctx, base, "components", func(raw json.RawMessage) error {
		var wire struct {
			Key              string `json:"key"`
			Name             string `json:"name"`
			Visibility       string `json:"visibility"`
			LastAnalysisDate string `json:"lastAnalysisDate"`
		}
		if err := decodeRecord(raw, &wire, domainsync.KindAnalysisProject); err != nil {
			return err
		}
		return fn(ports.RawAnalysisProject{
			Key:            wire.Key,
			Name:           wire.Name,
			Visibility:     wire.Visibility,
			LastAnalysisAt: wire.LastAnalysisDate,
		})
	})
}

func (q *QualityClient) Issues(ctx context.Context, organization, projectKey string, fn func(ports.RawIssue) error) error {
	base := fmt.Sprintf("/issues/search?organization=%s&componentKeys=%s",
		url.QueryEscape(organization), url.QueryEscape(projectKey))
	return q.list(ctx, base, "issues", func(raw json.RawMessage) error {
		var wire struct {
			Key          string   `json:"key"`
			Rule         string   `json:"rule"`
			Severity     string   `json:"severity"`
			Type         string   `json:"type"`
			Status       string   `json:"status"`
			Resolution   string   `json:"resolution"`
			Component    string   `json:"component"`
			Line         int      `json:"line"`
			Message      string   `json:"message"`
			Effort       string   `json:"effort"`
			Author       string   `json:"author"`
			Assignee     string   `json:"assignee"`
			Tags         []string `json:"tags"`
			CreationDate string   `json:"creationDate"`
			UpdateDate   string   `json:"updateDate"`
			CloseDate    string   `json:"closeDate"`
		}
		if err := decodeRecord(raw, &wire, domainsync.KindIssue); err != nil {
			return err
		}
		return fn(ports.RawIssue{
			Key:        wire.Key,
			Rule:       wire.Rule,
			Severity:   wire.Severity,
			Type:       wire.Type,
			Status:     wire.Status,
			Resolution: wire.Resolution,
			Component:  wire.Component,
			Line:       wire.Line,
			Message:    wire.Message,
			Effort:     wire.Effort,
			Author:     wire.Author,
			Assignee:   wire.Assignee,
			Tags:       wire.Tags,
			CreatedAt:  wire.CreationDate,
			UpdatedAt:  wire.UpdateDate,
			ClosedAt:   wire.CloseDate,
		})
	})
}

func (q *QualityClient) Hotspots(ctx context.Context, projectKey string, fn func(ports.RawHotspot) error) error {
	base := "/hotspots/search?projectKey=" + url.QueryEscape(projectKey)
	return q.list(ctx, base, "hotspots", func(raw json.RawMessage) error {
		var wire struct {
			Key                      string `json:"key"`
			RuleKey                  string `json:"ruleKey"`
			VulnerabilityProbability string `json:"vulnerabilityProbability"`
			SecurityCategory         string `json:"securityCategory"`
			Status                   string `json:"status"`
			Resolution               string `json:"resolution"`
			Component                string `json:"component"`
			Line                     int    `json:"line"`
			Message                  string `json:"message"`
			Author                   string `json:"author"`
			Assignee                 string `json:"assignee"`
			CreationDate             string `json:"creationDate"`
			UpdateDate               string `json:"updateDate"`
		}
		if err := decodeRecord(raw, &wire, domainsync.KindSecurityHotspot); err != nil {
			return err
		}
		return fn(ports.RawHotspot{
			Key:              wire.Key,
			RuleKey:          wire.RuleKey,
			ReviewPriority:   wire.VulnerabilityProbability,
			SecurityCategory: wire.SecurityCategory,
			Status:           wire.Status,
			Resolution:       wire.Resolution,
			Component:        wire.Component,
			Line:             wire.Line,
			Message:          wire.Message,
			Author:           wire.Author,
			Assignee:         wire.Assignee,
			CreatedAt:        wire.CreationDate,
			UpdatedAt:        wire.UpdateDate,
		})
	})
}

func (q *QualityClient) QualityGate(ctx context.Context, projectKey string) (ports.RawQualityGate, error) {
	gateURL := q.endpoint("/qualitygates/get_by_project?project=" + url.QueryEscape(projectKey))
	var gateEnv struct {
		QualityGate struct {
			ID      json.Number `json:"id"`
			Name    string      `json:"name"`
			Default bool        `json:"default"`
			BuiltIn bool        `json:"builtIn"`
		} `json:"qualityGate"`
	}
	if err := q.getWithRetry(ctx, gateURL, &gateEnv); err != nil {
		return ports.RawQualityGate{}, err
	}

	statusURL := q.endpoint("/qualitygates/project_status?projectKey=" + url.QueryEscape(projectKey))
	var statusEnv struct {
		ProjectStatus struct {
			Status      string `json:"status"`
			EvaluatedAt string `json:"evaluatedAt"`
		} `json:"projectStatus"`
	}
	if err := q.getWithRetry(ctx, statusURL, &statusEnv); err != nil {
		return ports.RawQualityGate{}, err
	}

	return ports.RawQualityGate{
		ExternalID:  gateEnv.QualityGate.ID.String(),
		Name:        gateEnv.QualityGate.Name,
		Status:      statusEnv.ProjectStatus.Status,
		IsDefault:   gateEnv.QualityGate.Default,
		IsBuiltIn:   gateEnv.QualityGate.BuiltIn,
		EvaluatedAt: statusEnv.ProjectStatus.EvaluatedAt,
	}, nil
}

func (q *QualityClient) Measures(ctx context.Context, projectKey string) ([]ports.RawMeasure, error) {
	u := q.endpoint(fmt.Sprintf("/measures/component?component=%s&metricKeys=%s&additionalFields=metrics",
		url.QueryEscape(projectKey), url.QueryEscape(metricKeys)))
	var env struct {
		Component struct {
			Measures []struct {
				Metric    string `json:"metric"`
				Value     string `json:"value"`
				BestValue bool   `json:"bestValue"`
			} `json:"measures"`
		} `json:"component"`
		Metrics []struct {
			Key         string `json:"key"`
			Name        string `json:"name"`
			Description string `json:"description"`
			Domain      string `json:"domain"`
			Direction   int    `json:"direction"`
			Type        string `json:"type"`
		} `json:"metrics"`
	}
	if err := q.getWithRetry(ctx, u, &env); err != nil {
		return nil, err
	}

	type metricMeta struct {
		Name        string
		Description string
		Domain      string
		Direction   int
		Type        string
	}
	meta := make(map[string]metricMeta, len(env.Metrics))
	for _, m := range env.Metrics {
		meta[m.Key] = metricMeta{
			Name:        m.Name,
			Description: m.Description,
			Domain:      m.Domain,
			Direction:   m.Direction,
			Type:        m.Type,
		}
	}

	out := make([]ports.RawMeasure, 0, len(env.Component.Measures))
	for _, m := range env.Component.Measures {
		md := meta[m.Metric]
		name := md.Name
		if name == "" {
			name = m.Metric
		}
		out = append(out, ports.RawMeasure{
			MetricKey:   m.Metric,
			Name:        name,
			Value:       m.Value,
			ValueType:   md.Type,
			Domain:      md.Domain,
			Direction:   md.Direction,
			BestValue:   m.BestValue,
			Description: md.Description,
		})
	}
	return out, nil
}

// list walks one index-paged listing. valuesKey names the array field of
// the envelope that carries the records.
func (q *QualityClient) list(ctx context.Context, basePath, valuesKey string, fn func(json.RawMessage) error) error {
	return q.eachPage(ctx, func(ctx context.Context, cursor string) (page, error) {
		idx := 1
		if cursor != "" {
			parsed, err := strconv.Atoi(cursor)
			if err == nil && parsed > 0 {
				idx = parsed
			}
		}
		sep := "?"
		if strings.Contains(basePath, "?") {
			sep = "&"
		}
		u := q.endpoint(fmt.Sprintf("%s%sps=%d&p=%d", basePath, sep, q.pageSize, idx))

		var env map[string]json.RawMessage
		if err := q.getJSON(ctx, u, &env); err != nil {
			return page{}, err
		}

		var paging qcPaging
		if raw, ok := env["paging"]; ok {
			if err := json.Unmarshal(raw, &paging); err != nil {
				return page{}, &domainsync.TransientError{Err: fmt.Errorf("decode paging from %s: %w", u, err)}
			}
		}

		var values []json.RawMessage
		if raw, ok := env[valuesKey]; ok {
			if err := json.Unmarshal(raw, &values); err != nil {
				return page{}, &domainsync.TransientError{Err: fmt.Errorf("decode %s from %s: %w", valuesKey, u, err)}
			}
		}

		// A short or empty page ends the walk even when the reported
		// total says otherwise.
		next := paging.nextCursor()
		if len(values) == 0 {
			next = ""
		}
		return page{Values: values, Next: next}, nil
	}, fn)
}
