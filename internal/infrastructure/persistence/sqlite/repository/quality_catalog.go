package repository

import (
	"context"

	"gorm.io/gorm"

	"qualisync/internal/errs"
	"qualisync/internal/infrastructure/persistence/sqlite/model"
	"qualisync/internal/ports"
)

// QualityCatalogRepository implements ports.QualityCatalog with gorm.
type QualityCatalogRepository struct {
	base
}

var _ ports.QualityCatalog = (*QualityCatalogRepository)(nil)

func NewQualityCatalogRepository(db *gorm.DB) *QualityCatalogRepository {
	return &QualityCatalogRepository{base: base{db: db}}
}

func (r *QualityCatalogRepository) OrganizationByKey(ctx context.Context, key string) (ports.Organization, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Organization{}, err
	}
	var row model.Organization
	if err := db.Where("key = ?", key).Take(&row).Error; err != nil {
		return ports.Organization{}, translateLookup(err, "query organization by key")
	}
	return mapOrganization(row), nil
}

func (r *QualityCatalogRepository) InsertOrganization(ctx context.Context, in ports.Organization) (ports.Organization, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Organization{}, err
	}
	row := organizationModel(in)
	if err := db.Create(&row).Error; err != nil {
		return ports.Organization{}, translateWrite(err, "insert organization")
	}
	return mapOrganization(row), nil
}

func (r *QualityCatalogRepository) UpdateOrganization(ctx context.Context, in ports.Organization) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}
	row := organizationModel(in)
	if err := db.Save(&row).Error; err != nil {
		return translateWrite(err, "update organization")
	}
	return nil
}

func (r *QualityCatalogRepository) AnalysisProjectByKey(ctx context.Context, key string) (ports.AnalysisProject, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.AnalysisProject{}, err
	}
	var row model.AnalysisProject
	if err := db.Where("key = ?", key).Take(&row).Error; err != nil {
		return ports.AnalysisProject{}, translateLookup(err, "query analysis project by key")
	}
	return mapAnalysisProject(row), nil
}

func (r *QualityCatalogRepository) ListAnalysisProjects(ctx context.Context, organizationID uint64) ([]ports.AnalysisProject, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}
	var rows []model.AnalysisProject
	if err := db.Where("organization_id = ?", organizationID).Order("analysis_project_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query analysis projects")
	}
	items := make([]ports.AnalysisProject, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapAnalysisProject(row))
	}
	return items, nil
}

func (r *QualityCatalogRepository) InsertAnalysisProject(ctx context.Context, in ports.AnalysisProject) (ports.AnalysisProject, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.AnalysisProject{}, err
	}
	row := analysisProjectModel(in)
	if err := db.Create(&row).Error; err != nil {
		return ports.AnalysisProject{}, translateWrite(err, "insert analysis project")
	}
	return mapAnalysisProject(row), nil
}

func (r *QualityCatalogRepository) UpdateAnalysisProject(ctx context.Context, in ports.AnalysisProject) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}
	row := analysisProjectModel(in)
	if err := db.Save(&row).Error; err != nil {
		return translateWrite(err, "update analysis project")
	}
	return nil
}

func (r *QualityCatalogRepository) LinkAnalysisProject(ctx context.Context, analysisProjectID, repositoryID uint64, updatedAt string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}
	result := db.Model(&model.AnalysisProject{}).
		Where("analysis_project_id = ?", analysisProjectID).
		Updates(map[string]any{
			"linked_repository_id": repositoryID,
			"updated_at":           updatedAt,
		})
	if result.Error != nil {
		return translateWrite(result.Error, "link analysis project")
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *QualityCatalogRepository) IssueByKey(ctx context.Context, key string) (ports.Issue, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Issue{}, err
	}
	var row model.Issue
	if err := db.Where("key = ?", key).Take(&row).Error; err != nil {
		return ports.Issue{}, translateLookup(err, "query issue by key")
	}
	return mapIssue(row), nil
}

func (r *QualityCatalogRepository) InsertIssue(ctx context.Context, in ports.Issue) (ports.Issue, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Issue{}, err
	}
	row := issueModel(in)
	if err := db.Create(&row).Error; err != nil {
		return ports.Issue{}, translateWrite(err, "insert issue")
	}
	return mapIssue(row), nil
}

func (r *QualityCatalogRepository) UpdateIssue(ctx context.Context, in ports.Issue) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}
	row := issueModel(in)
	if err := db.Save(&row).Error; err != nil {
		return translateWrite(err, "update issue")
	}
	return nil
}

func (r *QualityCatalogRepository) HotspotByKey(ctx context.Context, key string) (ports.SecurityHotspot, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.SecurityHotspot{}, err
	}
	var row model.SecurityHotspot
	if err := db.Where("key = ?", key).Take(&row).Error; err != nil {
		return ports.SecurityHotspot{}, translateLookup(err, "query hotspot by key")
	}
	return mapHotspot(row), nil
}

func (r *QualityCatalogRepository) InsertHotspot(ctx context.Context, in ports.SecurityHotspot) (ports.SecurityHotspot, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.SecurityHotspot{}, err
	}
	row := hotspotModel(in)
	if err := db.Create(&row).Error; err != nil {
		return ports.SecurityHotspot{}, translateWrite(err, "insert hotspot")
	}
	return mapHotspot(row), nil
}

func (r *QualityCatalogRepository) UpdateHotspot(ctx context.Context, in ports.SecurityHotspot) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}
	row := hotspotModel(in)
	if err := db.Save(&row).Error; err != nil {
		return translateWrite(err, "update hotspot")
	}
	return nil
}

func (r *QualityCatalogRepository) QualityGateByExternalID(ctx context.Context, externalID string) (ports.QualityGate, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.QualityGate{}, err
	}
	var row model.QualityGate
	if err := db.Where("external_id = ?", externalID).Take(&row).Error; err != nil {
		return ports.QualityGate{}, translateLookup(err, "query quality gate by external id")
	}
	return mapQualityGate(row), nil
}

func (r *QualityCatalogRepository) InsertQualityGate(ctx context.Context, in ports.QualityGate) (ports.QualityGate, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.QualityGate{}, err
	}
	row := qualityGateModel(in)
	if err := db.Create(&row).Error; err != nil {
		return ports.QualityGate{}, translateWrite(err, "insert quality gate")
	}
	return mapQualityGate(row), nil
}

func (r *QualityCatalogRepository) UpdateQualityGate(ctx context.Context, in ports.QualityGate) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}
	row := qualityGateModel(in)
	if err := db.Save(&row).Error; err != nil {
		return translateWrite(err, "update quality gate")
	}
	return nil
}

func (r *QualityCatalogRepository) MetricByKey(ctx context.Context, analysisProjectID uint64, key string) (ports.Metric, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Metric{}, err
	}
	var row model.Metric
	if err := db.Where("analysis_project_id = ? AND key = ?", analysisProjectID, key).Take(&row).Error; err != nil {
		return ports.Metric{}, translateLookup(err, "query metric by key")
	}
	return mapMetric(row), nil
}

func (r *QualityCatalogRepository) InsertMetric(ctx context.Context, in ports.Metric) (ports.Metric, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Metric{}, err
	}
	row := metricModel(in)
	if err := db.Create(&row).Error; err != nil {
		return ports.Metric{}, translateWrite(err, "insert metric")
	}
	return mapMetric(row), nil
}

func (r *QualityCatalogRepository) UpdateMetric(ctx context.Context, in ports.Metric) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}
	row := metricModel(in)
	if err := db.Save(&row).Error; err != nil {
		return translateWrite(err, "update metric")
	}
	return nil
}

// RankingSnapshots builds the read-only ranking projection. The worst
// hotspot per project is derived from the review priorities of its
// stored hotspots; projects with no analysis yet keep nil metric values.
func (r *QualityCatalogRepository) RankingSnapshots(ctx context.Context, organizationID uint64) ([]ports.RankingSnapshot, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var projects []model.AnalysisProject
	if err := db.Where("organization_id = ?", organizationID).Order("analysis_project_id asc").Find(&projects).Error; err != nil {
		return nil, errs.Wrap(err, "query analysis projects for ranking")
	}

	type priorityRow struct {
		AnalysisProjectID uint64
		ReviewPriority    string
	}
	var priorities []priorityRow
	if err := db.Model(&model.SecurityHotspot{}).
		Select("analysis_project_id, review_priority").
		Distinct().
		Find(&priorities).Error; err != nil {
		return nil, errs.Wrap(err, "query hotspot priorities")
	}

	worstByProject := make(map[uint64]string, len(priorities))
	for _, p := range priorities {
		if severityWorse(p.ReviewPriority, worstByProject[p.AnalysisProjectID]) {
			worstByProject[p.AnalysisProjectID] = p.ReviewPriority
		}
	}

	snapshots := make([]ports.RankingSnapshot, 0, len(projects))
	for _, p := range projects {
		var newIssues *int64
		if p.LastAnalysisAt != "" {
			n := p.NewIssuesCount
			newIssues = &n
		}
		snapshots = append(snapshots, ports.RankingSnapshot{
			AnalysisProjectID:     p.AnalysisProjectID,
			Key:                   p.Key,
			Name:                  p.Name,
			Coverage:              p.Coverage,
			Duplication:           p.Duplications,
			NewIssues:             newIssues,
			WorstHotspot:          worstByProject[p.AnalysisProjectID],
			BugsCount:             p.BugsCount,
			VulnerabilitiesCount:  p.VulnerabilitiesCount,
			CodeSmellsCount:       p.CodeSmellsCount,
			MaintainabilityRating: p.MaintainabilityRating,
			ReliabilityRating:     p.ReliabilityRating,
			SecurityRating:        p.SecurityRating,
			SecurityReviewRating:  p.SecurityReviewRating,
		})
	}
	return snapshots, nil
}

var severityOrder = map[string]int{
	"LOW":      1,
	"MEDIUM":   2,
	"HIGH":     3,
	"CRITICAL": 4,
}

func severityWorse(candidate, current string) bool {
	return severityOrder[candidate] > severityOrder[current]
}

func mapOrganization(row model.Organization) ports.Organization {
	return ports.Organization{
		OrganizationID: row.OrganizationID,
		Key:            row.Key,
		Name:           row.Name,
		Description:    row.Description,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}

func organizationModel(in ports.Organization) model.Organization {
	return model.Organization{
		OrganizationID: in.OrganizationID,
		Key:            in.Key,
		Name:           in.Name,
		Description:    in.Description,
		CreatedAt:      in.CreatedAt,
		UpdatedAt:      in.UpdatedAt,
	}
}

func mapAnalysisProject(row model.AnalysisProject) ports.AnalysisProject {
	return ports.AnalysisProject{
		AnalysisProjectID:     row.AnalysisProjectID,
		OrganizationID:        row.OrganizationID,
		LinkedRepositoryID:    row.LinkedRepositoryID,
		UUID:                  row.UUID,
		Key:                   row.Key,
		Name:                  row.Name,
		Visibility:            row.Visibility,
		LastAnalysisAt:        row.LastAnalysisAt,
		Coverage:              row.Coverage,
		Duplications:          row.Duplications,
		BugsCount:             row.BugsCount,
		VulnerabilitiesCount:  row.VulnerabilitiesCount,
		CodeSmellsCount:       row.CodeSmellsCount,
		NewIssuesCount:        row.NewIssuesCount,
		QualityGateStatus:     row.QualityGateStatus,
		MaintainabilityRating: row.MaintainabilityRating,
		ReliabilityRating:     row.ReliabilityRating,
		SecurityRating:        row.SecurityRating,
		SecurityReviewRating:  row.SecurityReviewRating,
		CreatedAt:             row.CreatedAt,
		UpdatedAt:             row.UpdatedAt,
	}
}

func analysisProjectModel(in ports.AnalysisProject) model.AnalysisProject {
	return model.AnalysisProject{
		AnalysisProjectID:     in.AnalysisProjectID,
		OrganizationID:        in.OrganizationID,
		LinkedRepositoryID:    in.LinkedRepositoryID,
		UUID:                  in.UUID,
		Key:                   in.Key,
		Name:                  in.Name,
		Visibility:            in.Visibility,
		LastAnalysisAt:        in.LastAnalysisAt,
		Coverage:              in.Coverage,
		Duplications:          in.Duplications,
		BugsCount:             in.BugsCount,
		VulnerabilitiesCount:  in.VulnerabilitiesCount,
		CodeSmellsCount:       in.CodeSmellsCount,
		NewIssuesCount:        in.NewIssuesCount,
		QualityGateStatus:     in.QualityGateStatus,
		MaintainabilityRating: in.MaintainabilityRating,
		ReliabilityRating:     in.ReliabilityRating,
		SecurityRating:        in.SecurityRating,
		SecurityReviewRating:  in.SecurityReviewRating,
		CreatedAt:             in.CreatedAt,
		UpdatedAt:             in.UpdatedAt,
	}
}

func mapIssue(row model.Issue) ports.Issue {
	return ports.Issue{
		IssueID:           row.IssueID,
		AnalysisProjectID: row.AnalysisProjectID,
		UUID:              row.UUID,
		Key:               row.Key,
		Rule:              row.Rule,
		Severity:          row.Severity,
		Type:              row.Type,
		Status:            row.Status,
		Resolution:        row.Resolution,
		Component:         row.Component,
		Line:              row.Line,
		Message:           row.Message,
		Effort:            row.Effort,
		Author:            row.Author,
		Assignee:          row.Assignee,
		TagsJSON:          row.TagsJSON,
		OpenedAt:          row.OpenedAt,
		LastActivity:      row.LastActivity,
		ClosedAt:          row.ClosedAt,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
}

func issueModel(in ports.Issue) model.Issue {
	return model.Issue{
		IssueID:           in.IssueID,
		AnalysisProjectID: in.AnalysisProjectID,
		UUID:              in.UUID,
		Key:               in.Key,
		Rule:              in.Rule,
		Severity:          in.Severity,
		Type:              in.Type,
		Status:            in.Status,
		Resolution:        in.Resolution,
		Component:         in.Component,
		Line:              in.Line,
		Message:           in.Message,
		Effort:            in.Effort,
		Author:            in.Author,
		Assignee:          in.Assignee,
		TagsJSON:          in.TagsJSON,
		OpenedAt:          in.OpenedAt,
		LastActivity:      in.LastActivity,
		ClosedAt:          in.ClosedAt,
		CreatedAt:         in.CreatedAt,
		UpdatedAt:         in.UpdatedAt,
	}
}

func mapHotspot(row model.SecurityHotspot) ports.SecurityHotspot {
	return ports.SecurityHotspot{
		HotspotID:         row.HotspotID,
		AnalysisProjectID: row.AnalysisProjectID,
		UUID:              row.UUID,
		Key:               row.Key,
		RuleKey:           row.RuleKey,
		ReviewPriority:    row.ReviewPriority,
		SecurityCategory:  row.SecurityCategory,
		Status:            row.Status,
		Resolution:        row.Resolution,
		Component:         row.Component,
		Line:              row.Line,
		Message:           row.Message,
		Author:            row.Author,
		Assignee:          row.Assignee,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
}

func hotspotModel(in ports.SecurityHotspot) model.SecurityHotspot {
	return model.SecurityHotspot{
		HotspotID:         in.HotspotID,
		AnalysisProjectID: in.AnalysisProjectID,
		UUID:              in.UUID,
		Key:               in.Key,
		RuleKey:           in.RuleKey,
		ReviewPriority:    in.ReviewPriority,
		SecurityCategory:  in.SecurityCategory,
		Status:            in.Status,
		Resolution:        in.Resolution,
		Component:         in.Component,
		Line:              in.Line,
		Message:           in.Message,
		Author:            in.Author,
		Assignee:          in.Assignee,
		CreatedAt:         in.CreatedAt,
		UpdatedAt:         in.UpdatedAt,
	}
}

func mapQualityGate(row model.QualityGate) ports.QualityGate {
	return ports.QualityGate{
		QualityGateID:     row.QualityGateID,
		AnalysisProjectID: row.AnalysisProjectID,
		UUID:              row.UUID,
		ExternalID:        row.ExternalID,
		Name:              row.Name,
		Status:            row.Status,
		IsDefault:         row.IsDefault,
		IsBuiltIn:         row.IsBuiltIn,
		EvaluatedAt:       row.EvaluatedAt,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
}

func qualityGateModel(in ports.QualityGate) model.QualityGate {
	return model.QualityGate{
		QualityGateID:     in.QualityGateID,
		AnalysisProjectID: in.AnalysisProjectID,
		UUID:              in.UUID,
		ExternalID:        in.ExternalID,
		Name:              in.Name,
		Status:            in.Status,
		IsDefault:         in.IsDefault,
		IsBuiltIn:         in.IsBuiltIn,
		EvaluatedAt:       in.EvaluatedAt,
		CreatedAt:         in.CreatedAt,
		UpdatedAt:         in.UpdatedAt,
	}
}

func mapMetric(row model.Metric) ports.Metric {
	return ports.Metric{
		MetricID:          row.MetricID,
		AnalysisProjectID: row.AnalysisProjectID,
		UUID:              row.UUID,
		Key:               row.Key,
		Name:              row.Name,
		Description:       row.Description,
		Value:             row.Value,
		StringValue:       row.StringValue,
		ValueType:         row.ValueType,
		Domain:            row.Domain,
		Direction:         row.Direction,
		MeasuredAt:        row.MeasuredAt,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
}

func metricModel(in ports.Metric) model.Metric {
	return model.Metric{
		MetricID:          in.MetricID,
		AnalysisProjectID: in.AnalysisProjectID,
		UUID:              in.UUID,
		Key:               in.Key,
		Name:              in.Name,
		Description:       in.Description,
		Value:             in.Value,
		StringValue:       in.StringValue,
		ValueType:         in.ValueType,
		Domain:            in.Domain,
		Direction:         in.Direction,
		MeasuredAt:        in.MeasuredAt,
		CreatedAt:         in.CreatedAt,
		UpdatedAt:         in.UpdatedAt,
	}
}
