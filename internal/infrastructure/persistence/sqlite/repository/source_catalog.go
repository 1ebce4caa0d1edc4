package repository

import (
	"context"

	"gorm.io/gorm"

	"qualisync/internal/errs"
	"qualisync/internal/infrastructure/persistence/sqlite/model"
	"qualisync/internal/ports"
)

// SourceCatalogRepository implements ports.SourceCatalog with gorm.
type SourceCatalogRepository struct {
	base
}

var _ ports.SourceCatalog = (*SourceCatalogRepository)(nil)

func NewSourceCatalogRepository(db *gorm.DB) *SourceCatalogRepository {
	return &SourceCatalogRepository{base: base{db: db}}
}

func (r *SourceCatalogRepository) WorkspaceByUUID(ctx context.Context, uuid string) (ports.Workspace, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Workspace{}, err
	}
	var row model.Workspace
	if err := db.Where("uuid = ?", uuid).Take(&row).Error; err != nil {
		return ports.Workspace{}, translateLookup(err, "query workspace by uuid")
	}
	return mapWorkspace(row), nil
}

func (r *SourceCatalogRepository) WorkspaceBySlug(ctx context.Context, slug string) (ports.Workspace, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Workspace{}, err
	}
	var row model.Workspace
	if err := db.Where("slug = ?", slug).Take(&row).Error; err != nil {
		return ports.Workspace{}, translateLookup(err, "query workspace by slug")
	}
	return mapWorkspace(row), nil
}

func (r *SourceCatalogRepository) InsertWorkspace(ctx context.Context, in ports.Workspace) (ports.Workspace, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Workspace{}, err
	}
	row := workspaceModel(in)
	if err := db.Create(&row).Error; err != nil {
		return ports.Workspace{}, translateWrite(err, "insert workspace")
	}
	return mapWorkspace(row), nil
}

func (r *SourceCatalogRepository) UpdateWorkspace(ctx context.Context, in ports.Workspace) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}
	row := workspaceModel(in)
	if err := db.Save(&row).Error; err != nil {
		return translateWrite(err, "update workspace")
	}
	return nil
}

func (r *SourceCatalogRepository) ProjectByUUID(ctx context.Context, uuid string) (ports.Project, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Project{}, err
	}
	var row model.Project
	if err := db.Where("uuid = ?", uuid).Take(&row).Error; err != nil {
		return ports.Project{}, translateLookup(err, "query project by uuid")
	}
	return mapProject(row), nil
}

func (r *SourceCatalogRepository) ProjectByKey(ctx context.Context, key string) (ports.Project, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Project{}, err
	}
	var row model.Project
	if err := db.Where("key = ?", key).Take(&row).Error; err != nil {
		return ports.Project{}, translateLookup(err, "query project by key")
	}
	return mapProject(row), nil
}

func (r *SourceCatalogRepository) InsertProject(ctx context.Context, in ports.Project) (ports.Project, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Project{}, err
	}
	row := projectModel(in)
	if err := db.Create(&row).Error; err != nil {
		return ports.Project{}, translateWrite(err, "insert project")
	}
	return mapProject(row), nil
}

func (r *SourceCatalogRepository) UpdateProject(ctx context.Context, in ports.Project) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}
	row := projectModel(in)
	if err := db.Save(&row).Error; err != nil {
		return translateWrite(err, "update project")
	}
	return nil
}

func (r *SourceCatalogRepository) RepositoryByUUID(ctx context.Context, uuid string) (ports.Repository, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Repository{}, err
	}
	var row model.Repository
	if err := db.Where("uuid = ?", uuid).Take(&row).Error; err != nil {
		return ports.Repository{}, translateLookup(err, "query repository by uuid")
	}
	return mapRepository(row), nil
}

func (r *SourceCatalogRepository) RepositoryBySlug(ctx context.Context, workspaceID uint64, slug string) (ports.Repository, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Repository{}, err
	}
	var row model.Repository
	if err := db.Where("workspace_id = ? AND slug = ?", workspaceID, slug).Take(&row).Error; err != nil {
		return ports.Repository{}, translateLookup(err, "query repository by slug")
	}
	return mapRepository(row), nil
}

func (r *SourceCatalogRepository) ListRepositories(ctx context.Context, workspaceID uint64) ([]ports.Repository, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}
	var rows []model.Repository
	if err := db.Where("workspace_id = ?", workspaceID).Order("repository_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query repositories by workspace")
	}
	items := make([]ports.Repository, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapRepository(row))
	}
	return items, nil
}

func (r *SourceCatalogRepository) InsertRepository(ctx context.Context, in ports.Repository) (ports.Repository, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Repository{}, err
	}
	row := repositoryModel(in)
	if err := db.Create(&row).Error; err != nil {
		return ports.Repository{}, translateWrite(err, "insert repository")
	}
	return mapRepository(row), nil
}

func (r *SourceCatalogRepository) UpdateRepository(ctx context.Context, in ports.Repository) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}
	row := repositoryModel(in)
	if err := db.Save(&row).Error; err != nil {
		return translateWrite(err, "update repository")
	}
	return nil
}

func (r *SourceCatalogRepository) CommitByHash(ctx context.Context, hash string) (ports.Commit, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Commit{}, err
	}
	var row model.Commit
	if err := db.Where("hash = ?", hash).Take(&row).Error; err != nil {
		return ports.Commit{}, translateLookup(err, "query commit by hash")
	}
	return mapCommit(row), nil
}

func (r *SourceCatalogRepository) InsertCommit(ctx context.Context, in ports.Commit) (ports.Commit, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Commit{}, err
	}
	row := commitModel(in)
	if err := db.Create(&row).Error; err != nil {
		return ports.Commit{}, translateWrite(err, "insert commit")
	}
	return mapCommit(row), nil
}

func (r *SourceCatalogRepository) UpdateCommit(ctx context.Context, in ports.Commit) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}
	row := commitModel(in)
	if err := db.Save(&row).Error; err != nil {
		return translateWrite(err, "update commit")
	}
	return nil
}

func (r *SourceCatalogRepository) PullRequestByExternalID(ctx context.Context, externalID string) (ports.PullRequest, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.PullRequest{}, err
	}
	var row model.PullRequest
	if err := db.Where("external_id = ?", externalID).Take(&row).Error; err != nil {
		return ports.PullRequest{}, translateLookup(err, "query pull request by external id")
	}
	return mapPullRequest(row), nil
}

func (r *SourceCatalogRepository) InsertPullRequest(ctx context.Context, in ports.PullRequest) (ports.PullRequest, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.PullRequest{}, err
	}
	row := pullRequestModel(in)
	if err := db.Create(&row).Error; err != nil {
		return ports.PullRequest{}, translateWrite(err, "insert pull request")
	}
	return mapPullRequest(row), nil
}

func (r *SourceCatalogRepository) UpdatePullRequest(ctx context.Context, in ports.PullRequest) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}
	row := pullRequestModel(in)
	if err := db.Save(&row).Error; err != nil {
		return translateWrite(err, "update pull request")
	}
	return nil
}

func (r *SourceCatalogRepository) BranchByName(ctx context.Context, repositoryID uint64, name string) (ports.Branch, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Branch{}, err
	}
	var row model.Branch
	if err := db.Where("repository_id = ? AND name = ?", repositoryID, name).Take(&row).Error; err != nil {
		return ports.Branch{}, translateLookup(err, "query branch by name")
	}
	return mapBranch(row), nil
}

func (r *SourceCatalogRepository) InsertBranch(ctx context.Context, in ports.Branch) (ports.Branch, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Branch{}, err
	}
	row := branchModel(in)
	if err := db.Create(&row).Error; err != nil {
		return ports.Branch{}, translateWrite(err, "insert branch")
	}
	return mapBranch(row), nil
}

func (r *SourceCatalogRepository) UpdateBranch(ctx context.Context, in ports.Branch) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}
	row := branchModel(in)
	if err := db.Save(&row).Error; err != nil {
		return translateWrite(err, "update branch")
	}
	return nil
}

// optText stores the empty string as NULL so the unique index on the
// column skips rows the platform never assigned a uuid to.
func optText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func textOr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func mapWorkspace(row model.Workspace) ports.Workspace {
	return ports.Workspace{
		WorkspaceID: row.WorkspaceID,
		UUID:        textOr(row.UUID),
		Slug:        row.Slug,
		Name:        row.Name,
		IsPrivate:   row.IsPrivate,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func workspaceModel(in ports.Workspace) model.Workspace {
	return model.Workspace{
		WorkspaceID: in.WorkspaceID,
		UUID:        optText(in.UUID),
		Slug:        in.Slug,
		Name:        in.Name,
		IsPrivate:   in.IsPrivate,
		CreatedAt:   in.CreatedAt,
		UpdatedAt:   in.UpdatedAt,
	}
}

func mapProject(row model.Project) ports.Project {
	return ports.Project{
		ProjectID:   row.ProjectID,
		WorkspaceID: row.WorkspaceID,
		UUID:        textOr(row.UUID),
		Key:         row.Key,
		Name:        row.Name,
		Description: row.Description,
		IsPrivate:   row.IsPrivate,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func projectModel(in ports.Project) model.Project {
	return model.Project{
		ProjectID:   in.ProjectID,
		WorkspaceID: in.WorkspaceID,
		UUID:        optText(in.UUID),
		Key:         in.Key,
		Name:        in.Name,
		Description: in.Description,
		IsPrivate:   in.IsPrivate,
		CreatedAt:   in.CreatedAt,
		UpdatedAt:   in.UpdatedAt,
	}
}

func mapRepository(row model.Repository) ports.Repository {
	return ports.Repository{
		RepositoryID: row.RepositoryID,
		WorkspaceID:  row.WorkspaceID,
		ProjectID:    row.ProjectID,
		UUID:         textOr(row.UUID),
		Slug:         row.Slug,
		Name:         row.Name,
		Description:  row.Description,
		IsPrivate:    row.IsPrivate,
		Language:     row.Language,
		SizeBytes:    row.SizeBytes,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func repositoryModel(in ports.Repository) model.Repository {
	return model.Repository{
		RepositoryID: in.RepositoryID,
		WorkspaceID:  in.WorkspaceID,
		ProjectID:    in.ProjectID,
		UUID:         optText(in.UUID),
		Slug:         in.Slug,
		Name:         in.Name,
		Description:  in.Description,
		IsPrivate:    in.IsPrivate,
		Language:     in.Language,
		SizeBytes:    in.SizeBytes,
		CreatedAt:    in.CreatedAt,
		UpdatedAt:    in.UpdatedAt,
	}
}

func mapCommit(row model.Commit) ports.Commit {
	return ports.Commit{
		CommitID:     row.CommitID,
		RepositoryID: row.RepositoryID,
		Hash:         row.Hash,
		Message:      row.Message,
		AuthorName:   row.AuthorName,
		AuthorEmail:  row.AuthorEmail,
		AuthoredAt:   row.AuthoredAt,
		CommittedAt:  row.CommittedAt,
		IsMerge:      row.IsMerge,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func commitModel(in ports.Commit) model.Commit {
	return model.Commit{
		CommitID:     in.CommitID,
		RepositoryID: in.RepositoryID,
		Hash:         in.Hash,
		Message:      in.Message,
		AuthorName:   in.AuthorName,
		AuthorEmail:  in.AuthorEmail,
		AuthoredAt:   in.AuthoredAt,
		CommittedAt:  in.CommittedAt,
		IsMerge:      in.IsMerge,
		CreatedAt:    in.CreatedAt,
		UpdatedAt:    in.UpdatedAt,
	}
}

func mapPullRequest(row model.PullRequest) ports.PullRequest {
	return ports.PullRequest{
		PullRequestID: row.PullRequestID,
		RepositoryID:  row.RepositoryID,
		ExternalID:    row.ExternalID,
		Title:         row.Title,
		Description:   row.Description,
		State:         row.State,
		Author:        row.Author,
		OpenedAt:      row.OpenedAt,
		LastActivity:  row.LastActivity,
		ClosedAt:      row.ClosedAt,
		MergedAt:      row.MergedAt,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

func pullRequestModel(in ports.PullRequest) model.PullRequest {
	return model.PullRequest{
		PullRequestID: in.PullRequestID,
		RepositoryID:  in.RepositoryID,
		ExternalID:    in.ExternalID,
		Title:         in.Title,
		Description:   in.Description,
		State:         in.State,
		Author:        in.Author,
		OpenedAt:      in.OpenedAt,
		LastActivity:  in.LastActivity,
		ClosedAt:      in.ClosedAt,
		MergedAt:      in.MergedAt,
		CreatedAt:     in.CreatedAt,
		UpdatedAt:     in.UpdatedAt,
	}
}

func mapBranch(row model.Branch) ports.Branch {
	return ports.Branch{
		BranchID:     row.BranchID,
		RepositoryID: row.RepositoryID,
		Name:         row.Name,
		TargetHash:   row.TargetHash,
		IsDefault:    row.IsDefault,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func branchModel(in ports.Branch) model.Branch {
	return model.Branch{
		BranchID:     in.BranchID,
		RepositoryID: in.RepositoryID,
		Name:         in.Name,
		TargetHash:   in.TargetHash,
		IsDefault:    in.IsDefault,
		CreatedAt:    in.CreatedAt,
		UpdatedAt:    in.UpdatedAt,
	}
}
