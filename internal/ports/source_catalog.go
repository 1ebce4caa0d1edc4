package ports

import "context"

// Stored rows of the source-hosting hierarchy as seen by usecases.
// Surrogate IDs are owned by storage; timestamps are RFC3339 UTC strings
// maintained by the engine (updated_at is a last-seen signal).

type Workspace struct {
	WorkspaceID uint64
	UUID        string
	Slug        string
	Name        string
	IsPrivate   bool
	CreatedAt   string
	UpdatedAt   string
}

type Project struct {
	ProjectID   uint64
	WorkspaceID uint64
	UUID        string
	Key         string
	Name        string
	Description string
	IsPrivate   bool
	CreatedAt   string
	UpdatedAt   string
}

type Repository struct {
	RepositoryID uint64
	WorkspaceID  uint64
	ProjectID    *uint64
	UUID         string
	Slug         string
	Name         string
	Description  string
	IsPrivate    bool
	Language     string
	SizeBytes    int64
	CreatedAt    string
	UpdatedAt    string
}

type Commit struct {
	CommitID     uint64
	RepositoryID uint64
	Hash         string
	Message      string
	AuthorName   string
	AuthorEmail  string
	AuthoredAt   string
	CommittedAt  string
	IsMerge      bool
	CreatedAt    string
	UpdatedAt    string
}

type PullRequest struct {
	PullRequestID uint64
	RepositoryID  uint64
	ExternalID    string
	Title         string
	Description   string
	State         string
	Author        string
	OpenedAt      string
	LastActivity  string
	ClosedAt      string
	MergedAt      string
	CreatedAt     string
	UpdatedAt     string
}

type Branch struct {
	BranchID     uint64
	RepositoryID uint64
	Name         string
	TargetHash   string
	IsDefault    bool
	CreatedAt    string
	UpdatedAt    string
}

// SourceCatalog persists the source-hosting hierarchy. Lookup methods
// return ErrNotFound (from domain/sync) when no row matches; inserts
// surface unique-constraint collisions as ErrConflict so reconcilers can
// fall back to the update path.
type SourceCatalog interface {
	WorkspaceByUUID(ctx context.Context, uuid string) (Workspace, error)
	WorkspaceBySlug(ctx context.Context, slug string) (Workspace, error)
	InsertWorkspace(ctx context.Context, row Workspace) (Workspace, error)
	UpdateWorkspace(ctx context.Context, row Workspace) error

	ProjectByUUID(ctx context.Context, uuid string) (Project, error)
	ProjectByKey(ctx context.Context, key string) (Project, error)
	InsertProject(ctx context.Context, row Project) (Project, error)
	UpdateProject(ctx context.Context, row Project) error

	RepositoryByUUID(ctx context.Context, uuid string) (Repository, error)
	RepositoryBySlug(ctx context.Context, workspaceID uint64, slug string) (Repository, error)
	ListRepositories(ctx context.Context, workspaceID uint64) ([]Repository, error)
	InsertRepository(ctx context.Context, row Repository) (Repository, error)
	UpdateRepository(ctx context.Context, row Repository) error

	CommitByHash(ctx context.Context, hash string) (Commit, error)
	InsertCommit(ctx context.Context, row Commit) (Commit, error)
	UpdateCommit(ctx context.Context, row Commit) error

	PullRequestByExternalID(ctx context.Context, externalID string) (PullRequest, error)
	InsertPullRequest(ctx context.Context, row PullRequest) (PullRequest, error)
	UpdatePullRequest(ctx context.Context, row PullRequest) error

	BranchByName(ctx context.Context, repositoryID uint64, name string) (Branch, error)
	InsertBranch(ctx context.Context, row Branch) (Branch, error)
	UpdateBranch(ctx context.Context, row Branch) error
}
