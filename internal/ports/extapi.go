package ports

import "context"

// Raw records are external API payloads after JSON decoding but before
// reconciliation. Enum-bearing fields stay plain strings so the
// reconciler can validate them against the closed sets.

type RawWorkspace struct {
	UUID      string
	Slug      string
	Name      string
	IsPrivate bool
}

type RawProject struct {
	UUID        string
	Key         string
	Name        string
	Description string
	IsPrivate   bool
}

type RawRepository struct {
	UUID        string
	Slug        string
	Name        string
	Description string
	ProjectKey  string
	IsPrivate   bool
	Language    string
	SizeBytes   int64
}

type RawCommit struct {
	Hash        string
	Message     string
	AuthorName  string
	AuthorEmail string
	AuthoredAt  string
	CommittedAt string
	IsMerge     bool
}

type RawPullRequest struct {
	ExternalID  string
	Title       string
	Description string
	State       string
	Author      string
	CreatedOn   string
	UpdatedOn   string
	ClosedOn    string
	MergedOn    string
}

type RawBranch struct {
	Name       string
	TargetHash string
	IsDefault  bool
}

type RawOrganization struct {
	Key         string
	Name        string
	Description string
}

type RawAnalysisProject struct {
	Key            string
	Name           string
	Visibility     string
	LastAnalysisAt string
}

type RawIssue struct {
	Key        string
	Rule       string
	Severity   string
	Type       string
	Status     string
	Resolution string
	Component  string
	Line       int
	Message    string
	Effort     string
	Author     string
	Assignee   string
	Tags       []string
	CreatedAt  string
	UpdatedAt  string
	ClosedAt   string
}

type RawHotspot struct {
	Key              string
	RuleKey          string
	ReviewPriority   string
	SecurityCategory string
	Status           string
	Resolution       string
	Component        string
	Line             int
	Message          string
	Author           string
	Assignee         string
	CreatedAt        string
	UpdatedAt        string
}

type RawQualityGate struct {
	ExternalID  string
	Name        string
	Status      string
	IsDefault   bool
	IsBuiltIn   bool
	EvaluatedAt string
}

type RawMeasure struct {
	MetricKey   string
	Name        string
	Value       string
	ValueType   string
	Domain      string
	Direction   int
	BestValue   bool
	MeasuredAt  string
	Description string
}

// SourceAPI is the paginated source-hosting platform client. Listing
// methods stream records in platform page order through fn; returning an
// error from fn stops the walk.
type SourceAPI interface {
	Workspace(ctx context.Context, slug string) (RawWorkspace, error)
	Projects(ctx context.Context, workspace string, fn func(RawProject) error) error
	Repositories(ctx context.Context, workspace string, fn func(RawRepository) error) error
	Commits(ctx context.Context, workspace, repoSlug string, fn func(RawCommit) error) error
	PullRequests(ctx context.Context, workspace, repoSlug string, fn func(RawPullRequest) error) error
	Branches(ctx context.Context, workspace, repoSlug string, fn func(RawBranch) error) error
}

// QualityAPI is the paginated quality-analysis platform client.
type QualityAPI interface {
	Organization(ctx context.Context, key string) (RawOrganization, error)
	Projects(ctx context.Context, organization string, fn func(RawAnalysisProject) error) error
	Issues(ctx context.Context, organization, projectKey string, fn func(RawIssue) error) error
	Hotspots(ctx context.Context, projectKey string, fn func(RawHotspot) error) error
	QualityGate(ctx context.Context, projectKey string) (RawQualityGate, error)
	Measures(ctx context.Context, projectKey string) ([]RawMeasure, error)
}
