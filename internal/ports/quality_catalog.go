package ports

import "context"

// Stored rows of the quality-analysis hierarchy.

type Organization struct {
	OrganizationID uint64
	Key            string
	Name           string
	Description    string
	CreatedAt      string
	UpdatedAt      string
}

type AnalysisProject struct {
	AnalysisProjectID  uint64
	OrganizationID     uint64
	LinkedRepositoryID *uint64
	UUID               string
	Key                string
	Name               string
	Visibility         string
	LastAnalysisAt     string

	// Aggregate quality signal, denormalized from the metric pass.
	Coverage             *float64
	Duplications         *float64
	BugsCount            int64
	VulnerabilitiesCount int64
	CodeSmellsCount      int64
	NewIssuesCount       int64
	QualityGateStatus    string

	// Ratings use the platform scale 1 (A, best) to 5 (E, worst);
	// zero means not measured yet.
	MaintainabilityRating int
	ReliabilityRating     int
	SecurityRating        int
	SecurityReviewRating  int

	CreatedAt string
	UpdatedAt string
}

type Issue struct {
	IssueID           uint64
	AnalysisProjectID uint64
	UUID              string
	Key               string
	Rule              string
	Severity          string
	Type              string
	Status            string
	Resolution        string
	Component         string
	Line              int
	Message           string
	Effort            string
	Author            string
	Assignee          string
	TagsJSON          string
	OpenedAt          string
	LastActivity      string
	ClosedAt          string
	CreatedAt         string
	UpdatedAt         string
}

type SecurityHotspot struct {
	HotspotID         uint64
	AnalysisProjectID uint64
	UUID              string
	Key               string
	RuleKey           string
	ReviewPriority    string
	SecurityCategory  string
	Status            string
	Resolution        string
	Component         string
	Line              int
	Message           string
	Author            string
	Assignee          string
	CreatedAt         string
	UpdatedAt         string
}

type QualityGate struct {
	QualityGateID     uint64
	AnalysisProjectID uint64
	UUID              string
	ExternalID        string
	Name              string
	Status            string
	IsDefault         bool
	IsBuiltIn         bool
	EvaluatedAt       string
	CreatedAt         string
	UpdatedAt         string
}

type Metric struct {
	MetricID          uint64
	AnalysisProjectID uint64
	UUID              string
	Key               string
	Name              string
	Description       string
	Value             *float64
	StringValue       string
	ValueType         string
	Domain            string
	Direction         int
	MeasuredAt        string
	CreatedAt         string
	UpdatedAt         string
}

// RankingSnapshot is the read-only projection the priority ranking engine
// consumes. WorstHotspot is empty when the project has no hotspots.
type RankingSnapshot struct {
	AnalysisProjectID uint64
	Key               string
	Name              string
	Coverage          *float64
	Duplication       *float64
	NewIssues         *int64
	WorstHotspot      string

	BugsCount             int64
	VulnerabilitiesCount  int64
	CodeSmellsCount       int64
	MaintainabilityRating int
	ReliabilityRating     int
	SecurityRating        int
	SecurityReviewRating  int
}

// QualityCatalog persists the quality-analysis hierarchy and serves the
// ranking projection. Same lookup/insert contract as SourceCatalog.
type QualityCatalog interface {
	OrganizationByKey(ctx context.Context, key string) (Organization, error)
	InsertOrganization(ctx context.Context, row Organization) (Organization, error)
	UpdateOrganization(ctx context.Context, row Organization) error

	AnalysisProjectByKey(ctx context.Context, key string) (AnalysisProject, error)
	ListAnalysisProjects(ctx context.Context, organizationID uint64) ([]AnalysisProject, error)
	InsertAnalysisProject(ctx context.Context, row AnalysisProject) (AnalysisProject, error)
	UpdateAnalysisProject(ctx context.Context, row AnalysisProject) error
	LinkAnalysisProject(ctx context.Context, analysisProjectID, repositoryID uint64, updatedAt string) error

	IssueByKey(ctx context.Context, key string) (Issue, error)
	InsertIssue(ctx context.Context, row Issue) (Issue, error)
	UpdateIssue(ctx context.Context, row Issue) error

	HotspotByKey(ctx context.Context, key string) (SecurityHotspot, error)
	InsertHotspot(ctx context.Context, row SecurityHotspot) (SecurityHotspot, error)
	UpdateHotspot(ctx context.Context, row SecurityHotspot) error

	QualityGateByExternalID(ctx context.Context, externalID string) (QualityGate, error)
	InsertQualityGate(ctx context.Context, row QualityGate) (QualityGate, error)
	UpdateQualityGate(ctx context.Context, row QualityGate) error

	MetricByKey(ctx context.Context, analysisProjectID uint64, key string) (Metric, error)
	InsertMetric(ctx context.Context, row Metric) (Metric, error)
	UpdateMetric(ctx context.Context, row Metric) error

	RankingSnapshots(ctx context.Context, organizationID uint64) ([]RankingSnapshot, error)
}
