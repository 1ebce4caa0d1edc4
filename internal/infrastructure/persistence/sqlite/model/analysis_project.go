package model

type AnalysisProject struct {
	AnalysisProjectID uint64 `gorm:"column:analysis_project_id;primaryKey;autoIncrement"`
	OrganizationID    uint64 `gorm:"column:organization_id;not null;index"`

	// At most one analysis project per repository; enforced here even
	// though the upstream platform only implies it by key convention.
	LinkedRepositoryID *uint64 `gorm:"column:linked_repository_id;uniqueIndex"`

	UUID           string `gorm:"column:uuid;type:text;not null;uniqueIndex"`
	Key            string `gorm:"column:key;type:text;not null;uniqueIndex"`
	Name           string `gorm:"column:name;type:text;not null"`
	Visibility     string `gorm:"column:visibility;type:text;not null"`
	LastAnalysisAt string `gorm:"column:last_analysis_at;type:text;not null"`

	Coverage             *float64 `gorm:"column:coverage"`
	Duplications         *float64 `gorm:"column:duplications"`
	BugsCount            int64    `gorm:"column:bugs_count;not null;default:0"`
	VulnerabilitiesCount int64    `gorm:"column:vulnerabilities_count;not null;default:0"`
	CodeSmellsCount      int64    `gorm:"column:code_smells_count;not null;default:0"`
	NewIssuesCount       int64    `gorm:"column:new_issues_count;not null;default:0"`
	QualityGateStatus    string   `gorm:"column:quality_gate_status;type:text;not null"`

	MaintainabilityRating int `gorm:"column:maintainability_rating;not null;default:0"`
	ReliabilityRating     int `gorm:"column:reliability_rating;not null;default:0"`
	SecurityRating        int `gorm:"column:security_rating;not null;default:0"`
	SecurityReviewRating  int `gorm:"column:security_review_rating;not null;default:0"`

	CreatedAt string `gorm:"column:created_at;type:text;not null"`
	UpdatedAt string `gorm:"column:updated_at;type:text;not null"`
}

func (AnalysisProject) TableName() string {
	return "analysis_projects"
}
