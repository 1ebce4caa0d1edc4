package model

type PullRequest struct {
	PullRequestID uint64 `gorm:"column:pull_request_id;primaryKey;autoIncrement"`
	RepositoryID  uint64 `gorm:"column:repository_id;not null;index"`
	ExternalID    string `gorm:"column:external_id;type:text;not null;uniqueIndex"`
	Title         string `gorm:"column:title;type:text;not null"`
	Description   string `gorm:"column:description;type:text;not null"`
	State         string `gorm:"column:state;type:text;not null"`
	Author        string `gorm:"column:author;type:text;not null"`
	OpenedAt      string `gorm:"column:opened_at;type:text;not null"`
	LastActivity  string `gorm:"column:last_activity;type:text;not null"`
	ClosedAt      string `gorm:"column:closed_at;type:text;not null"`
	MergedAt      string `gorm:"column:merged_at;type:text;not null"`
	CreatedAt     string `gorm:"column:created_at;type:text;not null"`
	UpdatedAt     string `gorm:"column:updated_at;type:text;not null"`
}

func (PullRequest) TableName() string {
	return "pull_requests"
}
