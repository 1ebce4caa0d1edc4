package model

type Issue struct {
	IssueID           uint64 `gorm:"column:issue_id;primaryKey;autoIncrement"`
	AnalysisProjectID uint64 `gorm:"column:analysis_project_id;not null;index"`
	UUID              string `gorm:"column:uuid;type:text;not null;uniqueIndex"`
	Key               string `gorm:"column:key;type:text;not null;uniqueIndex"`
	Rule              string `gorm:"column:rule;type:text;not null;index"`
	Severity          string `gorm:"column:severity;type:text;not null;index"`
	Type              string `gorm:"column:type;type:text;not null;index"`
	Status            string `gorm:"column:status;type:text;not null;index"`
	Resolution        string `gorm:"column:resolution;type:text;not null"`
	Component         string `gorm:"column:component;type:text;not null"`
	Line              int    `gorm:"column:line;not null;default:0"`
	Message           string `gorm:"column:message;type:text;not null"`
	Effort            string `gorm:"column:effort;type:text;not null"`
	Author            string `gorm:"column:author;type:text;not null"`
	Assignee          string `gorm:"column:assignee;type:text;not null"`
	TagsJSON          string `gorm:"column:tags_json;type:text;not null"`
	OpenedAt          string `gorm:"column:opened_at;type:text;not null"`
	LastActivity      string `gorm:"column:last_activity;type:text;not null"`
	ClosedAt          string `gorm:"column:closed_at;type:text;not null"`
	CreatedAt         string `gorm:"column:created_at;type:text;not null"`
	UpdatedAt         string `gorm:"column:updated_at;type:text;not null"`
}

func (Issue) TableName() string {
	return "issues"
}
