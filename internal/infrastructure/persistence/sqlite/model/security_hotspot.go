package model

type SecurityHotspot struct {
	HotspotID         uint64 `gorm:"column:hotspot_id;primaryKey;autoIncrement"`
	AnalysisProjectID uint64 `gorm:"column:analysis_project_id;not null;index"`
	UUID              string `gorm:"column:uuid;type:text;not null;uniqueIndex"`
	Key               string `gorm:"column:key;type:text;not null;uniqueIndex"`
	RuleKey           string `gorm:"column:rule_key;type:text;not null;index"`
	ReviewPriority    string `gorm:"column:review_priority;type:text;not null;index"`
	SecurityCategory  string `gorm:"column:security_category;type:text;not null"`
	Status            string `gorm:"column:status;type:text;not null;index"`
	Resolution        string `gorm:"column:resolution;type:text;not null"`
	Component         string `gorm:"column:component;type:text;not null"`
	Line              int    `gorm:"column:line;not null;default:0"`
	Message           string `gorm:"column:message;type:text;not null"`
	Author            string `gorm:"column:author;type:text;not null"`
	Assignee          string `gorm:"column:assignee;type:text;not null"`
	CreatedAt         string `gorm:"column:created_at;type:text;not null"`
	UpdatedAt         string `gorm:"column:updated_at;type:text;not null"`
}

func (SecurityHotspot) TableName() string {
	return "security_hotspots"
}
