package model

type Project struct {
	ProjectID   uint64  `gorm:"column:project_id;primaryKey;autoIncrement"`
	WorkspaceID uint64  `gorm:"column:workspace_id;not null;index"`
	UUID        *string `gorm:"column:uuid;type:text;uniqueIndex"`
	Key         string  `gorm:"column:key;type:text;not null;uniqueIndex"`
	Name        string  `gorm:"column:name;type:text;not null"`
	Description string  `gorm:"column:description;type:text;not null"`
	IsPrivate   bool    `gorm:"column:is_private;not null;default:1"`
	CreatedAt   string  `gorm:"column:created_at;type:text;not null"`
	UpdatedAt   string  `gorm:"column:updated_at;type:text;not null"`
}

func (Project) TableName() string {
	return "projects"
}
