package model

type Workspace struct {
	WorkspaceID uint64  `gorm:"column:workspace_id;primaryKey;autoIncrement"`
	UUID        *string `gorm:"column:uuid;type:text;uniqueIndex"`
	Slug        string  `gorm:"column:slug;type:text;not null;uniqueIndex"`
	Name        string  `gorm:"column:name;type:text;not null"`
	IsPrivate   bool    `gorm:"column:is_private;not null;default:1"`
	CreatedAt   string  `gorm:"column:created_at;type:text;not null"`
	UpdatedAt   string  `gorm:"column:updated_at;type:text;not null"`
}

func (Workspace) TableName() string {
	return "workspaces"
}
