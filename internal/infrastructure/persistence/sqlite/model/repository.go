package model

type Repository struct {
	RepositoryID uint64  `gorm:"column:repository_id;primaryKey;autoIncrement"`
	WorkspaceID  uint64  `gorm:"column:workspace_id;not null;uniqueIndex:idx_repositories_workspace_slug,priority:1"`
	ProjectID    *uint64 `gorm:"column:project_id;index"`
	UUID         *string `gorm:"column:uuid;type:text;uniqueIndex"`
	Slug         string  `gorm:"column:slug;type:text;not null;uniqueIndex:idx_repositories_workspace_slug,priority:2"`
	Name         string  `gorm:"column:name;type:text;not null"`
	Description  string  `gorm:"column:description;type:text;not null"`
	IsPrivate    bool    `gorm:"column:is_private;not null;default:1"`
	Language     string  `gorm:"column:language;type:text;not null"`
	SizeBytes    int64   `gorm:"column:size_bytes;not null;default:0"`
	CreatedAt    string  `gorm:"column:created_at;type:text;not null"`
	UpdatedAt    string  `gorm:"column:updated_at;type:text;not null"`
}

func (Repository) TableName() string {
	return "repositories"
}
