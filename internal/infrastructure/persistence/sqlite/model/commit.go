package model

type Commit struct {
	CommitID     uint64 `gorm:"column:commit_id;primaryKey;autoIncrement"`
	RepositoryID uint64 `gorm:"column:repository_id;not null;index"`
	Hash         string `gorm:"column:hash;type:text;not null;uniqueIndex"`
	Message      string `gorm:"column:message;type:text;not null"`
	AuthorName   string `gorm:"column:author_name;type:text;not null"`
	AuthorEmail  string `gorm:"column:author_email;type:text;not null"`
	AuthoredAt   string `gorm:"column:authored_at;type:text;not null"`
	CommittedAt  string `gorm:"column:committed_at;type:text;not null"`
	IsMerge      bool   `gorm:"column:is_merge;not null;default:0"`
	CreatedAt    string `gorm:"column:created_at;type:text;not null"`
	UpdatedAt    string `gorm:"column:updated_at;type:text;not null"`
}

func (Commit) TableName() string {
	return "commits"
}
