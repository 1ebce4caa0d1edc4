package model

type Branch struct {
	BranchID     uint64 `gorm:"column:branch_id;primaryKey;autoIncrement"`
	RepositoryID uint64 `gorm:"column:repository_id;not null;uniqueIndex:idx_branches_repository_name,priority:1"`
	Name         string `gorm:"column:name;type:text;not null;uniqueIndex:idx_branches_repository_name,priority:2"`
	TargetHash   string `gorm:"column:target_hash;type:text;not null"`
	IsDefault    bool   `gorm:"column:is_default;not null;default:0"`
	CreatedAt    string `gorm:"column:created_at;type:text;not null"`
	UpdatedAt    string `gorm:"column:updated_at;type:text;not null"`
}

func (Branch) TableName() string {
	return "branches"
}
