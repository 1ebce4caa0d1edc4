package model

type Organization struct {
	OrganizationID uint64 `gorm:"column:organization_id;primaryKey;autoIncrement"`
	Key            string `gorm:"column:key;type:text;not null;uniqueIndex"`
	Name           string `gorm:"column:name;type:text;not null"`
	Description    string `gorm:"column:description;type:text;not null"`
	CreatedAt      string `gorm:"column:created_at;type:text;not null"`
	UpdatedAt      string `gorm:"column:updated_at;type:text;not null"`
}

func (Organization) TableName() string {
	return "organizations"
}
