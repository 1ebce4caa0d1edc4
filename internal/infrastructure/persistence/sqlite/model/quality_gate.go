package model

type QualityGate struct {
	QualityGateID     uint64 `gorm:"column:quality_gate_id;primaryKey;autoIncrement"`
	AnalysisProjectID uint64 `gorm:"column:analysis_project_id;not null;index"`
	UUID              string `gorm:"column:uuid;type:text;not null;uniqueIndex"`
	ExternalID        string `gorm:"column:external_id;type:text;not null;uniqueIndex"`
	Name              string `gorm:"column:name;type:text;not null"`
	Status            string `gorm:"column:status;type:text;not null"`
	IsDefault         bool   `gorm:"column:is_default;not null;default:0"`
	IsBuiltIn         bool   `gorm:"column:is_built_in;not null;default:0"`
	EvaluatedAt       string `gorm:"column:evaluated_at;type:text;not null"`
	CreatedAt         string `gorm:"column:created_at;type:text;not null"`
	UpdatedAt         string `gorm:"column:updated_at;type:text;not null"`
}

func (QualityGate) TableName() string {
	return "quality_gates"
}
