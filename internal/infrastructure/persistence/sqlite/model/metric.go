package model

type Metric struct {
	MetricID          uint64   `gorm:"column:metric_id;primaryKey;autoIncrement"`
	AnalysisProjectID uint64   `gorm:"column:analysis_project_id;not null;uniqueIndex:idx_metrics_project_key,priority:1"`
	UUID              string   `gorm:"column:uuid;type:text;not null;uniqueIndex"`
	Key               string   `gorm:"column:key;type:text;not null;uniqueIndex:idx_metrics_project_key,priority:2"`
	Name              string   `gorm:"column:name;type:text;not null"`
	Description       string   `gorm:"column:description;type:text;not null"`
	Value             *float64 `gorm:"column:value"`
	StringValue       string   `gorm:"column:string_value;type:text;not null"`
	ValueType         string   `gorm:"column:value_type;type:text;not null"`
	Domain            string   `gorm:"column:domain;type:text;not null"`
	Direction         int      `gorm:"column:direction;not null;default:0"`
	MeasuredAt        string   `gorm:"column:measured_at;type:text;not null"`
	CreatedAt         string   `gorm:"column:created_at;type:text;not null"`
	UpdatedAt         string   `gorm:"column:updated_at;type:text;not null"`
}

func (Metric) TableName() string {
	return "metrics"
}
