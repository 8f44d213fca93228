package models

import "time"

// FeatureDocument is the generic per-feature JSON document. Saves shallow-merge
// top-level keys; array-valued fields are replaced wholesale by the caller.
type FeatureDocument struct {
	UserID    uint   `gorm:"primaryKey;autoIncrement:false"`
	Feature   string `gorm:"primaryKey"`
	Data      []byte `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

const (
	FeaturePeriod   = "period"
	FeatureFinance  = "finance"
	FeatureGym      = "gym"
	FeatureFood     = "food"
	FeatureWellness = "wellness"
	FeatureGoals    = "goals"
	FeatureMood     = "mood"
)
