package models

import (
	"time"
)

// InsightBundleRecord is the durable row behind the insight store. The bundle
// itself rides along as a JSON document; the indexed columns exist only for
// lookup and freshness checks.
type InsightBundleRecord struct {
	Id          string    `gorm:"primaryKey;size:36" json:"id"`
	BusinessId  string    `gorm:"index:idx_bundle_business_timeframe,unique;size:36;not null" json:"business_id"`
	Timeframe   int       `gorm:"index:idx_bundle_business_timeframe,unique;not null" json:"timeframe"`
	StoreId     string    `gorm:"size:100" json:"store_id"`
	GeneratedAt time.Time `gorm:"not null" json:"generated_at"`
	PayloadJSON []byte    `gorm:"type:json" json:"payload"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type InsightSummaryRecord struct {
	Id                  string    `gorm:"primaryKey;size:36" json:"id"`
	BusinessId          string    `gorm:"index;size:36;not null" json:"business_id"`
	BundleId            string    `gorm:"index;size:36;not null" json:"bundle_id"`
	Domain              string    `gorm:"size:20;not null" json:"domain"`
	Summary             string    `gorm:"type:text" json:"summary"`
	KeyPointsJSON       []byte    `gorm:"type:json" json:"key_points"`
	RecommendationsJSON []byte    `gorm:"type:json" json:"recommendations"`
	Urgency             string    `gorm:"size:10;not null" json:"urgency"`
	IsActive            *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt           time.Time `gorm:"autoCreateTime" json:"created_at"`
}
