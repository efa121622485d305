package models

import (
	"time"

	"treasury/internal/uuid"

	"gorm.io/gorm"
)

// HistoryPoint represents a point-in-time valuation of a user's portfolio.
// This is immutable time-series data: no Base embed, no soft deletes.
// The log is bounded: only the newest 100 points per user are retained.
type HistoryPoint struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     string    `gorm:"type:uuid;not null;index" json:"user_id"`
	RecordedAt time.Time `gorm:"not null" json:"recorded_at"`
	ValueUSD   float64   `gorm:"not null" json:"value_usd"`
	ValueCNY   float64   `gorm:"not null" json:"value_cny"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (p *HistoryPoint) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New()
	}
	return nil
}
