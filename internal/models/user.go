package models

import "time"

// User represents a dashboard owner. Holdings, watchlist entries, and
// history points are all scoped to a user.
type User struct {
	Base
	Username   string     `gorm:"uniqueIndex;not null" json:"username"`
	Password   string     `gorm:"not null" json:"-"`
	LastSyncAt *time.Time `json:"last_sync_at,omitempty"`
}
