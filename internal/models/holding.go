package models

import "time"

// AssetCategory classifies a holding for allocation breakdowns.
type AssetCategory string

const (
	CategoryCash       AssetCategory = "Cash"
	CategoryStock      AssetCategory = "Stock"
	CategoryBond       AssetCategory = "Bond"
	CategoryCrypto     AssetCategory = "Crypto"
	CategoryRealEstate AssetCategory = "RealEstate"
	CategoryOther      AssetCategory = "Other"
)

// HoldingList identifies which of the two user lists a holding belongs to.
type HoldingList string

const (
	ListPortfolio HoldingList = "portfolio"
	ListWatchlist HoldingList = "watchlist"
)

// Holding represents one position in a user's portfolio or watchlist.
// Quantity is never negative (clamped on update), and Cash holdings
// always carry CurrentPrice = 1 in their native currency.
type Holding struct {
	Base
	UserID       string        `gorm:"type:uuid;not null;index" json:"user_id"`
	List         HoldingList   `gorm:"not null;default:'portfolio'" json:"list"`
	Symbol       string        `gorm:"not null" json:"symbol"`
	Quantity     float64       `gorm:"not null" json:"quantity"`
	Category     AssetCategory `gorm:"not null" json:"category"`
	Currency     string        `gorm:"not null;default:'USD'" json:"currency"`
	CurrentPrice float64       `gorm:"not null;default:0" json:"current_price"`
	LastUpdated  time.Time     `gorm:"not null" json:"last_updated"`
}

// IsCash reports whether the holding is a cash position.
func (h *Holding) IsCash() bool {
	return h.Category == CategoryCash
}
