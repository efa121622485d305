package services

import (
	"context"
	"time"

	"treasury/internal/models"
	"treasury/internal/pagination"
	"treasury/internal/provider"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(username, password string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	AttemptLogin(username, password string) (*models.User, error)
	TouchLastSync(id string, at time.Time) error
}

// HoldingDraft carries the user-supplied fields for a new holding. The id,
// initial price, and timestamp are assigned by the service.
type HoldingDraft struct {
	Symbol   string
	Quantity float64
	Category models.AssetCategory
	Currency string
}

// HoldingServicer defines the contract for portfolio/watchlist mutations.
type HoldingServicer interface {
	Add(userID string, list models.HoldingList, draft HoldingDraft) (*models.Holding, error)
	List(userID string, list models.HoldingList) ([]models.Holding, error)
	Delete(userID, holdingID string) error
	UpdateQuantity(userID, holdingID string, quantity float64) (*models.Holding, error)
	MoveToPortfolio(userID, holdingID string) (*models.Holding, error)
}

// ChartPoint is one (label, value) pair of a history series.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ChartSeries is a finite, restartable view of the history log in one
// display currency. Fewer than two points is a defined insufficient-data
// state, not an error.
type ChartSeries struct {
	Currency   string       `json:"currency"`
	Renderable bool         `json:"renderable"`
	Points     []ChartPoint `json:"points"`
}

// HistoryServicer defines the contract for the bounded valuation history log.
type HistoryServicer interface {
	Append(userID string, recordedAt time.Time, valueUSD, valueCNY float64) error
	List(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.HistoryPoint], error)
	ChartSeries(userID, currency string) (*ChartSeries, error)
}

// QuoteFetcher is the provider-side dependency of the refresh pipeline.
type QuoteFetcher interface {
	FetchQuotes(ctx context.Context, req provider.Request) (*provider.Result, error)
}

// RefreshResult describes the outcome of one refresh cycle.
type RefreshResult struct {
	Skipped       bool      `json:"skipped"`
	Succeeded     bool      `json:"succeeded"`
	FailureReason string    `json:"failure_reason,omitempty"`
	SymbolsSent   int       `json:"symbols_sent"`
	PricesMatched int       `json:"prices_matched"`
	TotalUSD      float64   `json:"total_usd"`
	TotalCNY      float64   `json:"total_cny"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// BatchRefreshResult summarizes a RefreshAll run across users.
type BatchRefreshResult struct {
	Users     int `json:"users"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// RefreshServicer defines the contract for the price refresh pipeline.
type RefreshServicer interface {
	Refresh(ctx context.Context, userID string) (*RefreshResult, error)
	RefreshAll(ctx context.Context) (*BatchRefreshResult, error)
}
