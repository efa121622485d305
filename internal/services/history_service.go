package services

import (
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "treasury/internal/errors"
	"treasury/internal/models"
	"treasury/internal/pagination"
)

// historyCap bounds the valuation history per user. Appends beyond the cap
// evict the oldest points first.
const historyCap = 100

// minRenderablePoints is the smallest series that can show a trend.
const minRenderablePoints = 2

// historyService handles the bounded valuation history log.
type historyService struct {
	db *gorm.DB
}

// NewHistoryService creates a new HistoryServicer.
func NewHistoryService(db *gorm.DB) HistoryServicer {
	return &historyService{db: db}
}

// Append records one valuation point and trims the log back to the cap.
// Points are immutable once appended; the log is only ever mutated by
// append-and-truncate.
func (s *historyService) Append(userID string, recordedAt time.Time, valueUSD, valueCNY float64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		point := &models.HistoryPoint{
			UserID:     userID,
			RecordedAt: recordedAt,
			ValueUSD:   valueUSD,
			ValueCNY:   valueCNY,
		}
		if err := tx.Create(point).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		var count int64
		if err := tx.Model(&models.HistoryPoint{}).
			Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count <= historyCap {
			return nil
		}

		// FIFO eviction: drop the oldest points beyond the cap.
		var staleIDs []string
		if err := tx.Model(&models.HistoryPoint{}).
			Where("user_id = ?", userID).
			Order("recorded_at ASC").
			Limit(int(count - historyCap)).
			Pluck("id", &staleIDs).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Where("id IN ?", staleIDs).
			Delete(&models.HistoryPoint{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// List returns paginated history points for a user, newest first.
func (s *historyService) List(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.HistoryPoint], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.HistoryPoint{}).Where("user_id = ?", userID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var points []models.HistoryPoint
	if err := base.Order("recorded_at DESC").Scopes(pagination.Paginate(page)).Find(&points).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(points, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// ChartSeries produces the (label, value) pairs for the trend chart in the
// selected display currency. Values are ValueCNY for CNY and ValueUSD for
// everything else. A series with fewer than two points is returned with
// Renderable false rather than as an error.
func (s *historyService) ChartSeries(userID, currency string) (*ChartSeries, error) {
	currency = strings.ToUpper(currency)
	if currency == "" {
		currency = "USD"
	}

	var points []models.HistoryPoint
	if err := s.db.Where("user_id = ?", userID).
		Order("recorded_at ASC").
		Limit(historyCap).
		Find(&points).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	series := &ChartSeries{
		Currency:   currency,
		Renderable: len(points) >= minRenderablePoints,
		Points:     make([]ChartPoint, 0, len(points)),
	}
	for _, p := range points {
		value := p.ValueUSD
		if currency == "CNY" {
			value = p.ValueCNY
		}
		series.Points = append(series.Points, ChartPoint{
			Label: p.RecordedAt.Format("Jan 02 15:04"),
			Value: value,
		})
	}
	return series, nil
}
