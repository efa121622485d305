package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "treasury/internal/errors"
	"treasury/internal/models"
)

// holdingService handles portfolio and watchlist mutations.
type holdingService struct {
	db *gorm.DB
}

// NewHoldingService creates a new HoldingServicer.
func NewHoldingService(db *gorm.DB) HoldingServicer {
	return &holdingService{db: db}
}

// Add appends a new holding to the given list. The id is assigned by the
// model hook; the initial price is 1 for Cash and 0 otherwise, pending the
// next refresh.
func (s *holdingService) Add(userID string, list models.HoldingList, draft HoldingDraft) (*models.Holding, error) {
	symbol := strings.TrimSpace(draft.Symbol)
	if symbol == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Symbol is required")
	}

	initialPrice := 0.0
	if draft.Category == models.CategoryCash {
		initialPrice = 1
	}

	holding := &models.Holding{
		UserID:       userID,
		List:         list,
		Symbol:       symbol,
		Quantity:     clampQuantity(draft.Quantity),
		Category:     draft.Category,
		Currency:     strings.ToUpper(draft.Currency),
		CurrentPrice: initialPrice,
		LastUpdated:  time.Now(),
	}

	if err := s.db.Create(holding).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return holding, nil
}

// List returns a user's holdings for one list, oldest first.
func (s *holdingService) List(userID string, list models.HoldingList) ([]models.Holding, error) {
	var holdings []models.Holding
	if err := s.db.Where("user_id = ? AND list = ?", userID, list).
		Order("created_at ASC").Find(&holdings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return holdings, nil
}

// Delete removes a holding by id. A missing id is a no-op, not an error.
func (s *holdingService) Delete(userID, holdingID string) error {
	if err := s.db.Where("user_id = ? AND id = ?", userID, holdingID).
		Delete(&models.Holding{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// UpdateQuantity replaces a holding's quantity, clamped to >= 0. The id,
// category, and currency are never altered here.
func (s *holdingService) UpdateQuantity(userID, holdingID string, quantity float64) (*models.Holding, error) {
	holding, err := s.getUserHolding(userID, holdingID)
	if err != nil {
		return nil, err
	}

	holding.Quantity = clampQuantity(quantity)
	if err := s.db.Model(holding).Update("quantity", holding.Quantity).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return holding, nil
}

// MoveToPortfolio promotes a watchlist entry into the portfolio. If a
// portfolio holding with the same symbol and currency already exists, the
// quantities are summed into it; otherwise a new portfolio entry gets a
// fresh id. The watchlist entry is removed either way.
func (s *holdingService) MoveToPortfolio(userID, holdingID string) (*models.Holding, error) {
	source, err := s.getUserHolding(userID, holdingID)
	if err != nil {
		return nil, err
	}
	if source.List != models.ListWatchlist {
		return nil, apperrors.ErrNotWatchlisted
	}

	var target *models.Holding
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Holding
		findErr := tx.Where("user_id = ? AND list = ? AND symbol = ? AND currency = ?",
			userID, models.ListPortfolio, source.Symbol, source.Currency).
			First(&existing).Error

		switch {
		case findErr == nil:
			existing.Quantity += source.Quantity
			if txErr := tx.Model(&existing).Update("quantity", existing.Quantity).Error; txErr != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
			}
			target = &existing

		case errors.Is(findErr, gorm.ErrRecordNotFound):
			moved := models.Holding{
				UserID:       userID,
				List:         models.ListPortfolio,
				Symbol:       source.Symbol,
				Quantity:     source.Quantity,
				Category:     source.Category,
				Currency:     source.Currency,
				CurrentPrice: source.CurrentPrice,
				LastUpdated:  source.LastUpdated,
			}
			if txErr := tx.Create(&moved).Error; txErr != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
			}
			target = &moved

		default:
			return apperrors.Wrap(apperrors.ErrInternalServer, findErr)
		}

		if txErr := tx.Unscoped().Delete(source).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return target, nil
}

// getUserHolding fetches a holding and verifies ownership.
func (s *holdingService) getUserHolding(userID, holdingID string) (*models.Holding, error) {
	var holding models.Holding
	if err := s.db.Where("user_id = ? AND id = ?", userID, holdingID).First(&holding).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrHoldingNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &holding, nil
}

// clampQuantity enforces the non-negative quantity invariant. Negative
// input is clamped rather than rejected.
func clampQuantity(q float64) float64 {
	if q < 0 {
		return 0
	}
	return q
}
