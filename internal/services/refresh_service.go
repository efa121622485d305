package services

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	apperrors "treasury/internal/errors"
	"treasury/internal/logger"
	"treasury/internal/market"
	"treasury/internal/models"
	"treasury/internal/provider"
	"treasury/internal/valuation"
)

// refreshService orchestrates one best-effort provider fetch, reconciles
// the returned prices onto the user's holdings, patches the rate table,
// and appends a valuation point to the history log.
type refreshService struct {
	db      *gorm.DB
	store   *market.Store
	quotes  QuoteFetcher
	history HistoryServicer
	users   UserServicer

	mu       sync.Mutex
	inFlight map[string]bool
}

// NewRefreshService creates a new RefreshServicer.
func NewRefreshService(db *gorm.DB, store *market.Store, quotes QuoteFetcher, history HistoryServicer, users UserServicer) RefreshServicer {
	return &refreshService{
		db:       db,
		store:    store,
		quotes:   quotes,
		history:  history,
		users:    users,
		inFlight: make(map[string]bool),
	}
}

// Refresh runs one refresh cycle for a user. At most one refresh per user
// is in flight at a time: a second call arriving mid-flight is dropped
// (Skipped result), not queued, and does not cancel the running one.
//
// A failed or malformed provider response leaves the rate table, price map,
// and every holding's price exactly as they were, and appends no history
// point. Failure is reported in the result, not as an error.
func (s *refreshService) Refresh(ctx context.Context, userID string) (*RefreshResult, error) {
	s.mu.Lock()
	if s.inFlight[userID] {
		s.mu.Unlock()
		return &RefreshResult{Skipped: true}, nil
	}
	s.inFlight[userID] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inFlight, userID)
		s.mu.Unlock()
	}()

	var portfolio, watchlist []models.Holding
	if err := s.db.Where("user_id = ? AND list = ?", userID, models.ListPortfolio).
		Order("created_at ASC").Find(&portfolio).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Where("user_id = ? AND list = ?", userID, models.ListWatchlist).
		Order("created_at ASC").Find(&watchlist).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	req := buildQuoteRequest(portfolio, watchlist)
	result := &RefreshResult{SymbolsSent: len(req.Symbols)}

	fetched, err := s.quotes.FetchQuotes(ctx, req)
	if err != nil {
		logger.Get().Warnw("market refresh failed",
			"user_id", userID,
			"symbols", len(req.Symbols),
			"error", err.Error(),
		)
		result.FailureReason = err.Error()
		return result, nil
	}

	now := time.Now()
	matched := reconcileHoldings(portfolio, fetched.Quotes, now) +
		reconcileHoldings(watchlist, fetched.Quotes, now)

	// Persist all per-holding updates as one transaction so a reader never
	// sees a half-reconciled list.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for i := range portfolio {
			h := &portfolio[i]
			if txErr := tx.Model(h).Updates(map[string]interface{}{
				"current_price": h.CurrentPrice,
				"last_updated":  h.LastUpdated,
			}).Error; txErr != nil {
				return txErr
			}
		}
		for i := range watchlist {
			h := &watchlist[i]
			if txErr := tx.Model(h).Updates(map[string]interface{}{
				"current_price": h.CurrentPrice,
				"last_updated":  h.LastUpdated,
			}).Error; txErr != nil {
				return txErr
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// The store is only touched once the database write went through.
	s.store.MergeRates(fetched.Rates)
	for i := range portfolio {
		s.rememberPrice(&portfolio[i])
	}
	for i := range watchlist {
		s.rememberPrice(&watchlist[i])
	}

	totalUSD := valuation.TotalUSD(portfolio, s.store)
	totalCNY := valuation.TotalIn(totalUSD, "CNY", s.store)

	if err := s.history.Append(userID, now, totalUSD, totalCNY); err != nil {
		return nil, err
	}
	if err := s.users.TouchLastSync(userID, now); err != nil {
		return nil, err
	}

	result.Succeeded = true
	result.PricesMatched = matched
	result.TotalUSD = totalUSD
	result.TotalCNY = totalCNY
	result.RecordedAt = now

	logger.Get().Infow("market refresh completed",
		"user_id", userID,
		"symbols", result.SymbolsSent,
		"matched", matched,
		"total_usd", totalUSD,
	)
	return result, nil
}

// RefreshAll runs a refresh for every user that has holdings. Used by the
// cron scheduler; per-user failures do not stop the batch.
func (s *refreshService) RefreshAll(ctx context.Context) (*BatchRefreshResult, error) {
	var userIDs []string
	if err := s.db.Model(&models.Holding{}).
		Distinct("user_id").
		Pluck("user_id", &userIDs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	batch := &BatchRefreshResult{Users: len(userIDs)}
	for _, id := range userIDs {
		res, err := s.Refresh(ctx, id)
		switch {
		case err != nil:
			batch.Failed++
			logger.Get().Errorw("scheduled refresh errored", "user_id", id, "error", err.Error())
		case res.Skipped:
			batch.Skipped++
		case res.Succeeded:
			batch.Succeeded++
		default:
			batch.Failed++
		}
	}
	return batch, nil
}

// rememberPrice records a holding's non-cash price in the price map.
func (s *refreshService) rememberPrice(h *models.Holding) {
	if h.IsCash() {
		return
	}
	s.store.SetPrice(h.Symbol, h.CurrentPrice)
}

// buildQuoteRequest collects the deduplicated non-cash symbol/currency
// pairs across both lists, preserving first-seen order.
func buildQuoteRequest(portfolio, watchlist []models.Holding) provider.Request {
	seen := make(map[string]bool)
	var req provider.Request
	for _, list := range [][]models.Holding{portfolio, watchlist} {
		for i := range list {
			h := &list[i]
			if h.IsCash() {
				continue
			}
			key := market.CompositeKey(h.Symbol, h.Currency)
			if seen[key] {
				continue
			}
			seen[key] = true
			req.Symbols = append(req.Symbols, provider.SymbolRef{Symbol: h.Symbol, Currency: h.Currency})
		}
	}
	return req
}

// reconcileHoldings applies the match cascade to every holding in a list
// and returns how many prices were updated. A holding with no match keeps
// its previous price; Cash is always forced back to 1.
func reconcileHoldings(holdings []models.Holding, quotes []market.Quote, now time.Time) int {
	matched := 0
	for i := range holdings {
		h := &holdings[i]
		h.LastUpdated = now

		if h.IsCash() {
			h.CurrentPrice = 1
			continue
		}

		m := market.MatchPrice(h.Symbol, h.Currency, quotes)
		if m.Kind == market.MatchNone {
			continue
		}
		h.CurrentPrice = m.Price
		matched++
	}
	return matched
}
