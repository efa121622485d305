// Package market holds process-lifetime market state: the exchange-rate
// table and the last-observed price for each symbol. The store is seeded
// with static defaults at startup and patched by refresh results; a patch
// never replaces the table wholesale, so a degraded provider response
// cannot erase previously known values.
package market

import (
	"strings"
	"sync"
)

// Default exchange rates, in units of currency per 1 USD. Used until the
// first successful refresh and as the fallback for unknown currencies.
const (
	DefaultRateCNY = 7.24
	DefaultRateHKD = 7.82
)

// Store holds the current rate table and price map. Safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	rates  map[string]float64
	prices map[string]float64
}

// NewStore creates a Store seeded with the default rate table and an empty
// price map.
func NewStore() *Store {
	return &Store{
		rates: map[string]float64{
			"USD": 1,
			"CNY": DefaultRateCNY,
			"HKD": DefaultRateHKD,
		},
		prices: make(map[string]float64),
	}
}

// Rate returns the units-per-USD rate for a currency code. Unknown
// currencies return 1: they are treated as already USD-denominated rather
// than silently dropped.
func (s *Store) Rate(currency string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.rates[strings.ToUpper(currency)]; ok && r > 0 {
		return r
	}
	return 1
}

// Rates returns a copy of the current rate table.
func (s *Store) Rates() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]float64, len(s.rates))
	for k, v := range s.rates {
		out[k] = v
	}
	return out
}

// MergeRates applies a rate patch to the table. Patch entries win per key;
// keys absent from the patch are untouched. Non-positive rates are ignored,
// and USD is pinned to 1 regardless of what the patch says.
func (s *Store) MergeRates(patch map[string]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for code, rate := range patch {
		if rate <= 0 {
			continue
		}
		s.rates[strings.ToUpper(code)] = rate
	}
	s.rates["USD"] = 1
}

// Price returns the last observed price for a symbol, and whether one is known.
func (s *Store) Price(symbol string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prices[symbol]
	return p, ok
}

// SetPrice records the last observed price for a symbol. Entries persist
// across refreshes until a newer value arrives: a stale price is better
// than no price.
func (s *Store) SetPrice(symbol string, price float64) {
	if price <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[symbol] = price
}

// PriceSnapshot returns a copy of the current price map.
func (s *Store) PriceSnapshot() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]float64, len(s.prices))
	for k, v := range s.prices {
		out[k] = v
	}
	return out
}
