// Package valuation computes portfolio totals and allocation breakdowns.
// All functions are pure: they take the holdings list and a rate table and
// have no side effects, so they can be recomputed on every change.
package valuation

import (
	"sort"
	"strings"

	"treasury/internal/models"
)

// RateSource provides units-per-USD exchange rates. Unknown currencies must
// return 1 (treated as already USD-denominated).
type RateSource interface {
	Rate(currency string) float64
}

// AllocationEntry is one category's share of the portfolio.
type AllocationEntry struct {
	Category models.AssetCategory `json:"category"`
	ValueUSD float64              `json:"value_usd"`
	Percent  float64              `json:"percent"`
}

// ValueUSD returns a single holding's value in USD: native value
// (quantity x current price) divided by the currency's units-per-USD rate.
func ValueUSD(h *models.Holding, rates RateSource) float64 {
	return h.Quantity * h.CurrentPrice / rates.Rate(h.Currency)
}

// TotalUSD sums the USD value of all holdings.
func TotalUSD(holdings []models.Holding, rates RateSource) float64 {
	var total float64
	for i := range holdings {
		total += ValueUSD(&holdings[i], rates)
	}
	return total
}

// TotalIn converts a USD total into another display currency.
func TotalIn(totalUSD float64, currency string, rates RateSource) float64 {
	if strings.ToUpper(currency) == "USD" {
		return totalUSD
	}
	return totalUSD * rates.Rate(currency)
}

// Allocation groups holdings' USD values by category. Entries are sorted
// descending by value; ties keep first-seen category order (stable sort).
// When the total is zero every percent is exactly 0; no division happens.
func Allocation(holdings []models.Holding, rates RateSource) []AllocationEntry {
	totals := make(map[models.AssetCategory]float64)
	var order []models.AssetCategory

	for i := range holdings {
		h := &holdings[i]
		if _, seen := totals[h.Category]; !seen {
			order = append(order, h.Category)
		}
		totals[h.Category] += ValueUSD(h, rates)
	}

	total := 0.0
	for _, v := range totals {
		total += v
	}

	entries := make([]AllocationEntry, 0, len(order))
	for _, cat := range order {
		e := AllocationEntry{Category: cat, ValueUSD: totals[cat]}
		if total > 0 {
			e.Percent = totals[cat] / total
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ValueUSD > entries[j].ValueUSD
	})

	return entries
}
