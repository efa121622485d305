package valuation

import (
	"math"
	"testing"

	"treasury/internal/models"
)

// rateMap is a test RateSource backed by a plain map. Unknown currencies
// fall back to 1, matching the production store.
type rateMap map[string]float64

func (r rateMap) Rate(currency string) float64 {
	if v, ok := r[currency]; ok && v > 0 {
		return v
	}
	return 1
}

func holding(symbol string, quantity float64, category models.AssetCategory, currency string, price float64) models.Holding {
	return models.Holding{
		Symbol:       symbol,
		Quantity:     quantity,
		Category:     category,
		Currency:     currency,
		CurrentPrice: price,
	}
}

func TestTotalUSD(t *testing.T) {
	rates := rateMap{"USD": 1, "CNY": 7.24, "HKD": 7.82}

	t.Run("default_cash_scenario", func(t *testing.T) {
		holdings := []models.Holding{
			holding("Cash", 15000, models.CategoryCash, "USD", 1),
			holding("Cash", 50000, models.CategoryCash, "CNY", 1),
		}

		total := TotalUSD(holdings, rates)
		want := 15000 + 50000/7.24
		if math.Abs(total-want) > 1e-9 {
			t.Errorf("expected total %.4f, got %.4f", want, total)
		}
		if math.Abs(total-21906.08) > 0.01 {
			t.Errorf("expected total near 21906.08, got %.2f", total)
		}

		cny := TotalIn(total, "CNY", rates)
		if math.Abs(cny-158600.0) > 100 {
			t.Errorf("expected CNY total near 158600, got %.2f", cny)
		}
	})

	t.Run("empty_holdings", func(t *testing.T) {
		if total := TotalUSD(nil, rates); total != 0 {
			t.Errorf("expected 0, got %f", total)
		}
	})

	t.Run("unknown_currency_treated_as_usd", func(t *testing.T) {
		holdings := []models.Holding{
			holding("XYZ", 10, models.CategoryStock, "GBP", 5),
		}
		if total := TotalUSD(holdings, rates); total != 50 {
			t.Errorf("expected 50, got %f", total)
		}
	})

	t.Run("usd_total_unchanged_by_usd_conversion", func(t *testing.T) {
		if v := TotalIn(123.45, "USD", rates); v != 123.45 {
			t.Errorf("expected 123.45, got %f", v)
		}
	})
}

func TestAllocation(t *testing.T) {
	rates := rateMap{"USD": 1, "CNY": 7.24}

	t.Run("percentages_sum_to_one", func(t *testing.T) {
		holdings := []models.Holding{
			holding("Cash", 1000, models.CategoryCash, "USD", 1),
			holding("AAPL", 10, models.CategoryStock, "USD", 200),
			holding("BTC", 0.5, models.CategoryCrypto, "USD", 60000),
		}

		entries := Allocation(holdings, rates)
		if len(entries) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(entries))
		}

		var sum float64
		for _, e := range entries {
			sum += e.Percent
		}
		if math.Abs(sum-1.0) > 1e-9 {
			t.Errorf("expected percents to sum to 1, got %f", sum)
		}
	})

	t.Run("sorted_descending_by_value", func(t *testing.T) {
		holdings := []models.Holding{
			holding("Cash", 100, models.CategoryCash, "USD", 1),
			holding("BTC", 1, models.CategoryCrypto, "USD", 60000),
			holding("AAPL", 10, models.CategoryStock, "USD", 200),
		}

		entries := Allocation(holdings, rates)
		for i := 1; i < len(entries); i++ {
			if entries[i].ValueUSD > entries[i-1].ValueUSD {
				t.Errorf("entries not sorted: %v before %v", entries[i-1], entries[i])
			}
		}
		if entries[0].Category != models.CategoryCrypto {
			t.Errorf("expected Crypto first, got %s", entries[0].Category)
		}
	})

	t.Run("ties_keep_first_seen_order", func(t *testing.T) {
		holdings := []models.Holding{
			holding("A", 10, models.CategoryBond, "USD", 10),
			holding("B", 10, models.CategoryStock, "USD", 10),
		}

		entries := Allocation(holdings, rates)
		if entries[0].Category != models.CategoryBond || entries[1].Category != models.CategoryStock {
			t.Errorf("expected first-seen order Bond,Stock on tie, got %s,%s", entries[0].Category, entries[1].Category)
		}
	})

	t.Run("zero_total_yields_zero_percents", func(t *testing.T) {
		holdings := []models.Holding{
			holding("AAPL", 0, models.CategoryStock, "USD", 0),
			holding("BTC", 0, models.CategoryCrypto, "USD", 0),
		}

		entries := Allocation(holdings, rates)
		for _, e := range entries {
			if e.Percent != 0 {
				t.Errorf("expected percent 0 for %s, got %f", e.Category, e.Percent)
			}
			if math.IsNaN(e.Percent) {
				t.Errorf("percent for %s is NaN", e.Category)
			}
		}
	})

	t.Run("grouped_by_category", func(t *testing.T) {
		holdings := []models.Holding{
			holding("AAPL", 1, models.CategoryStock, "USD", 100),
			holding("MSFT", 1, models.CategoryStock, "USD", 300),
		}

		entries := Allocation(holdings, rates)
		if len(entries) != 1 {
			t.Fatalf("expected 1 entry, got %d", len(entries))
		}
		if entries[0].ValueUSD != 400 {
			t.Errorf("expected 400, got %f", entries[0].ValueUSD)
		}
	})
}
