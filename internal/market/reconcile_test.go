package market

import "testing"

func TestMatchPrice(t *testing.T) {
	t.Run("composite_key_beats_bare_symbol", func(t *testing.T) {
		quotes := []Quote{
			{Symbol: "AAPL", Price: 180},
			{Symbol: "AAPL (USD)", Price: 185},
		}

		m := MatchPrice("AAPL", "USD", quotes)
		if m.Kind != MatchExactComposite {
			t.Fatalf("expected composite match, got %s", m.Kind)
		}
		if m.Price != 185 {
			t.Errorf("expected price 185, got %f", m.Price)
		}
	})

	t.Run("bare_symbol_when_no_composite", func(t *testing.T) {
		quotes := []Quote{
			{Symbol: "AAPL", Price: 180},
		}

		m := MatchPrice("AAPL", "USD", quotes)
		if m.Kind != MatchExactBare {
			t.Fatalf("expected bare match, got %s", m.Kind)
		}
		if m.Price != 180 {
			t.Errorf("expected price 180, got %f", m.Price)
		}
	})

	t.Run("fuzzy_substring_as_last_resort", func(t *testing.T) {
		quotes := []Quote{
			{Symbol: "AAPL.US", Price: 182},
		}

		m := MatchPrice("AAPL", "USD", quotes)
		if m.Kind != MatchFuzzy {
			t.Fatalf("expected fuzzy match, got %s", m.Kind)
		}
		if m.Key != "AAPL.US" {
			t.Errorf("expected key AAPL.US, got %s", m.Key)
		}
	})

	t.Run("fuzzy_first_found_wins", func(t *testing.T) {
		quotes := []Quote{
			{Symbol: "XAAPLX", Price: 1},
			{Symbol: "AAPL.US", Price: 2},
		}

		m := MatchPrice("AAPL", "USD", quotes)
		if m.Kind != MatchFuzzy || m.Key != "XAAPLX" {
			t.Errorf("expected first fuzzy key XAAPLX, got %s (%s)", m.Key, m.Kind)
		}
	})

	t.Run("no_match_returns_none", func(t *testing.T) {
		quotes := []Quote{
			{Symbol: "MSFT", Price: 400},
		}

		m := MatchPrice("AAPL", "USD", quotes)
		if m.Kind != MatchNone {
			t.Errorf("expected no match, got %s", m.Kind)
		}
	})

	t.Run("zero_priced_quotes_are_skipped", func(t *testing.T) {
		quotes := []Quote{
			{Symbol: "AAPL (USD)", Price: 0},
			{Symbol: "AAPL", Price: 180},
		}

		m := MatchPrice("AAPL", "USD", quotes)
		if m.Kind != MatchExactBare {
			t.Errorf("expected bare match past the zero-priced composite, got %s", m.Kind)
		}
	})

	t.Run("currency_disambiguates_composites", func(t *testing.T) {
		quotes := []Quote{
			{Symbol: "AAPL (HKD)", Price: 1400},
			{Symbol: "AAPL (USD)", Price: 185},
		}

		m := MatchPrice("AAPL", "HKD", quotes)
		if m.Price != 1400 {
			t.Errorf("expected HKD composite price 1400, got %f", m.Price)
		}
	})

	t.Run("empty_inputs", func(t *testing.T) {
		if m := MatchPrice("", "USD", []Quote{{Symbol: "A", Price: 1}}); m.Kind != MatchNone {
			t.Errorf("expected no match for empty symbol, got %s", m.Kind)
		}
		if m := MatchPrice("AAPL", "USD", nil); m.Kind != MatchNone {
			t.Errorf("expected no match for empty quotes, got %s", m.Kind)
		}
	})
}
