package market

import "strings"

// Quote is a single (symbol, price) pair as returned by the provider.
// Quotes keep response order: when several keys could match a holding,
// the first one returned wins.
type Quote struct {
	Symbol string
	Price  float64
}

// MatchKind tags which tier of the lookup cascade produced a match.
type MatchKind int

const (
	// MatchNone means no provider key matched; the holding keeps its price.
	MatchNone MatchKind = iota
	// MatchExactComposite is an exact match on the "SYMBOL (CURRENCY)" key.
	MatchExactComposite
	// MatchExactBare is an exact match on the bare symbol.
	MatchExactBare
	// MatchFuzzy is the first provider key containing the symbol as a substring.
	MatchFuzzy
)

func (k MatchKind) String() string {
	switch k {
	case MatchExactComposite:
		return "exact_composite"
	case MatchExactBare:
		return "exact_bare"
	case MatchFuzzy:
		return "fuzzy"
	default:
		return "none"
	}
}

// Match is the result of reconciling one holding against a provider response.
type Match struct {
	Kind  MatchKind
	Key   string
	Price float64
}

// CompositeKey builds the "SYMBOL (CURRENCY)" key used to disambiguate
// identically named symbols across currencies.
func CompositeKey(symbol, currency string) string {
	return symbol + " (" + strings.ToUpper(currency) + ")"
}

// MatchPrice reconciles a holding's symbol against the quotes returned by
// the provider. Tiers are tried in order: exact composite key, exact bare
// symbol, then the first quote whose key contains the symbol as a
// substring. The first hit wins; MatchNone means the caller should retain
// the previous price.
//
// The fuzzy tier is deliberately first-found: with keys like "AAPL" and
// "AAPL.US" both present the earlier one in the response wins.
func MatchPrice(symbol, currency string, quotes []Quote) Match {
	if symbol == "" || len(quotes) == 0 {
		return Match{Kind: MatchNone}
	}

	composite := CompositeKey(symbol, currency)
	for _, q := range quotes {
		if q.Symbol == composite && q.Price > 0 {
			return Match{Kind: MatchExactComposite, Key: q.Symbol, Price: q.Price}
		}
	}

	for _, q := range quotes {
		if q.Symbol == symbol && q.Price > 0 {
			return Match{Kind: MatchExactBare, Key: q.Symbol, Price: q.Price}
		}
	}

	for _, q := range quotes {
		if strings.Contains(q.Symbol, symbol) && q.Price > 0 {
			return Match{Kind: MatchFuzzy, Key: q.Symbol, Price: q.Price}
		}
	}

	return Match{Kind: MatchNone}
}
