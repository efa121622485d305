// Package provider implements the HTTP client for the external market data
// service. One best-effort request is issued per refresh cycle; any failure
// is returned as an error for the caller to absorb, never a partial result.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"treasury/internal/market"
)

// Request is the set of symbols to quote, each tagged with its currency to
// disambiguate identically named symbols across exchanges.
type Request struct {
	Symbols []SymbolRef
}

// SymbolRef is one symbol/currency pair in a quote request.
type SymbolRef struct {
	Symbol   string
	Currency string
}

// Result is a parsed provider response: a rate-table patch plus the quoted
// prices in response order.
type Result struct {
	Rates  map[string]float64
	Quotes []market.Quote
}

// quoteResponse mirrors the provider's wire format. Prices arrive as an
// ordered array, not a map, so first-found matching stays deterministic.
type quoteResponse struct {
	Rates  map[string]float64 `json:"rates"`
	Prices []struct {
		Symbol string  `json:"symbol"`
		Price  float64 `json:"price"`
	} `json:"prices"`
}

// Client talks to the market data provider.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a market data client. The http.Client carries the
// request timeout.
func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// Payload renders the request as the comma-joined "SYMBOL (CURRENCY)" list
// the provider expects.
func (r Request) Payload() string {
	keys := make([]string, 0, len(r.Symbols))
	for _, s := range r.Symbols {
		keys = append(keys, market.CompositeKey(s.Symbol, s.Currency))
	}
	return strings.Join(keys, ",")
}

// FetchQuotes issues one quote request and parses the response. There is no
// retry: an unreachable provider, a non-OK status, or a malformed body all
// come back as errors with nothing partially applied.
func (c *Client) FetchQuotes(ctx context.Context, quoteReq Request) (*Result, error) {
	body := struct {
		Holdings string `json:"holdings"`
	}{Holdings: quoteReq.Payload()}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling quote request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(string(jsonBody)))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching quotes: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching quotes: unexpected status %d", resp.StatusCode)
	}

	var parsed quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding quote response: %w", err)
	}

	result := &Result{Rates: parsed.Rates}
	if result.Rates == nil {
		result.Rates = map[string]float64{}
	}
	for _, p := range parsed.Prices {
		result.Quotes = append(result.Quotes, market.Quote{Symbol: p.Symbol, Price: p.Price})
	}
	return result, nil
}
