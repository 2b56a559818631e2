package rateprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	portssvc "github.com/facturio/fiscal_engine_app/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// HTTPProvider fetches daily rates from an ECB-shaped JSON feed:
// GET <baseURL>/latest?base=EUR -> {"base":"EUR","rates":{"USD":1.08,...}}.
type HTTPProvider struct {
	baseURL string
	name    string
	client  *http.Client
}

// NewHTTPProvider creates a provider against the given feed URL.
func NewHTTPProvider(baseURL, name string) *HTTPProvider {
	return &HTTPProvider{
		baseURL: baseURL,
		name:    name,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

var _ portssvc.RateProvider = (*HTTPProvider)(nil)

// Name identifies the provider in stored rate rows.
func (p *HTTPProvider) Name() string {
	return p.name
}

type latestRatesPayload struct {
	Base  string                     `json:"base"`
	Rates map[string]json.RawMessage `json:"rates"`
}

// LatestRates returns today's quotes from base to every currency the feed
// covers. Non-numeric values are skipped rather than failing the whole fetch.
func (p *HTTPProvider) LatestRates(ctx context.Context, base string) (map[string]decimal.Decimal, error) {
	endpoint := fmt.Sprintf("%s/latest?base=%s", p.baseURL, url.QueryEscape(base))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build rate provider request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rate provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate provider returned status %d", resp.StatusCode)
	}

	var payload latestRatesPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode rate provider response: %w", err)
	}

	rates := make(map[string]decimal.Decimal, len(payload.Rates))
	for code, raw := range payload.Rates {
		var value decimal.Decimal
		if err := json.Unmarshal(raw, &value); err != nil {
			continue
		}
		rates[code] = value
	}
	return rates, nil
}
