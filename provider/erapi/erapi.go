// Package erapi provides the USD/COP and EUR/USD cross rates from the
// open ER-API endpoint (https://open.er-api.com).
// The cross rates only change daily, the provider TTL is 1 hour
package erapi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sig-0/remesas/provider/extract"
	"github.com/sig-0/remesas/provider/httputil"
	"github.com/sig-0/remesas/storage/types"
)

const LatestUSDURL = "https://open.er-api.com/v6/latest/USD"

var Source types.Source = "ER-API"

var errUnsuccessful = errors.New("unsuccessful ER-API response")

// latestResponse is the response from the ER-API latest endpoint
type latestResponse struct {
	Result string         `json:"result"`
	Rates  map[string]any `json:"rates"`
}

// Provider fetches the USD-based forex table
type Provider struct {
	client *httputil.Client
	url    string
}

// NewProvider creates a new instance of the ER-API provider
func NewProvider(url string, timeout time.Duration) *Provider {
	return &Provider{
		client: httputil.NewClient(timeout),
		url:    url,
	}
}

func (p *Provider) Name() string {
	return "ER-API"
}

func (p *Provider) TTL() time.Duration {
	return time.Hour
}

func (p *Provider) Fetch(ctx context.Context, _ types.FetchParams) ([]*types.ExchangeRate, error) {
	var resp latestResponse

	if err := p.client.GetJSON(ctx, p.url, &resp); err != nil {
		return nil, fmt.Errorf("unable to fetch ER-API rates: %w", err)
	}

	if resp.Result != "" && resp.Result != "success" {
		return nil, fmt.Errorf("%w: %s", errUnsuccessful, resp.Result)
	}

	var (
		fetchTime = time.Now().UTC()
		rates     = make([]*types.ExchangeRate, 0, 2)
	)

	if usdCop, ok := extract.Number(resp.Rates[types.CurrencyCOP.String()]); ok && usdCop > 0 {
		rates = append(rates, &types.ExchangeRate{
			FetchedAt: fetchTime,
			Field:     types.FieldUSDCOP,
			Base:      types.CurrencyUSD,
			Target:    types.CurrencyCOP,
			RateType:  types.RateTypeMID,
			Source:    Source,
			Rate:      usdCop,
		})
	}

	// The table is USD based, EUR/USD is the inverse of USD/EUR
	if usdEur, ok := extract.Number(resp.Rates[types.CurrencyEUR.String()]); ok && usdEur > 0 {
		rates = append(rates, &types.ExchangeRate{
			FetchedAt: fetchTime,
			Field:     types.FieldEURUSD,
			Base:      types.CurrencyEUR,
			Target:    types.CurrencyUSD,
			RateType:  types.RateTypeMID,
			Source:    Source,
			Rate:      1 / usdEur,
		})
	}

	return rates, nil
}
