package ves

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sig-0/remesas/provider/extract"
	"github.com/sig-0/remesas/provider/httputil"
	"github.com/sig-0/remesas/storage/types"
)

const BCVAPIURL = "https://bcv-api.rafnixg.dev/rates/"

var BCVAPISource types.Source = "BCV API"

// BCVAPIProvider fetches the official BCV rates from the community JSON mirror
type BCVAPIProvider struct {
	client *httputil.Client
	url    string
}

// NewBCVAPIProvider creates a new instance of the BCV JSON API provider
func NewBCVAPIProvider(url string, timeout time.Duration) *BCVAPIProvider {
	return &BCVAPIProvider{
		client: httputil.NewClient(timeout),
		url:    url,
	}
}

func (p *BCVAPIProvider) Name() string {
	return "BCV API"
}

func (p *BCVAPIProvider) TTL() time.Duration {
	return time.Minute * 5
}

func (p *BCVAPIProvider) Fetch(ctx context.Context, _ types.FetchParams) ([]*types.ExchangeRate, error) {
	var entries []map[string]any

	if err := p.client.GetJSON(ctx, p.url, &entries); err != nil {
		return nil, fmt.Errorf("unable to fetch BCV API rates: %w", err)
	}

	var (
		fetchTime = time.Now().UTC()
		rates     = make([]*types.ExchangeRate, 0, 2)
	)

	for _, entry := range entries {
		symbol, _ := entry["symbol"].(string)
		base := types.Currency(strings.ToUpper(strings.TrimSpace(symbol)))

		var field types.Field

		switch base {
		case types.CurrencyEUR:
			field = types.FieldEURVESOfficial
		case types.CurrencyUSD:
			field = types.FieldUSDVESOfficial
		default:
			continue
		}

		value, ok := extract.FirstNumber(entry, "rate", "value", "price")
		if !ok {
			continue
		}

		rates = append(rates, &types.ExchangeRate{
			FetchedAt: fetchTime,
			Field:     field,
			Base:      base,
			Target:    types.CurrencyVES,
			RateType:  types.RateTypeMID,
			Source:    BCVAPISource,
			Rate:      value,
		})
	}

	return rates, nil
}
