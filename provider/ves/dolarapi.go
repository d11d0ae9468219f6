package ves

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sig-0/remesas/provider/extract"
	"github.com/sig-0/remesas/provider/httputil"
	"github.com/sig-0/remesas/storage/types"
)

const (
	DolarAPIOfficialURL = "https://ve.dolarapi.com/v1/dolares/oficial"
	DolarAPIParallelURL = "https://ve.dolarapi.com/v1/dolares/paralelo"
)

var DolarAPISource types.Source = "DolarAPI"

var errNoQuote = errors.New("no quote in response")

// dolarAPIKeys is the lookup order for the quote value
var dolarAPIKeys = []string{"promedio", "venta", "compra", "rate"}

// DolarAPIProvider fetches a single USD/VES quote from DolarAPI
type DolarAPIProvider struct {
	client *httputil.Client
	name   string
	url    string
	field  types.Field
}

// NewDolarAPIOfficialProvider creates the DolarAPI official (BCV) USD/VES provider
func NewDolarAPIOfficialProvider(url string, timeout time.Duration) *DolarAPIProvider {
	return &DolarAPIProvider{
		client: httputil.NewClient(timeout),
		name:   "DolarAPI official",
		url:    url,
		field:  types.FieldUSDVESOfficial,
	}
}

// NewDolarAPIParallelProvider creates the DolarAPI parallel market USD/VES provider
func NewDolarAPIParallelProvider(url string, timeout time.Duration) *DolarAPIProvider {
	return &DolarAPIProvider{
		client: httputil.NewClient(timeout),
		name:   "DolarAPI parallel",
		url:    url,
		field:  types.FieldUSDVESParallel,
	}
}

func (p *DolarAPIProvider) Name() string {
	return p.name
}

// TTL is short, the parallel quote moves through the day
func (p *DolarAPIProvider) TTL() time.Duration {
	return time.Minute * 5
}

func (p *DolarAPIProvider) Fetch(ctx context.Context, _ types.FetchParams) ([]*types.ExchangeRate, error) {
	var payload map[string]any

	if err := p.client.GetJSON(ctx, p.url, &payload); err != nil {
		return nil, fmt.Errorf("unable to fetch DolarAPI quote: %w", err)
	}

	rate, ok := dolarAPIQuote(payload)
	if !ok {
		return nil, errNoQuote
	}

	rateType := types.RateTypeMID
	if p.field == types.FieldUSDVESParallel {
		rateType = types.RateTypeSELL
	}

	return []*types.ExchangeRate{
		{
			FetchedAt: time.Now().UTC(),
			Field:     p.field,
			Base:      types.CurrencyUSD,
			Target:    types.CurrencyVES,
			RateType:  rateType,
			Source:    DolarAPISource,
			Rate:      rate,
		},
	}, nil
}

// dolarAPIQuote picks the quote value, at the top level or nested under "data"
func dolarAPIQuote(payload map[string]any) (float64, bool) {
	if v, ok := extract.FirstNumber(payload, dolarAPIKeys...); ok {
		return v, true
	}

	nested, _ := payload["data"].(map[string]any)

	return extract.FirstNumber(nested, dolarAPIKeys...)
}
