// Package binance provides the USDT market rates from the Binance P2P board.
//
// Source: "Binance P2P"
// API: https://p2p.binance.com/bapi/c2c/v2/friendly/c2c/adv/search
// TTL: 30 seconds
//
// The rate is the median price of the first page of listings (10 rows),
// in the board's natural ranking. When a trade amount is known, it is
// sent as transAmount so that only listings accepting it are ranked
//
//nolint:tagliatelle // Binance API uses camel case
package binance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/sig-0/remesas/provider/extract"
	"github.com/sig-0/remesas/provider/httputil"
	"github.com/sig-0/remesas/storage/types"
)

const P2PURL = "https://p2p.binance.com/bapi/c2c/v2/friendly/c2c/adv/search"

// listingDepth is the number of listings the median is taken over
const listingDepth = 10

var Source types.Source = "Binance P2P"

var errNoListings = errors.New("no valid listings")

// searchRequest is the request body for the Binance P2P API
type searchRequest struct {
	PublisherType *string        `json:"publisherType"`
	Asset         types.Currency `json:"asset"`
	Fiat          types.Currency `json:"fiat"`
	TradeType     types.RateType `json:"tradeType"`
	TransAmount   string         `json:"transAmount,omitempty"`
	PayTypes      []string       `json:"payTypes"`
	Page          int            `json:"page"`
	Rows          int            `json:"rows"`
}

// searchResponse is the response from the Binance P2P API
type searchResponse struct {
	Data []struct {
		Adv struct {
			Price any `json:"price"`
		} `json:"adv"`
	} `json:"data"`
}

// Provider fetches a single USDT/fiat market rate from Binance P2P
type Provider struct {
	client    *httputil.Client
	name      string
	url       string
	fiat      types.Currency
	tradeType types.RateType
	field     types.Field
}

// NewCOPBuyProvider creates the provider for the COP cost of buying 1 USDT
func NewCOPBuyProvider(url string, timeout time.Duration) *Provider {
	return &Provider{
		client:    httputil.NewClient(timeout),
		name:      "Binance P2P COP",
		url:       url,
		fiat:      types.CurrencyCOP,
		tradeType: types.RateTypeBUY,
		field:     types.FieldUSDTCOPBuy,
	}
}

// NewVESSellProvider creates the provider for the VES received for selling 1 USDT
func NewVESSellProvider(url string, timeout time.Duration) *Provider {
	return &Provider{
		client:    httputil.NewClient(timeout),
		name:      "Binance P2P VES",
		url:       url,
		fiat:      types.CurrencyVES,
		tradeType: types.RateTypeSELL,
		field:     types.FieldUSDTVESSell,
	}
}

func (p *Provider) Name() string {
	return p.name
}

// TTL is short, P2P listings move by the minute
func (p *Provider) TTL() time.Duration {
	return time.Second * 30
}

// CacheKey buckets the trade amount, since listings depend on it
func (p *Provider) CacheKey(params types.FetchParams) string {
	return strconv.FormatFloat(bucketAmount(p.amount(params)), 'f', -1, 64)
}

func (p *Provider) Fetch(ctx context.Context, params types.FetchParams) ([]*types.ExchangeRate, error) {
	req := searchRequest{
		Asset:     types.CurrencyUSDT,
		Fiat:      p.fiat,
		TradeType: p.tradeType,
		PayTypes:  []string{},
		Page:      1,
		Rows:      listingDepth,
	}

	if amount := bucketAmount(p.amount(params)); amount > 0 {
		req.TransAmount = strconv.FormatFloat(amount, 'f', -1, 64)
	}

	var resp searchResponse

	if err := p.client.PostJSON(ctx, p.url, req, &resp); err != nil {
		return nil, fmt.Errorf("unable to fetch %s %s listings: %w", p.fiat, p.tradeType, err)
	}

	prices := make([]float64, 0, len(resp.Data))

	for _, row := range resp.Data {
		price, ok := extract.Number(row.Adv.Price)
		if !ok || price <= 0 {
			continue
		}

		prices = append(prices, price)
	}

	rate, ok := extract.MedianOfFirst(prices, listingDepth)
	if !ok {
		return nil, fmt.Errorf("%w for %s %s", errNoListings, p.fiat, p.tradeType)
	}

	return []*types.ExchangeRate{
		{
			FetchedAt: time.Now().UTC(),
			Field:     p.field,
			Base:      types.CurrencyUSDT,
			Target:    p.fiat,
			RateType:  p.tradeType,
			Source:    Source,
			Rate:      rate,
		},
	}, nil
}

// amount returns the trade amount relevant to the provider's fiat
func (p *Provider) amount(params types.FetchParams) float64 {
	if p.fiat == types.CurrencyVES {
		return params.VESAmount
	}

	return params.COPAmount
}

// bucketAmount rounds the amount to two significant digits.
// Non-positive and non-finite amounts map to 0 (no bias)
func bucketAmount(v float64) float64 {
	if !types.IsPositive(v) {
		return 0
	}

	magnitude := math.Pow(10, math.Floor(math.Log10(v))-1)

	return math.Round(v/magnitude) * magnitude
}
