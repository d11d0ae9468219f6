package ves

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/sig-0/remesas/provider/httputil"
	"github.com/sig-0/remesas/storage/types"
)

const BCVURL = "https://www.bcv.org.ve/"

var errInvalidRate = errors.New("invalid rate")

var BCVSource types.Source = "BCV"

// bcvSections maps the BCV website currency section IDs to rate fields
var bcvSections = []struct {
	id    string
	base  types.Currency
	field types.Field
}{
	{id: "dolar", base: types.CurrencyUSD, field: types.FieldUSDVESOfficial},
	{id: "euro", base: types.CurrencyEUR, field: types.FieldEURVESOfficial},
}

// BCVProvider is the BCV website scraping provider
type BCVProvider struct {
	client *httputil.Client
	url    string
}

// NewBCVProvider creates a new instance of the BCV website provider
func NewBCVProvider(url string, timeout time.Duration) *BCVProvider {
	return &BCVProvider{
		client: httputil.NewClient(timeout, httputil.WithInsecureTLS()),
		url:    url,
	}
}

func (p *BCVProvider) Name() string {
	return "BCV"
}

// TTL is long, the official rate is published once a day
func (p *BCVProvider) TTL() time.Duration {
	return time.Hour
}

func (p *BCVProvider) Fetch(ctx context.Context, _ types.FetchParams) ([]*types.ExchangeRate, error) {
	body, err := p.client.Get(ctx, p.url)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch BCV website: %w", err)
	}

	// Construct document for parsing
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("unable to construct query doc: %w", err)
	}

	var (
		fetchTime = time.Now().UTC()
		rates     = make([]*types.ExchangeRate, 0, len(bcvSections))
	)

	for _, section := range bcvSections {
		rate, err := sectionRate(doc, section.id)
		if err != nil {
			// Partial pages still yield the sections that parsed
			continue
		}

		rates = append(rates, &types.ExchangeRate{
			FetchedAt: fetchTime,
			Field:     section.field,
			Base:      section.base,
			Target:    types.CurrencyVES,
			RateType:  types.RateTypeMID,
			Source:    BCVSource,
			Rate:      rate,
		})
	}

	return rates, nil
}

// sectionRate extracts the rate of the currency section with the given ID
func sectionRate(doc *goquery.Document, id string) (float64, error) {
	sel := doc.Find("#" + id)
	if sel.Length() == 0 {
		return 0, fmt.Errorf("missing element #%s", id)
	}

	txt := sel.Find(".col-sm-6.col-xs-6.centrado").First().Text()
	if strings.TrimSpace(txt) == "" {
		txt = sel.Find(".centrado").First().Text()
	}

	v, err := parseBCVNumber(txt)
	if err != nil {
		return 0, fmt.Errorf("unable to parse rate value for %s: %w", id, err)
	}

	return math.Round(v*1e4) / 1e4, nil
}

// parseBCVNumber parses the rate number from the BCV website
func parseBCVNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errInvalidRate
	}

	// BCV uses comma as decimal separator and dot for thousands:
	// "1.234,56" -> "1234.56"
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unable to parse rate %q: %w", s, err)
	}

	return f, nil
}
