package server

import (
	"time"

	"github.com/sig-0/remesas/quote"
	"github.com/sig-0/remesas/storage/types"
)

// RatesResponse is the reconciled rate snapshot
type RatesResponse struct {
	Ts time.Time `json:"ts"`

	USDVESBCV      *float64 `json:"usdVesBcv"`
	USDVESParallel *float64 `json:"usdVesParallel"`
	EURVESBCV      *float64 `json:"eurVesBcv"`
	EURUSD         *float64 `json:"eurUsd"`
	USDTCOPBuy     *float64 `json:"usdtCopBuy"`
	USDTVESSell    *float64 `json:"usdtVesSell"`
	USDCOP         *float64 `json:"usdCop"`

	Sources  []string `json:"sources"`
	Warnings []string `json:"warnings"`

	OK bool `json:"ok"`
}

func newRatesResponse(rs *types.RateSet) *RatesResponse {
	return &RatesResponse{
		OK:             true,
		Ts:             rs.FetchedAt,
		USDVESBCV:      rs.USDVESOfficial,
		USDVESParallel: rs.USDVESParallel,
		EURVESBCV:      rs.EURVESOfficial,
		EURUSD:         rs.EURUSD,
		USDTCOPBuy:     rs.USDTCOPBuy,
		USDTVESSell:    rs.USDTVESSell,
		USDCOP:         rs.USDCOP,
		Sources:        rs.Sources,
		Warnings:       rs.Warnings,
	}
}

// QuoteRow is a single inverse target outcome
type QuoteRow struct {
	Quote  *quote.Quote `json:"quote,omitempty"`
	Target quote.Target `json:"target"`
	Error  string       `json:"error,omitempty"`
	Amount float64      `json:"amount"`
}

// QuoteResponse is the computed quote, along with the inputs it used
type QuoteResponse struct {
	Quote       *quote.Quote        `json:"quote,omitempty"`
	Mode        string              `json:"mode"`
	Summary     string              `json:"summary"`
	Fee         quote.Fee           `json:"fee"`
	Adjustments types.AdjustmentSet `json:"adjustments"`
	Rows        []QuoteRow          `json:"rows,omitempty"`
	Sheet       []quote.SheetRow    `json:"sheet,omitempty"`
	Warnings    []string            `json:"warnings"`
}

// SettingsResponse is the caller's adjustment settings
type SettingsResponse struct {
	Adjustments types.AdjustmentSet `json:"adjustments"`
	Defaults    types.AdjustmentSet `json:"defaults"`
}

// SettingsRequest is the adjustment update payload.
// Absent fields are set to 0
type SettingsRequest struct {
	BCVPct      *float64 `json:"bcvPct"`
	ParallelPct *float64 `json:"parallelPct"`
	USDTCOPPct  *float64 `json:"usdtCopPct"`
	USDTVESPct  *float64 `json:"usdtVesPct"`
}

func (r SettingsRequest) adjustments() types.AdjustmentSet {
	value := func(v *float64) float64 {
		if v == nil {
			return 0
		}

		return *v
	}

	return types.AdjustmentSet{
		BCVPct:      value(r.BCVPct),
		ParallelPct: value(r.ParallelPct),
		USDTCOPPct:  value(r.USDTCOPPct),
		USDTVESPct:  value(r.USDTVESPct),
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}
