// Package quote implements the COP -> USDT -> VES conversion chain.
// Every function in this package is pure: rates, adjustments and the
// fee model are explicit inputs and nothing is cached between calls
package quote

import (
	"errors"
	"math"

	"github.com/sig-0/remesas/storage/types"
)

var (
	// ErrInsufficientData is matched when a required amount or rate is missing
	ErrInsufficientData = errors.New("insufficient data")

	// ErrUnsolvableInverse is matched when the fee makes the inverse degenerate
	ErrUnsolvableInverse = errors.New("unsolvable inverse")

	// ErrOutOfRange is matched when the inputs overflow the computed figures
	ErrOutOfRange = errors.New("out of range")
)

// Unavailable is returned when no quote can be computed for the inputs
type Unavailable struct {
	Err    error
	Reason string
}

func (u *Unavailable) Error() string {
	return u.Reason
}

func (u *Unavailable) Unwrap() error {
	return u.Err
}

// checkFinite rejects quotes with an overflowing figure
func checkFinite(q *Quote) (*Quote, error) {
	figures := []float64{
		q.InputCOP,
		q.BaseUSDT,
		q.FeeUSDT,
		q.NetUSDT,
		q.FeeInCOP,
		q.RequiredUSD,
	}

	for _, p := range []*float64{q.DeliveredVES, q.COPPerVES, q.TargetAmount} {
		if p != nil {
			figures = append(figures, *p)
		}
	}

	for _, v := range figures {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &Unavailable{
				Reason: "amounts or fee out of range",
				Err:    ErrOutOfRange,
			}
		}
	}

	return q, nil
}

func insufficient(reason string) *Unavailable {
	return &Unavailable{
		Reason: reason,
		Err:    ErrInsufficientData,
	}
}

// Method is the VES conversion path a quote used
type Method string

const (
	MethodEURDerived Method = "EUR-derived"
	MethodP2P        Method = "market/P2P manual"
)

// Quote is the computed conversion chain
type Quote struct {
	DeliveredVES *float64 `json:"deliveredVes"`
	COPPerVES    *float64 `json:"copPerVes"`
	TargetAmount *float64 `json:"targetAmount,omitempty"`

	Method Method `json:"method"`
	Target Target `json:"target,omitempty"`

	InputCOP    float64 `json:"inputCop"`
	BaseUSDT    float64 `json:"baseUsdt"`
	FeeUSDT     float64 `json:"feeUsdt"`
	NetUSDT     float64 `json:"netUsdt"`
	FeeInCOP    float64 `json:"feeInCop"`
	RequiredUSD float64 `json:"requiredUsd"`
}

// Adjusted returns the field value with its adjustment percentage applied.
// Fields without a category (cross rates) are returned as-is
func Adjusted(rates *types.RateSet, adj types.AdjustmentSet, f types.Field) (float64, bool) {
	v, ok := rates.Value(f)
	if !ok {
		return 0, false
	}

	adjusted := v * (1 + adj.Clamp().PctFor(f)/100)
	if !types.IsPositive(adjusted) {
		return 0, false
	}

	return adjusted, true
}

// vesRates holds the candidate VES-per-USDT conversion rates
type vesRates struct {
	eurDerived, p2p       float64
	hasEURDerived, hasP2P bool
}

// newVESRates resolves the adjusted candidate VES rates
func newVESRates(rates *types.RateSet, adj types.AdjustmentSet) vesRates {
	var out vesRates

	eurVes, okVes := Adjusted(rates, adj, types.FieldEURVESOfficial)
	eurUsd, okUsd := Adjusted(rates, adj, types.FieldEURUSD)

	if okVes && okUsd {
		if derived := eurVes / eurUsd; types.IsPositive(derived) {
			out.eurDerived = derived
			out.hasEURDerived = true
		}
	}

	out.p2p, out.hasP2P = Adjusted(rates, adj, types.FieldUSDTVESSell)

	return out
}

// pick returns the first available rate in the given preference order
func (v vesRates) pick(order ...Method) (float64, Method, bool) {
	for _, m := range order {
		switch m {
		case MethodEURDerived:
			if v.hasEURDerived {
				return v.eurDerived, m, true
			}
		case MethodP2P:
			if v.hasP2P {
				return v.p2p, m, true
			}
		}
	}

	return 0, "", false
}

// ptr returns a pointer to v if it is finite and positive
func ptr(v float64) *float64 {
	return types.Positive(v)
}
