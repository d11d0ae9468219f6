package types

import (
	"math"
	"slices"
	"time"
)

// RateSet is the reconciled snapshot of market rates at a point in time.
// Every non-nil value is finite and positive. A RateSet is never
// mutated after construction
type RateSet struct {
	FetchedAt time.Time

	USDVESOfficial *float64
	USDVESParallel *float64
	EURUSD         *float64
	EURVESOfficial *float64
	USDTCOPBuy     *float64
	USDTVESSell    *float64
	USDCOP         *float64

	Sources  []string
	Warnings []string
}

// NewRateSet builds a rate set from the given values.
// Non-finite and non-positive values are dropped
func NewRateSet(
	fetchedAt time.Time,
	values map[Field]float64,
	sources []string,
	warnings []string,
) *RateSet {
	rs := &RateSet{
		FetchedAt: fetchedAt,
		Sources:   slices.Clone(sources),
		Warnings:  slices.Clone(warnings),
	}

	if rs.Sources == nil {
		rs.Sources = []string{}
	}

	if rs.Warnings == nil {
		rs.Warnings = []string{}
	}

	for field, value := range values {
		if ptr := rs.slot(field); ptr != nil {
			*ptr = Positive(value)
		}
	}

	return rs
}

// Value returns the value of the field, if present
func (r *RateSet) Value(f Field) (float64, bool) {
	if r == nil {
		return 0, false
	}

	ptr := r.slot(f)
	if ptr == nil || *ptr == nil {
		return 0, false
	}

	return **ptr, true
}

// With returns a copy of the rate set with the field overridden.
// Overrides are recorded as a source
func (r *RateSet) With(f Field, value float64) *RateSet {
	values := r.Values()
	values[f] = value

	var (
		fetchedAt time.Time
		sources   []string
		warnings  []string
	)

	if r != nil {
		fetchedAt = r.FetchedAt
		sources = r.Sources
		warnings = r.Warnings
	}

	out := NewRateSet(fetchedAt, values, sources, warnings)

	if _, ok := out.Value(f); ok {
		out.Sources = append(out.Sources, f.Label()+" (manual)")
	}

	return out
}

// Values returns the present values, keyed by field
func (r *RateSet) Values() map[Field]float64 {
	out := make(map[Field]float64, len(Fields))

	for _, f := range Fields {
		if v, ok := r.Value(f); ok {
			out[f] = v
		}
	}

	return out
}

func (r *RateSet) slot(f Field) **float64 {
	switch f {
	case FieldUSDVESOfficial:
		return &r.USDVESOfficial
	case FieldUSDVESParallel:
		return &r.USDVESParallel
	case FieldEURUSD:
		return &r.EURUSD
	case FieldEURVESOfficial:
		return &r.EURVESOfficial
	case FieldUSDTCOPBuy:
		return &r.USDTCOPBuy
	case FieldUSDTVESSell:
		return &r.USDTVESSell
	case FieldUSDCOP:
		return &r.USDCOP
	default:
		return nil
	}
}

// Positive returns a pointer to v if it is finite and positive, nil otherwise
func Positive(v float64) *float64 {
	if !IsPositive(v) {
		return nil
	}

	return &v
}

// IsPositive checks if the value is a finite, strictly positive number
func IsPositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
