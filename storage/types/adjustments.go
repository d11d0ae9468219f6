package types

import "math"

const (
	// MinAdjustmentPct is the lowest accepted adjustment percentage
	MinAdjustmentPct = -50.0

	// MaxAdjustmentPct is the highest accepted adjustment percentage
	MaxAdjustmentPct = 50.0
)

// AdjustmentSet holds the user-configurable percentage corrections,
// one per volatile rate category
type AdjustmentSet struct {
	BCVPct      float64 `json:"bcvPct"`      // official USD/VES and EUR/VES
	ParallelPct float64 `json:"parallelPct"` // parallel USD/VES
	USDTCOPPct  float64 `json:"usdtCopPct"`  // buying USDT with COP
	USDTVESPct  float64 `json:"usdtVesPct"`  // selling USDT for VES
}

// DefaultAdjustments returns the adjustments new users start with
func DefaultAdjustments() AdjustmentSet {
	return AdjustmentSet{
		BCVPct:      -1.5,
		ParallelPct: -2.0,
		USDTCOPPct:  1.0,
		USDTVESPct:  -2.5,
	}
}

// Clamp returns a copy with every percentage clamped to
// [MinAdjustmentPct, MaxAdjustmentPct]. NaN becomes 0
func (a AdjustmentSet) Clamp() AdjustmentSet {
	return AdjustmentSet{
		BCVPct:      clampPct(a.BCVPct),
		ParallelPct: clampPct(a.ParallelPct),
		USDTCOPPct:  clampPct(a.USDTCOPPct),
		USDTVESPct:  clampPct(a.USDTVESPct),
	}
}

// PctFor returns the adjustment percentage that applies to the field.
// Fields without a category (cross rates) are never adjusted
func (a AdjustmentSet) PctFor(f Field) float64 {
	switch f {
	case FieldUSDVESOfficial, FieldEURVESOfficial:
		return a.BCVPct
	case FieldUSDVESParallel:
		return a.ParallelPct
	case FieldUSDTCOPBuy:
		return a.USDTCOPPct
	case FieldUSDTVESSell:
		return a.USDTVESPct
	default:
		return 0
	}
}

func clampPct(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}

	return math.Max(MinAdjustmentPct, math.Min(MaxAdjustmentPct, v))
}
