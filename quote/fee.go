package quote

import "fmt"

// FeeKind is the fee model
type FeeKind string

const (
	// FeePercentage takes a fraction of the purchased USDT
	FeePercentage FeeKind = "percentage"

	// FeeFixed takes a constant USDT amount
	FeeFixed FeeKind = "fixed"
)

// Fee is the operator's fee model.
// Value is a fraction for FeePercentage (0.1 is 10%), USDT for FeeFixed
type Fee struct {
	Kind  FeeKind `json:"kind"`
	Value float64 `json:"value"`
}

// PercentageFee creates a percentage fee from a fraction
func PercentageFee(fraction float64) Fee {
	return Fee{Kind: FeePercentage, Value: fraction}
}

// FixedFee creates a fixed fee in USDT
func FixedFee(usdt float64) Fee {
	return Fee{Kind: FeeFixed, Value: usdt}
}

// On returns the fee taken on the given base USDT amount
func (f Fee) On(baseUSDT float64) float64 {
	if f.Kind == FeePercentage {
		return baseUSDT * f.Value
	}

	return f.Value
}

func (f Fee) String() string {
	if f.Kind == FeePercentage {
		return fmt.Sprintf("%g%%", f.Value*100)
	}

	return fmt.Sprintf("%g USDT", f.Value)
}
