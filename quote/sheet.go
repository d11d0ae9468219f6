package quote

import "github.com/sig-0/remesas/storage/types"

// DefaultSheetAmounts is the COP ladder printed on the rate poster
var DefaultSheetAmounts = []float64{
	20_000,
	50_000,
	100_000,
	200_000,
	350_000,
	750_000,
	1_000_000,
}

// SheetRow is a single line of the rate poster
type SheetRow struct {
	Quote *Quote  `json:"quote,omitempty"`
	COP   float64 `json:"cop"`
}

// Sheet computes the forward quote of every ladder amount.
// Amounts that cannot be quoted yield a row without a quote
func Sheet(
	amounts []float64,
	rates *types.RateSet,
	adj types.AdjustmentSet,
	fee Fee,
) []SheetRow {
	if len(amounts) == 0 {
		amounts = DefaultSheetAmounts
	}

	rows := make([]SheetRow, 0, len(amounts))

	for _, amount := range amounts {
		row := SheetRow{COP: amount}

		if q, err := Forward(amount, rates, adj, fee); err == nil {
			row.Quote = q
		}

		rows = append(rows, row)
	}

	return rows
}
