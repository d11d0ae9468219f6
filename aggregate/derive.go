package aggregate

import "github.com/sig-0/remesas/storage/types"

const (
	labelUSDTCOPApprox = "USDT/COP ≈ USD/COP (approx)"
	labelUSDTVESApprox = "USDT/VES ≈ USD/VES parallel (approx)"
	labelUSDVESDerived = "USD/VES ≈ EUR/VES ÷ EUR/USD (derived)"
)

// derive fills the missing fields that can be approximated from the
// present ones, treating USDT as USD. Every derivation is labelled
func derive(values map[types.Field]float64, sources []string) []string {
	if _, ok := values[types.FieldUSDTCOPBuy]; !ok {
		if usdCop, ok := values[types.FieldUSDCOP]; ok {
			values[types.FieldUSDTCOPBuy] = usdCop
			sources = append(sources, labelUSDTCOPApprox)
		}
	}

	if _, ok := values[types.FieldUSDTVESSell]; !ok {
		if parallel, ok := values[types.FieldUSDVESParallel]; ok {
			values[types.FieldUSDTVESSell] = parallel
			sources = append(sources, labelUSDTVESApprox)
		}
	}

	if _, ok := values[types.FieldUSDVESOfficial]; !ok {
		var (
			eurVes, hasEURVES = values[types.FieldEURVESOfficial]
			eurUsd, hasEURUSD = values[types.FieldEURUSD]
		)

		if hasEURVES && hasEURUSD {
			if derived := eurVes / eurUsd; types.IsPositive(derived) {
				values[types.FieldUSDVESOfficial] = derived
				sources = append(sources, labelUSDVESDerived)
			}
		}
	}

	return sources
}
