package quote

import (
	"math"

	"github.com/sig-0/remesas/storage/types"
)

// Forward computes the VES delivered for the COP handed over
func Forward(
	inputCOP float64,
	rates *types.RateSet,
	adj types.AdjustmentSet,
	fee Fee,
) (*Quote, error) {
	buy, ok := Adjusted(rates, adj, types.FieldUSDTCOPBuy)
	if !types.IsPositive(inputCOP) || !ok {
		return nil, insufficient("missing COP amount or USDT/COP rate")
	}

	var (
		base   = inputCOP / buy
		feeAmt = fee.On(base)
		net    = math.Max(base-feeAmt, 0)
	)

	q := &Quote{
		InputCOP:    inputCOP,
		BaseUSDT:    base,
		FeeUSDT:     feeAmt,
		NetUSDT:     net,
		FeeInCOP:    feeAmt * buy,
		RequiredUSD: base,
	}

	rate, method, ok := newVESRates(rates, adj).pick(MethodEURDerived, MethodP2P)
	if !ok {
		// No VES path, the USDT legs are still reported
		return checkFinite(q)
	}

	delivered := net * rate

	q.Method = method
	q.DeliveredVES = &delivered

	if delivered > 0 {
		q.COPPerVES = ptr(inputCOP / delivered)
	}

	return checkFinite(q)
}
