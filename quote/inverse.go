package quote

import (
	"fmt"
	"math"

	"github.com/sig-0/remesas/storage/types"
)

// Target is the currency the beneficiary should receive
type Target string

const (
	TargetVES         Target = "VES"
	TargetUSDOfficial Target = "USD_OFFICIAL"
	TargetUSDParallel Target = "USD_PARALLEL"
	TargetUSDEUR      Target = "USD_EUR"
	TargetEUR         Target = "EUR"
)

// Targets lists every inverse target in canonical order
var Targets = []Target{
	TargetVES,
	TargetUSDOfficial,
	TargetUSDParallel,
	TargetUSDEUR,
	TargetEUR,
}

// ParseTarget parses the target name (case-sensitive)
func ParseTarget(s string) (Target, bool) {
	for _, t := range Targets {
		if string(t) == s {
			return t, true
		}
	}

	return "", false
}

// preference returns the VES rate preference order for the target
func (t Target) preference() []Method {
	switch t {
	case TargetUSDParallel:
		return []Method{MethodP2P, MethodEURDerived}
	case TargetUSDEUR:
		return []Method{MethodEURDerived}
	default:
		return []Method{MethodEURDerived, MethodP2P}
	}
}

// toVES converts the target amount into VES
func (t Target) toVES(
	amount float64,
	rates *types.RateSet,
	adj types.AdjustmentSet,
	ves vesRates,
) (float64, bool) {
	var (
		cross float64
		ok    bool
	)

	switch t {
	case TargetVES:
		return amount, true
	case TargetUSDOfficial:
		cross, ok = Adjusted(rates, adj, types.FieldUSDVESOfficial)
	case TargetUSDParallel:
		cross, ok = Adjusted(rates, adj, types.FieldUSDVESParallel)
	case TargetUSDEUR:
		cross, ok = ves.eurDerived, ves.hasEURDerived
	case TargetEUR:
		cross, ok = Adjusted(rates, adj, types.FieldEURVESOfficial)
	}

	if !ok {
		return 0, false
	}

	return amount * cross, true
}

// Inverse computes the COP required for the beneficiary to receive
// the target amount
func Inverse(
	amount float64,
	target Target,
	rates *types.RateSet,
	adj types.AdjustmentSet,
	fee Fee,
) (*Quote, error) {
	if !types.IsPositive(amount) {
		return nil, insufficient("missing target amount")
	}

	if _, ok := ParseTarget(string(target)); !ok {
		return nil, insufficient(fmt.Sprintf("unknown target %q", target))
	}

	buy, ok := Adjusted(rates, adj, types.FieldUSDTCOPBuy)
	if !ok {
		return nil, insufficient("missing USDT/COP rate")
	}

	ves := newVESRates(rates, adj)

	targetVES, ok := target.toVES(amount, rates, adj, ves)
	if !ok || !types.IsPositive(targetVES) {
		return nil, insufficient(fmt.Sprintf("missing %s cross rate", target))
	}

	rate, method, ok := ves.pick(target.preference()...)
	if !ok {
		return nil, insufficient("missing USDT/VES rate")
	}

	net := targetVES / rate

	var base float64

	switch fee.Kind {
	case FeePercentage:
		k := 1 - fee.Value
		if k <= 0 {
			return nil, &Unavailable{
				Reason: "fee of 100% or more makes the inverse unsolvable",
				Err:    ErrUnsolvableInverse,
			}
		}

		base = net / k
	default:
		base = net + fee.Value
	}

	var (
		feeAmt      = fee.On(base)
		requiredCOP = base * buy
	)

	return checkFinite(&Quote{
		InputCOP:     requiredCOP,
		BaseUSDT:     base,
		FeeUSDT:      feeAmt,
		NetUSDT:      math.Max(base-feeAmt, 0),
		DeliveredVES: ptr(targetVES),
		COPPerVES:    ptr(requiredCOP / targetVES),
		FeeInCOP:     feeAmt * buy,
		RequiredUSD:  base,
		Method:       method,
		Target:       target,
		TargetAmount: ptr(amount),
	})
}
