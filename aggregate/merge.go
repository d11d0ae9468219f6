package aggregate

import (
	"fmt"
	"slices"
	"time"

	"github.com/sig-0/remesas/storage/types"
)

// merge reconciles the settled source results, in priority order.
// The first valid reading per field wins
func merge(fetchedAt time.Time, results []result) *types.RateSet {
	var (
		values   = make(map[types.Field]float64, len(types.Fields))
		sources  = make([]string, 0, len(types.Fields))
		warnings = make([]string, 0)
	)

	for _, res := range results {
		if res.err != nil {
			warnings = append(warnings, fmt.Sprintf("%s failed: %s", res.name, res.err))

			continue
		}

		usable := false

		for _, reading := range res.rates {
			if reading == nil || !types.IsPositive(reading.Rate) {
				continue
			}

			if !slices.Contains(types.Fields, reading.Field) {
				continue
			}

			usable = true

			if _, taken := values[reading.Field]; taken {
				continue
			}

			values[reading.Field] = reading.Rate
			sources = append(sources, res.name+" "+reading.Field.Label())
		}

		if !usable {
			warnings = append(warnings, res.name+" returned no usable rates")
		}
	}

	sources = derive(values, sources)

	return types.NewRateSet(fetchedAt, values, sources, warnings)
}
