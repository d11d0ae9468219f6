// Package extract holds the tolerant numeric helpers shared by the rate providers.
// Upstream payloads are loosely typed, so values are looked up through
// ordered fallbacks and accepted as numbers or numeric strings
package extract

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// Number converts a decoded JSON value into a finite float.
// Strings are trimmed and a comma decimal separator is accepted
func Number(v any) (float64, bool) {
	var f float64

	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(val), ",", ".")
		if s == "" {
			return 0, false
		}

		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}

		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}

	return f, true
}

// FirstNumber returns the first key of obj holding a finite number
func FirstNumber(obj map[string]any, keys ...string) (float64, bool) {
	if obj == nil {
		return 0, false
	}

	for _, key := range keys {
		if f, ok := Number(obj[key]); ok {
			return f, true
		}
	}

	return 0, false
}

// Median returns the median of the values. The input is not modified
func Median(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2, true
	}

	return sorted[n/2], true
}

// MedianOfFirst returns the median of the first k values,
// in their given order. k <= 0 means all values
func MedianOfFirst(values []float64, k int) (float64, bool) {
	if k > 0 && len(values) > k {
		values = values[:k]
	}

	return Median(values)
}
