package quote

import "github.com/sig-0/remesas/storage/types"

// Row is a single inverse target computation
type Row struct {
	Err    error
	Quote  *Quote
	Target Target
	Amount float64
}

// OK reports if the row produced a quote
func (r Row) OK() bool {
	return r.Err == nil && r.Quote != nil
}

// Table computes an inverse quote for every target with an amount,
// in canonical target order
func Table(
	amounts map[Target]float64,
	rates *types.RateSet,
	adj types.AdjustmentSet,
	fee Fee,
) []Row {
	rows := make([]Row, 0, len(amounts))

	for _, target := range Targets {
		amount, ok := amounts[target]
		if !ok {
			continue
		}

		q, err := Inverse(amount, target, rates, adj, fee)

		rows = append(rows, Row{
			Target: target,
			Amount: amount,
			Quote:  q,
			Err:    err,
		})
	}

	return rows
}

// SelectActive picks the row to display. The last touched row wins when
// it produced a quote, otherwise the first successful row is used
func SelectActive(rows []Row, lastTouched Target) (*Row, bool) {
	if lastTouched != "" {
		for i := range rows {
			if rows[i].Target == lastTouched && rows[i].OK() {
				return &rows[i], true
			}
		}
	}

	for i := range rows {
		if rows[i].OK() {
			return &rows[i], true
		}
	}

	return nil, false
}
