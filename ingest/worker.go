package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sig-0/remesas/storage/types"
)

var errProviderPanic = errors.New("provider panicked")

// refreshJob is a queued refresh of a single provider
type refreshJob struct {
	due      time.Time
	provider Provider
	id       xid.ID
	attempt  int // consecutive failed refreshes
}

// Less orders jobs by due time, earliest first
func (j refreshJob) Less(other refreshJob) bool {
	return j.due.Before(other.due)
}

// refreshResult is the outcome a worker reports back
type refreshResult struct {
	err   error
	rates []*types.ExchangeRate
	job   refreshJob
	took  time.Duration
}

// runRefresh fetches the job's provider, bounded by its interval.
// A panicking provider is reported as a failed refresh
func runRefresh(ctx context.Context, job refreshJob, results chan<- refreshResult) {
	var (
		res   = refreshResult{job: job}
		start = time.Now()
	)

	func() {
		defer func() {
			if r := recover(); r != nil {
				res.rates = nil
				res.err = fmt.Errorf("%w: %v", errProviderPanic, r)
			}
		}()

		fetchCtx, cancelFn := context.WithTimeout(ctx, job.provider.Interval())
		defer cancelFn()

		res.rates, res.err = job.provider.Fetch(fetchCtx)
	}()

	res.took = time.Since(start)

	select {
	case <-ctx.Done():
	case results <- res:
	}
}

// retryBackoff doubles the base delay for every consecutive failure,
// capped at the provider interval
func retryBackoff(base, interval time.Duration, attempt int) time.Duration {
	delay := base

	for i := 1; i < attempt && delay < interval; i++ {
		delay *= 2
	}

	return min(delay, interval)
}
