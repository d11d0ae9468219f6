package aggregate

import (
	"context"
	"time"

	"github.com/sig-0/remesas/storage/types"
)

// Refresher re-fetches a single source ahead of its cache expiry,
// so client requests are served from a warm cache
type Refresher struct {
	aggregator *Aggregator
	source     *registeredSource
}

// Refreshers returns a refresher for every registered source
func (a *Aggregator) Refreshers() []*Refresher {
	sources := a.registered()
	out := make([]*Refresher, 0, len(sources))

	for _, src := range sources {
		out = append(out, &Refresher{
			aggregator: a,
			source:     src,
		})
	}

	return out
}

func (r *Refresher) Name() string {
	return r.source.source.Name()
}

// Interval is slightly shorter than the source TTL
func (r *Refresher) Interval() time.Duration {
	ttl := r.source.source.TTL()

	return ttl - ttl/10
}

// Fetch fetches the source with no trade-size bias and caches the result
func (r *Refresher) Fetch(ctx context.Context) ([]*types.ExchangeRate, error) {
	var params types.FetchParams

	rates, err := r.aggregator.call(ctx, r.source, params)
	if err != nil {
		return nil, err
	}

	r.aggregator.cache.Set(r.source.cacheKey(params), rates, r.source.source.TTL())

	return rates, nil
}
