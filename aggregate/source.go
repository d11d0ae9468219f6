package aggregate

import (
	"context"
	"time"

	"github.com/rs/xid"
	"golang.org/x/time/rate"

	"github.com/sig-0/remesas/storage/types"
)

// Source is a single upstream rate source
type Source interface {
	// Name returns the human-readable name of the source,
	// used in the source and warning labels
	Name() string

	// TTL returns how long a successful result stays fresh
	TTL() time.Duration

	// Fetch yields the source's readings. Params bias trade-size
	// dependent lookups and can be ignored
	Fetch(context.Context, types.FetchParams) ([]*types.ExchangeRate, error)
}

// Keyed is implemented by sources whose results depend on the fetch params
type Keyed interface {
	// CacheKey returns the cache discriminator for the params
	CacheKey(types.FetchParams) string
}

// registeredSource is a source accepted by the aggregator
type registeredSource struct {
	source  Source
	limiter *rate.Limiter
	id      xid.ID
}

// cacheKey returns the cache key of the source for the given params
func (r *registeredSource) cacheKey(params types.FetchParams) string {
	key := r.id.String()

	if keyed, ok := r.source.(Keyed); ok {
		key += "|" + keyed.CacheKey(params)
	}

	return key
}

// result is the settled outcome of a single source
type result struct {
	err   error
	name  string
	rates []*types.ExchangeRate
}
