// Package aggregate fans out to the registered rate sources and reconciles
// their readings into a single RateSet. Individual source failures never
// fail the whole fetch, they surface as warnings on the result
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sig-0/remesas/storage/types"
)

const (
	DefaultSourceTimeout = 8 * time.Second
	DefaultRetries       = 1
	DefaultRetryDelay    = 250 * time.Millisecond
)

var (
	errInvalidSource = errors.New("invalid source")
	errInvalidTTL    = errors.New("invalid TTL")
)

// Aggregator is the multi-source rate fetcher
type Aggregator struct {
	logger *slog.Logger
	cache  *Cache
	now    func() time.Time

	sources []*registeredSource

	sourceTimeout time.Duration
	retries       uint64
	retryDelay    time.Duration
	limit         rate.Limit
	burst         int

	mu sync.RWMutex
}

// New creates a new Aggregator instance
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		cache:         NewCache(),
		now:           time.Now,
		sourceTimeout: DefaultSourceTimeout,
		retries:       DefaultRetries,
		retryDelay:    DefaultRetryDelay,
		limit:         rate.Limit(2), // 2 upstream calls per second
		burst:         4,
	}

	// Apply the options
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Register registers a new source with the aggregator.
// Registration order is the source priority when merging
func (a *Aggregator) Register(s Source) error {
	if s == nil || s.Name() == "" {
		return errInvalidSource
	}

	if s.TTL() <= 0 {
		return errInvalidTTL
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.sources = append(a.sources, &registeredSource{
		id:      xid.New(),
		source:  s,
		limiter: rate.NewLimiter(a.limit, a.burst),
	})

	a.logger.Info(
		"registered rate source",
		"name", s.Name(),
		"ttl", s.TTL().String(),
	)

	return nil
}

// Fetch queries every registered source concurrently and reconciles
// the readings. It never fails, upstream problems surface as warnings
func (a *Aggregator) Fetch(ctx context.Context, params types.FetchParams) *types.RateSet {
	sources := a.registered()
	results := make([]result, len(sources))

	var g errgroup.Group

	for i, src := range sources {
		g.Go(func() error {
			results[i] = a.fetchSource(ctx, src, params)

			return nil // all-settled, failures are carried in the result
		})
	}

	_ = g.Wait() //nolint:errcheck // Always nil

	return merge(a.now().UTC(), results)
}

// registered returns a snapshot of the registered sources
func (a *Aggregator) registered() []*registeredSource {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]*registeredSource, len(a.sources))
	copy(out, a.sources)

	return out
}

// fetchSource fetches the source readings, going through the cache
func (a *Aggregator) fetchSource(
	ctx context.Context,
	src *registeredSource,
	params types.FetchParams,
) result {
	var (
		name = src.source.Name()
		key  = src.cacheKey(params)
	)

	if rates, ok := a.cache.Get(key); ok {
		return result{
			name:  name,
			rates: rates,
		}
	}

	rates, err := a.call(ctx, src, params)
	if err != nil {
		a.logger.Warn(
			"rate source failed",
			"source", name,
			"err", err,
		)

		return result{
			name: name,
			err:  err,
		}
	}

	// Only successes are cached
	a.cache.Set(key, rates, src.source.TTL())

	return result{
		name:  name,
		rates: rates,
	}
}

// call executes the source fetch under the per-source timeout,
// rate limit and retry policy
func (a *Aggregator) call(
	ctx context.Context,
	src *registeredSource,
	params types.FetchParams,
) ([]*types.ExchangeRate, error) {
	callCtx, cancelFn := context.WithTimeout(ctx, a.sourceTimeout)
	defer cancelFn()

	b, err := retry.NewConstant(max(a.retryDelay, time.Millisecond))
	if err != nil {
		return nil, fmt.Errorf("unable to create backoff: %w", err)
	}

	b = retry.WithMaxRetries(a.retries, b)

	var (
		rates   []*types.ExchangeRate
		lastErr error
	)

	err = retry.Do(callCtx, b, func(ctx context.Context) error {
		if err := src.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limited: %w", err)
		}

		fetched, err := src.source.Fetch(ctx, params)
		if err != nil {
			lastErr = err

			return retry.RetryableError(err)
		}

		rates = fetched

		return nil
	})

	// The retry wrapper survives the last attempt, report the source error
	if err != nil && lastErr != nil && errors.Is(err, lastErr) {
		return nil, lastErr
	}

	return rates, err
}
