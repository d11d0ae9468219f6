package aggregate

import (
	"context"
	"time"

	"github.com/sig-0/remesas/storage/types"
)

type (
	nameDelegate     func() string
	ttlDelegate      func() time.Duration
	fetchDelegate    func(context.Context, types.FetchParams) ([]*types.ExchangeRate, error)
	cacheKeyDelegate func(types.FetchParams) string
)

type mockSource struct {
	nameFn  nameDelegate
	ttlFn   ttlDelegate
	fetchFn fetchDelegate
}

func (m *mockSource) Name() string {
	if m.nameFn != nil {
		return m.nameFn()
	}

	return ""
}

func (m *mockSource) TTL() time.Duration {
	if m.ttlFn != nil {
		return m.ttlFn()
	}

	return 0
}

func (m *mockSource) Fetch(ctx context.Context, params types.FetchParams) ([]*types.ExchangeRate, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx, params)
	}

	return nil, nil
}

type mockKeyedSource struct {
	mockSource

	cacheKeyFn cacheKeyDelegate
}

func (m *mockKeyedSource) CacheKey(params types.FetchParams) string {
	if m.cacheKeyFn != nil {
		return m.cacheKeyFn(params)
	}

	return ""
}

// newStaticSource creates a source yielding the given field readings
func newStaticSource(name string, readings map[types.Field]float64) *mockSource {
	return &mockSource{
		nameFn: func() string {
			return name
		},
		ttlFn: func() time.Duration {
			return time.Minute
		},
		fetchFn: func(_ context.Context, _ types.FetchParams) ([]*types.ExchangeRate, error) {
			rates := make([]*types.ExchangeRate, 0, len(readings))

			// Stable order, following the field listing
			for _, field := range types.Fields {
				value, ok := readings[field]
				if !ok {
					continue
				}

				rates = append(rates, &types.ExchangeRate{
					Field:  field,
					Source: types.Source(name),
					Rate:   value,
				})
			}

			return rates, nil
		},
	}
}

// newFailingSource creates a source that always fails with the given error
func newFailingSource(name string, err error) *mockSource {
	return &mockSource{
		nameFn: func() string {
			return name
		},
		ttlFn: func() time.Duration {
			return time.Minute
		},
		fetchFn: func(_ context.Context, _ types.FetchParams) ([]*types.ExchangeRate, error) {
			return nil, err
		},
	}
}
