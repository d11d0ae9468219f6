package server

import (
	"context"
	"time"

	"github.com/sig-0/remesas/storage/types"
)

type (
	fetchDelegate       func(context.Context, types.FetchParams) *types.RateSet
	adjustmentsDelegate func(context.Context, string) (types.AdjustmentSet, error)
	updateDelegate      func(context.Context, string, types.AdjustmentSet) (types.AdjustmentSet, error)
)

type mockRateFetcher struct {
	fetchFn fetchDelegate
}

func (m *mockRateFetcher) Fetch(ctx context.Context, params types.FetchParams) *types.RateSet {
	if m.fetchFn != nil {
		return m.fetchFn(ctx, params)
	}

	return types.NewRateSet(time.Time{}, nil, nil, nil)
}

type mockSettings struct {
	adjustmentsFn adjustmentsDelegate
	updateFn      updateDelegate
}

func (m *mockSettings) Adjustments(ctx context.Context, userID string) (types.AdjustmentSet, error) {
	if m.adjustmentsFn != nil {
		return m.adjustmentsFn(ctx, userID)
	}

	return types.AdjustmentSet{}, nil
}

func (m *mockSettings) Update(
	ctx context.Context,
	userID string,
	adj types.AdjustmentSet,
) (types.AdjustmentSet, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, adj)
	}

	return adj, nil
}
