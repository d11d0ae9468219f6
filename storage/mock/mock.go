package mock

import (
	"context"

	"github.com/sig-0/remesas/storage/types"
)

type (
	UserBySessionDelegate   func(context.Context, string) (*types.User, error)
	AdjustmentsDelegate     func(context.Context, string) (*types.AdjustmentSet, error)
	SaveAdjustmentsDelegate func(context.Context, string, types.AdjustmentSet) error
)

type Storage struct {
	UserBySessionFn   UserBySessionDelegate
	AdjustmentsFn     AdjustmentsDelegate
	SaveAdjustmentsFn SaveAdjustmentsDelegate
}

func (m *Storage) UserBySession(ctx context.Context, sessionID string) (*types.User, error) {
	if m.UserBySessionFn != nil {
		return m.UserBySessionFn(ctx, sessionID)
	}

	return nil, nil
}

func (m *Storage) Adjustments(ctx context.Context, userID string) (*types.AdjustmentSet, error) {
	if m.AdjustmentsFn != nil {
		return m.AdjustmentsFn(ctx, userID)
	}

	return nil, nil
}

func (m *Storage) SaveAdjustments(ctx context.Context, userID string, adj types.AdjustmentSet) error {
	if m.SaveAdjustmentsFn != nil {
		return m.SaveAdjustmentsFn(ctx, userID, adj)
	}

	return nil
}
