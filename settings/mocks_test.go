package settings

import (
	"context"

	"github.com/sig-0/remesas/storage/types"
)

type saveDelegate func(context.Context, string, types.AdjustmentSet) error

type mockSaver struct {
	saveFn saveDelegate
}

func (m *mockSaver) SaveAdjustments(ctx context.Context, userID string, adj types.AdjustmentSet) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, userID, adj)
	}

	return nil
}
