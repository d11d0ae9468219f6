package storage

import (
	"context"
	"errors"

	"github.com/sig-0/remesas/storage/types"
)

// ErrNotFound is returned when the requested session or user does not exist
var ErrNotFound = errors.New("not found")

// Storage is an abstraction over the session and settings data
type Storage interface {
	// UserBySession resolves the user owning the given session.
	// Unknown or expired sessions yield ErrNotFound
	UserBySession(ctx context.Context, sessionID string) (*types.User, error)

	// Adjustments fetches the user's stored adjustments, nil if none are stored
	Adjustments(ctx context.Context, userID string) (*types.AdjustmentSet, error)

	// SaveAdjustments stores the user's adjustments, replacing any previous ones
	SaveAdjustments(ctx context.Context, userID string, adj types.AdjustmentSet) error
}
