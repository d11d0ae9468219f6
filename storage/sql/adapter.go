package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	// Registers the "pgx" database/sql driver
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/sig-0/remesas/storage"
	"github.com/sig-0/remesas/storage/types"
)

// DriverName is the database/sql driver the storage expects
const DriverName = "pgx"

type Storage struct {
	db  *sql.DB
	now func() time.Time
}

func NewStorage(db *sql.DB) *Storage {
	return &Storage{
		db:  db,
		now: time.Now,
	}
}

// Open opens and pings a Postgres connection pool
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to open DB: %w", err)
	}

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("unable to ping DB: %w", err)
	}

	return db, nil
}

func (s *Storage) UserBySession(ctx context.Context, sessionID string) (*types.User, error) {
	var (
		user      types.User
		expiresAt sql.NullTime
	)

	err := s.db.QueryRowContext(ctx, userBySessionQuery, sessionID, s.now()).Scan(
		&user.ID,
		&user.Email,
		&user.Role,
		&user.Plan,
		&user.Active,
		&expiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}

		return nil, fmt.Errorf("unable to fetch session user: %w", err)
	}

	if expiresAt.Valid {
		user.ExpiresAt = &expiresAt.Time
	}

	return &user, nil
}

func (s *Storage) Adjustments(ctx context.Context, userID string) (*types.AdjustmentSet, error) {
	var adj types.AdjustmentSet

	err := s.db.QueryRowContext(ctx, adjustmentsQuery, userID).Scan(
		&adj.BCVPct,
		&adj.ParallelPct,
		&adj.USDTCOPPct,
		&adj.USDTVESPct,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil //nolint:nilnil // valid case
		}

		return nil, fmt.Errorf("unable to fetch adjustments: %w", err)
	}

	adj = adj.Clamp()

	return &adj, nil
}

func (s *Storage) SaveAdjustments(ctx context.Context, userID string, adj types.AdjustmentSet) error {
	adj = adj.Clamp()

	_, err := s.db.ExecContext(
		ctx,
		saveAdjustmentsQuery,
		userID,
		adj.BCVPct,
		adj.ParallelPct,
		adj.USDTCOPPct,
		adj.USDTVESPct,
		s.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("unable to save adjustments: %w", err)
	}

	return nil
}
