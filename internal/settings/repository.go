package settings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgRepository persists settings in the split_ratio table.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository constructs a repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Current returns the configured split ratio, or the default when none
// has been set yet.
func (r *PgRepository) Current(ctx context.Context) (SplitRatio, error) {
	var ratio SplitRatio
	var updatedBy pgtype.Int8
	err := r.pool.QueryRow(ctx, `SELECT percent, updated_by, updated_at
FROM split_ratio ORDER BY updated_at DESC LIMIT 1`).Scan(&ratio.Percent, &updatedBy, &ratio.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return SplitRatio{Percent: DefaultSplitRatio}, nil
	}
	if err != nil {
		return SplitRatio{}, err
	}
	ratio.UpdatedBy = updatedBy.Int64
	return ratio, nil
}

// Set appends a new ratio version. Versions are append-only so the
// configuration history stays reconstructible.
func (r *PgRepository) Set(ctx context.Context, ratio SplitRatio) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO split_ratio (percent, updated_by, updated_at)
VALUES ($1, $2, $3)`, ratio.Percent, ratio.UpdatedBy, ratio.UpdatedAt)
	return err
}
