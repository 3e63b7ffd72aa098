package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lift-alumni/liftfund/internal/audit"
	"github.com/lift-alumni/liftfund/internal/money"
	"github.com/lift-alumni/liftfund/internal/platform/db"
)

// PgRepository provides PostgreSQL backed persistence for the ledger.
type PgRepository struct {
	pool     *pgxpool.Pool
	recorder *audit.Recorder
}

// NewPgRepository constructs a repository.
func NewPgRepository(pool *pgxpool.Pool, recorder *audit.Recorder) *PgRepository {
	return &PgRepository{pool: pool, recorder: recorder}
}

const entryColumns = `id, kind, contribution_type, bucket, total_cents, lift_cents, aa_cents,
	lift_pct, aa_pct, entry_date, status, purpose, category, notes,
	submitted_by, decided_by, decided_at, created_at, updated_at`

// WithTx runs fn inside a RepeatableRead transaction.
func (r *PgRepository) WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &pgTxRepository{tx: tx, recorder: r.recorder})
	})
}

// Get retrieves one entry by id.
func (r *PgRepository) Get(ctx context.Context, id uuid.UUID) (LedgerEntry, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+entryColumns+` FROM ledger_entries WHERE id = $1`, id)
	return scanEntry(row)
}

// List returns entries matching the request, newest event date first.
func (r *PgRepository) List(ctx context.Context, req ListRequest) ([]LedgerEntry, error) {
	query, args := buildListQuery(req)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LedgerEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Each streams matching entries to fn row by row.
func (r *PgRepository) Each(ctx context.Context, req ListRequest, fn func(LedgerEntry) error) error {
	query, args := buildListQuery(req)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return err
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return rows.Err()
}

func buildListQuery(req ListRequest) (string, []any) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE 1=1`
	args := []any{}
	argNum := 1

	if req.Kind != "" {
		query += fmt.Sprintf(" AND kind = $%d", argNum)
		args = append(args, string(req.Kind))
		argNum++
	}
	if req.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, string(req.Status))
		argNum++
	}
	if req.Bucket != "" {
		// A BASIC contribution allocates to both buckets, so it matches
		// any bucket filter; the aggregator attributes the right share.
		query += fmt.Sprintf(" AND (bucket = $%d OR contribution_type = 'BASIC')", argNum)
		args = append(args, string(req.Bucket))
		argNum++
	}
	if req.SubmittedBy != 0 {
		query += fmt.Sprintf(" AND submitted_by = $%d", argNum)
		args = append(args, req.SubmittedBy)
		argNum++
	}
	if !req.From.IsZero() {
		query += fmt.Sprintf(" AND entry_date >= $%d", argNum)
		args = append(args, req.From)
		argNum++
	}
	if !req.To.IsZero() {
		query += fmt.Sprintf(" AND entry_date <= $%d", argNum)
		args = append(args, req.To)
		argNum++
	}

	query += " ORDER BY entry_date DESC, created_at DESC"
	if req.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, req.Limit)
		argNum++
	}
	if req.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, req.Offset)
	}
	return query, args
}

type pgTxRepository struct {
	tx       pgx.Tx
	recorder *audit.Recorder
}

func (r *pgTxRepository) Get(ctx context.Context, id uuid.UUID) (LedgerEntry, error) {
	row := r.tx.QueryRow(ctx, `SELECT `+entryColumns+` FROM ledger_entries WHERE id = $1`, id)
	return scanEntry(row)
}

func (r *pgTxRepository) Insert(ctx context.Context, e LedgerEntry) error {
	var bucket *string
	if e.Bucket != nil {
		s := string(*e.Bucket)
		bucket = &s
	}
	var contribType *string
	if e.ContributionType != "" {
		s := string(e.ContributionType)
		contribType = &s
	}
	_, err := r.tx.Exec(ctx, `
		INSERT INTO ledger_entries (
			id, kind, contribution_type, bucket, total_cents, lift_cents, aa_cents,
			lift_pct, aa_pct, entry_date, status, purpose, category, notes,
			submitted_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		e.ID, string(e.Kind), contribType, bucket,
		e.Total.Cents(), e.LiftAmount.Cents(), e.AAAmount.Cents(),
		e.LiftPct, e.AAPct, e.Date, string(e.Status),
		e.Purpose, e.Category, e.Notes, e.SubmittedBy, e.CreatedAt, e.UpdatedAt)
	return err
}

func (r *pgTxRepository) Update(ctx context.Context, e LedgerEntry) error {
	var bucket *string
	if e.Bucket != nil {
		s := string(*e.Bucket)
		bucket = &s
	}
	tag, err := r.tx.Exec(ctx, `
		UPDATE ledger_entries SET
			bucket = $2, total_cents = $3, lift_cents = $4, aa_cents = $5,
			entry_date = $6, purpose = $7, category = $8, notes = $9, updated_at = $10
		WHERE id = $1`,
		e.ID, bucket, e.Total.Cents(), e.LiftAmount.Cents(), e.AAAmount.Cents(),
		e.Date, e.Purpose, e.Category, e.Notes, e.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgTxRepository) SetStatus(ctx context.Context, id uuid.UUID, from, to EntryStatus, actorID int64, at time.Time) (bool, error) {
	tag, err := r.tx.Exec(ctx, `
		UPDATE ledger_entries SET status = $3, decided_by = $4, decided_at = $5, updated_at = $5
		WHERE id = $1 AND status = $2`,
		id, string(from), string(to), actorID, at)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *pgTxRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.tx.Exec(ctx, `DELETE FROM ledger_entries WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *pgTxRepository) RecordAudit(ctx context.Context, rec audit.Record) error {
	return r.recorder.RecordTx(ctx, r.tx, rec)
}

func scanEntry(row pgx.Row) (LedgerEntry, error) {
	var e LedgerEntry
	var kind, status string
	var contribType, bucket, purpose, category, notes pgtype.Text
	var total, lift, aa int64
	var decidedBy pgtype.Int8
	var decidedAt pgtype.Timestamptz

	err := row.Scan(
		&e.ID, &kind, &contribType, &bucket, &total, &lift, &aa,
		&e.LiftPct, &e.AAPct, &e.Date, &status, &purpose, &category, &notes,
		&e.SubmittedBy, &decidedBy, &decidedAt, &e.CreatedAt, &e.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return LedgerEntry{}, ErrNotFound
	}
	if err != nil {
		return LedgerEntry{}, err
	}

	e.Kind = EntryKind(kind)
	e.Status = EntryStatus(status)
	if contribType.Valid {
		e.ContributionType = ContributionType(contribType.String)
	}
	if bucket.Valid {
		b := Bucket(bucket.String)
		e.Bucket = &b
	}
	e.Total = moneyFromCents(total)
	e.LiftAmount = moneyFromCents(lift)
	e.AAAmount = moneyFromCents(aa)
	e.Purpose = purpose.String
	e.Category = category.String
	e.Notes = notes.String
	if decidedBy.Valid {
		e.DecidedBy = &decidedBy.Int64
	}
	if decidedAt.Valid {
		e.DecidedAt = &decidedAt.Time
	}
	return e, nil
}

func moneyFromCents(c int64) money.Money {
	return money.FromCents(c)
}
