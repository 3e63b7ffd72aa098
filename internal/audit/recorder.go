package audit

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Recorder writes records into audit_logs.
type Recorder struct {
	pool *pgxpool.Pool
}

// NewRecorder returns a new Recorder.
func NewRecorder(pool *pgxpool.Pool) *Recorder {
	return &Recorder{pool: pool}
}

const insertRecordSQL = `INSERT INTO audit_logs (entity, entity_id, action, actor_id, notes, meta, occurred_at)
VALUES ($1, $2, $3, $4, $5, $6, COALESCE(NULLIF($7, '0001-01-01 00:00:00+00'::timestamptz), NOW()))`

// Record persists the log entry using the pool.
func (r *Recorder) Record(ctx context.Context, rec Record) error {
	if r == nil {
		return errors.New("audit recorder not initialised")
	}
	if err := validate(rec); err != nil {
		return err
	}
	metaJSON, err := json.Marshal(rec.Meta)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, insertRecordSQL, rec.Entity, rec.EntityID, string(rec.Action), rec.ActorID, rec.Notes, metaJSON, rec.At)
	return err
}

// RecordTx persists the log entry inside an existing transaction so the
// audit line commits atomically with the mutation it describes.
func (r *Recorder) RecordTx(ctx context.Context, tx pgx.Tx, rec Record) error {
	if err := validate(rec); err != nil {
		return err
	}
	metaJSON, err := json.Marshal(rec.Meta)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, insertRecordSQL, rec.Entity, rec.EntityID, string(rec.Action), rec.ActorID, rec.Notes, metaJSON, rec.At)
	return err
}

func validate(rec Record) error {
	if rec.Entity == "" || rec.Action == "" {
		return errors.New("audit record requires entity and action")
	}
	if rec.ActorID == 0 {
		return errors.New("audit record requires actor")
	}
	return nil
}
