package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Service answers timeline queries over the audit trail.
type Service struct {
	pool *pgxpool.Pool
}

// NewService constructs the audit timeline service.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// Result wraps timeline rows with paging information.
type Result struct {
	Rows     []Record
	Page     int
	PageSize int
	HasMore  bool
}

// Timeline returns audit records matching the filters, newest first.
func (s *Service) Timeline(ctx context.Context, filters TimelineFilters) (Result, error) {
	if s == nil || s.pool == nil {
		return Result{}, fmt.Errorf("audit: service not configured")
	}
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 50 {
		pageSize = 50
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * pageSize

	query := `SELECT id, entity, entity_id, action, actor_id, notes, meta, occurred_at
FROM audit_logs WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.Entity != "" {
		query += fmt.Sprintf(" AND entity = $%d", argNum)
		args = append(args, filters.Entity)
		argNum++
	}
	if filters.EntityID != uuid.Nil {
		query += fmt.Sprintf(" AND entity_id = $%d", argNum)
		args = append(args, filters.EntityID)
		argNum++
	}
	if filters.Action != "" {
		query += fmt.Sprintf(" AND action = $%d", argNum)
		args = append(args, string(filters.Action))
		argNum++
	}
	if !filters.From.IsZero() {
		query += fmt.Sprintf(" AND occurred_at >= $%d", argNum)
		args = append(args, filters.From)
		argNum++
	}
	if !filters.To.IsZero() {
		query += fmt.Sprintf(" AND occurred_at <= $%d", argNum)
		args = append(args, filters.To)
		argNum++
	}

	// Fetch one extra row to detect another page.
	query += fmt.Sprintf(" ORDER BY occurred_at DESC, id DESC LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, pageSize+1, offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return Result{}, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var action string
		if err := rows.Scan(&rec.ID, &rec.Entity, &rec.EntityID, &action, &rec.ActorID, &rec.Notes, &rec.Meta, &rec.At); err != nil {
			return Result{}, err
		}
		rec.Action = Action(action)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return Result{}, err
	}

	hasMore := len(out) > pageSize
	if hasMore {
		out = out[:pageSize]
	}
	return Result{Rows: out, Page: page, PageSize: pageSize, HasMore: hasMore}, nil
}

// ForEntry returns the full trail for one ledger entry, oldest first.
func (s *Service) ForEntry(ctx context.Context, entryID uuid.UUID) ([]Record, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, entity, entity_id, action, actor_id, notes, meta, occurred_at
FROM audit_logs WHERE entity = $1 AND entity_id = $2 ORDER BY occurred_at ASC, id ASC`, EntityLedgerEntry, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var action string
		if err := rows.Scan(&rec.ID, &rec.Entity, &rec.EntityID, &action, &rec.ActorID, &rec.Notes, &rec.Meta, &rec.At); err != nil {
			return nil, err
		}
		rec.Action = Action(action)
		out = append(out, rec)
	}
	return out, rows.Err()
}
