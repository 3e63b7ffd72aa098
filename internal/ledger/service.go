package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lift-alumni/liftfund/internal/audit"
	"github.com/lift-alumni/liftfund/internal/rbac"
)

// Repository provides persistence for ledger entries.
type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error
	Get(ctx context.Context, id uuid.UUID) (LedgerEntry, error)
	List(ctx context.Context, req ListRequest) ([]LedgerEntry, error)
	// Each streams matching entries to fn without materialising the set.
	Each(ctx context.Context, req ListRequest, fn func(LedgerEntry) error) error
}

// TxRepository is the transactional slice of the repository. The audit
// write shares the transaction so a mutation and its trail commit or
// roll back together.
type TxRepository interface {
	Get(ctx context.Context, id uuid.UUID) (LedgerEntry, error)
	Insert(ctx context.Context, e LedgerEntry) error
	Update(ctx context.Context, e LedgerEntry) error
	// SetStatus flips status only when the entry is still in from,
	// reporting whether a row was updated. This is the concurrency
	// guard: the second of two racing decisions sees false.
	SetStatus(ctx context.Context, id uuid.UUID, from, to EntryStatus, actorID int64, at time.Time) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	RecordAudit(ctx context.Context, rec audit.Record) error
}

// RatioProvider supplies the currently configured split ratio. The
// core treats it as an immutable input per call.
type RatioProvider interface {
	CurrentRatio(ctx context.Context) (int, error)
}

// Service coordinates ledger mutations and queries.
type Service struct {
	repo   Repository
	ratios RatioProvider
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs the ledger service.
func NewService(repo Repository, ratios RatioProvider, logger *slog.Logger) *Service {
	return &Service{repo: repo, ratios: ratios, logger: logger, now: time.Now}
}

// CreateContribution records a new contribution in PENDING state. The
// configured split ratio is captured onto the entry and never re-read.
func (s *Service) CreateContribution(ctx context.Context, input CreateContributionInput) (LedgerEntry, error) {
	ratio, err := s.ratios.CurrentRatio(ctx)
	if err != nil {
		return LedgerEntry{}, fmt.Errorf("ledger: load split ratio: %w", err)
	}

	entry, err := NewContribution(input, ratio, s.now())
	if err != nil {
		return LedgerEntry{}, err
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.Insert(ctx, entry); err != nil {
			return err
		}
		return tx.RecordAudit(ctx, audit.Record{
			Entity:   audit.EntityLedgerEntry,
			EntityID: entry.ID,
			Action:   audit.ActionCreated,
			ActorID:  input.SubmittedBy,
			At:       entry.CreatedAt,
		})
	})
	if err != nil {
		return LedgerEntry{}, err
	}
	return entry, nil
}

// CreateExpense records a new expense in PENDING state.
func (s *Service) CreateExpense(ctx context.Context, input CreateExpenseInput) (LedgerEntry, error) {
	entry, err := NewExpense(input, s.now())
	if err != nil {
		return LedgerEntry{}, err
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.Insert(ctx, entry); err != nil {
			return err
		}
		return tx.RecordAudit(ctx, audit.Record{
			Entity:   audit.EntityLedgerEntry,
			EntityID: entry.ID,
			Action:   audit.ActionCreated,
			ActorID:  input.SubmittedBy,
			At:       entry.CreatedAt,
		})
	})
	if err != nil {
		return LedgerEntry{}, err
	}
	return entry, nil
}

// Approve moves a PENDING entry to APPROVED and records the decision.
func (s *Service) Approve(ctx context.Context, id uuid.UUID, actor rbac.Actor, note string) (LedgerEntry, error) {
	return s.decide(ctx, id, StatusApproved, audit.ActionApproved, actor, note)
}

// Reject moves a PENDING entry to REJECTED and records the decision.
func (s *Service) Reject(ctx context.Context, id uuid.UUID, actor rbac.Actor, note string) (LedgerEntry, error) {
	return s.decide(ctx, id, StatusRejected, audit.ActionRejected, actor, note)
}

func (s *Service) decide(ctx context.Context, id uuid.UUID, to EntryStatus, action audit.Action, actor rbac.Actor, note string) (LedgerEntry, error) {
	if !actor.Role.CanDecide() {
		return LedgerEntry{}, fmt.Errorf("%w: role %s cannot decide entries", ErrForbidden, actor.Role)
	}

	var decided LedgerEntry
	now := s.now()
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		entry, err := tx.Get(ctx, id)
		if err != nil {
			return err
		}
		ok, err := tx.SetStatus(ctx, id, StatusPending, to, actor.ID, now)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: entry is %s", ErrInvalidStatus, entry.Status)
		}
		decided, err = decideCopy(entry, to, actor.ID, now)
		if err != nil {
			return err
		}
		return tx.RecordAudit(ctx, audit.Record{
			Entity:   audit.EntityLedgerEntry,
			EntityID: id,
			Action:   action,
			ActorID:  actor.ID,
			Notes:    note,
			At:       now,
		})
	})
	if err != nil {
		return LedgerEntry{}, err
	}
	s.logger.Info("ledger entry decided",
		slog.String("entry", id.String()),
		slog.String("status", string(to)),
		slog.Float64("amount", decided.Total.Units()),
		slog.Int64("actor", actor.ID))
	return decided, nil
}

func decideCopy(e LedgerEntry, to EntryStatus, actorID int64, now time.Time) (LedgerEntry, error) {
	if to == StatusApproved {
		return Approve(e, actorID, now)
	}
	return Reject(e, actorID, now)
}

// Edit updates a PENDING entry. Admins may edit any pending entry; a
// submitter may edit only their own pending expense.
func (s *Service) Edit(ctx context.Context, id uuid.UUID, updates EntryUpdate, actor rbac.Actor) (LedgerEntry, error) {
	var updated LedgerEntry
	now := s.now()
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		entry, err := tx.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := canEdit(entry, actor); err != nil {
			return err
		}

		next, fields, err := ApplyEdit(entry, updates, now)
		if err != nil {
			return err
		}
		if len(fields) == 0 {
			updated = entry
			return nil
		}
		if err := tx.Update(ctx, next); err != nil {
			return err
		}
		updated = next
		return tx.RecordAudit(ctx, audit.Record{
			Entity:   audit.EntityLedgerEntry,
			EntityID: id,
			Action:   audit.ActionEdited,
			ActorID:  actor.ID,
			Meta:     map[string]any{"fields": fields},
			At:       now,
		})
	})
	if err != nil {
		return LedgerEntry{}, err
	}
	return updated, nil
}

func canEdit(e LedgerEntry, actor rbac.Actor) error {
	if actor.Role.CanDecide() {
		return nil
	}
	if e.Kind == KindExpense && e.SubmittedBy == actor.ID {
		return nil
	}
	return fmt.Errorf("%w: only admins or the submitting user may edit", ErrForbidden)
}

// DeleteExpense hard-deletes a PENDING expense. Admin only;
// contributions are never hard-deleted, only status-transitioned.
func (s *Service) DeleteExpense(ctx context.Context, id uuid.UUID, actor rbac.Actor) error {
	if !actor.Role.CanDecide() {
		return fmt.Errorf("%w: only admins may delete expenses", ErrForbidden)
	}
	now := s.now()
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		entry, err := tx.Get(ctx, id)
		if err != nil {
			return err
		}
		if entry.Kind != KindExpense {
			return fmt.Errorf("%w: contributions cannot be deleted", ErrValidation)
		}
		if entry.Status != StatusPending {
			return fmt.Errorf("%w: entry is %s", ErrInvalidStatus, entry.Status)
		}
		ok, err := tx.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
		return tx.RecordAudit(ctx, audit.Record{
			Entity:   audit.EntityLedgerEntry,
			EntityID: id,
			Action:   audit.ActionDeleted,
			ActorID:  actor.ID,
			At:       now,
		})
	})
}

// Get returns one entry.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (LedgerEntry, error) {
	return s.repo.Get(ctx, id)
}

// List returns entries matching the request.
func (s *Service) List(ctx context.Context, req ListRequest) ([]LedgerEntry, error) {
	return s.repo.List(ctx, req)
}

// Summary folds APPROVED entries into per-bucket balances by streaming
// rows through an Accumulator; nothing is cached or stored.
func (s *Service) Summary(ctx context.Context, filter Filter) (map[Bucket]BucketSummary, error) {
	acc := NewAccumulator(filter)
	req := ListRequest{
		Status: StatusApproved,
		Bucket: filter.Bucket,
		From:   filter.From,
		To:     filter.To,
	}
	if err := s.repo.Each(ctx, req, func(e LedgerEntry) error {
		acc.Add(e)
		return nil
	}); err != nil {
		return nil, err
	}
	return acc.Summaries(), nil
}
