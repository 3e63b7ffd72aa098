package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/lift-alumni/liftfund/internal/money"
)

// Approve transitions a PENDING entry to APPROVED. APPROVED and
// REJECTED are terminal: correcting a decision needs a compensating
// entry, never a silent reversal.
func Approve(e LedgerEntry, actorID int64, now time.Time) (LedgerEntry, error) {
	return decide(e, StatusApproved, actorID, now)
}

// Reject transitions a PENDING entry to REJECTED.
func Reject(e LedgerEntry, actorID int64, now time.Time) (LedgerEntry, error) {
	return decide(e, StatusRejected, actorID, now)
}

func decide(e LedgerEntry, to EntryStatus, actorID int64, now time.Time) (LedgerEntry, error) {
	if e.Status != StatusPending {
		return LedgerEntry{}, fmt.Errorf("%w: entry is %s", ErrInvalidStatus, e.Status)
	}
	e.Status = to
	e.DecidedBy = &actorID
	e.DecidedAt = &now
	e.UpdatedAt = now
	return e, nil
}

// ApplyEdit returns a copy of e with updates applied, re-validated as
// if constructed anew, together with the names of the changed fields.
// Edits are permitted only while PENDING. A BASIC contribution keeps
// its snapshotted percentages: changing the amount re-splits at the
// original ratio, not at whatever is configured today.
func ApplyEdit(e LedgerEntry, updates EntryUpdate, now time.Time) (LedgerEntry, []string, error) {
	if e.Status != StatusPending {
		return LedgerEntry{}, nil, fmt.Errorf("%w: entry is %s", ErrInvalidStatus, e.Status)
	}

	changed := map[string]bool{}

	if updates.Total != nil && *updates.Total != e.Total {
		e.Total = *updates.Total
		changed["total"] = true
	}
	if updates.Date != nil && !updates.Date.Equal(e.Date) {
		e.Date = *updates.Date
		changed["date"] = true
	}
	if updates.Bucket != nil {
		if e.IsSplit() {
			return LedgerEntry{}, nil, fmt.Errorf("%w: basic contribution has no single bucket", ErrValidation)
		}
		if e.Bucket == nil || *e.Bucket != *updates.Bucket {
			b := *updates.Bucket
			e.Bucket = &b
			changed["bucket"] = true
		}
	}
	if updates.Purpose != nil && *updates.Purpose != e.Purpose {
		e.Purpose = *updates.Purpose
		changed["purpose"] = true
	}
	if updates.Category != nil && *updates.Category != e.Category {
		e.Category = *updates.Category
		changed["category"] = true
	}
	if updates.Notes != nil && *updates.Notes != e.Notes {
		e.Notes = *updates.Notes
		changed["notes"] = true
	}

	if e.IsSplit() && changed["total"] {
		if !e.Total.Splittable() {
			return LedgerEntry{}, nil, fmt.Errorf("%w: amount exceeds %d cents", ErrValidation, money.MaxSplittable)
		}
		lift, aa := e.Total.SplitPercent(e.LiftPct)
		e.LiftAmount = lift
		e.AAAmount = aa
	}

	if err := validateShape(e); err != nil {
		return LedgerEntry{}, nil, err
	}

	fields := make([]string, 0, len(changed))
	for f := range changed {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	e.UpdatedAt = now
	return e, fields, nil
}
