package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewContribution validates input and constructs a PENDING contribution
// with the split computed from ratio. Backdating is permitted; this is
// a bookkeeping system, not a real-time feed. Persistence and the
// initial audit record are the caller's responsibility.
func NewContribution(input CreateContributionInput, ratio int, now time.Time) (LedgerEntry, error) {
	if input.Date.IsZero() {
		return LedgerEntry{}, fmt.Errorf("%w: date is required", ErrValidation)
	}
	if input.SubmittedBy == 0 {
		return LedgerEntry{}, fmt.Errorf("%w: submitting user is required", ErrValidation)
	}

	split, err := ComputeSplit(input.Total, input.Type, input.Bucket, ratio)
	if err != nil {
		return LedgerEntry{}, err
	}

	e := LedgerEntry{
		ID:               uuid.New(),
		Kind:             KindContribution,
		ContributionType: input.Type,
		Total:            input.Total,
		Date:             input.Date,
		Status:           StatusPending,
		Notes:            strings.TrimSpace(input.Notes),
		SubmittedBy:      input.SubmittedBy,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if input.Type == TypeBasic {
		e.LiftAmount = split.LiftAmount
		e.AAAmount = split.AAAmount
		e.LiftPct = split.LiftPct
		e.AAPct = split.AAPct
	} else {
		e.Bucket = split.Bucket
	}
	return e, nil
}

// NewExpense validates input and constructs a PENDING expense. Expenses
// always target exactly one bucket and require a purpose and category.
func NewExpense(input CreateExpenseInput, now time.Time) (LedgerEntry, error) {
	if !input.Total.IsPositive() {
		return LedgerEntry{}, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if input.Date.IsZero() {
		return LedgerEntry{}, fmt.Errorf("%w: date is required", ErrValidation)
	}
	if !input.Bucket.Valid() {
		return LedgerEntry{}, fmt.Errorf("%w: expense requires a valid bucket", ErrValidation)
	}
	if strings.TrimSpace(input.Purpose) == "" {
		return LedgerEntry{}, fmt.Errorf("%w: expense requires a purpose", ErrValidation)
	}
	if strings.TrimSpace(input.Category) == "" {
		return LedgerEntry{}, fmt.Errorf("%w: expense requires a category", ErrValidation)
	}
	if input.SubmittedBy == 0 {
		return LedgerEntry{}, fmt.Errorf("%w: submitting user is required", ErrValidation)
	}

	b := input.Bucket
	return LedgerEntry{
		ID:          uuid.New(),
		Kind:        KindExpense,
		Bucket:      &b,
		Total:       input.Total,
		Date:        input.Date,
		Status:      StatusPending,
		Purpose:     strings.TrimSpace(input.Purpose),
		Category:    strings.TrimSpace(input.Category),
		Notes:       strings.TrimSpace(input.Notes),
		SubmittedBy: input.SubmittedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// validateShape re-checks the structural invariants of an entry, used
// after edits as if constructing anew.
func validateShape(e LedgerEntry) error {
	if !e.Total.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if e.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrValidation)
	}
	switch e.Kind {
	case KindContribution:
		switch e.ContributionType {
		case TypeBasic:
			if e.Bucket != nil {
				return fmt.Errorf("%w: basic contribution carries no single bucket", ErrValidation)
			}
			if e.LiftPct+e.AAPct != 100 {
				return fmt.Errorf("%w: split percentages must sum to 100", ErrValidation)
			}
			if e.LiftAmount.Add(e.AAAmount) != e.Total {
				return fmt.Errorf("%w: split amounts must sum to total", ErrValidation)
			}
		case TypeAdditional:
			if e.Bucket == nil || !e.Bucket.Valid() {
				return fmt.Errorf("%w: additional contribution requires a bucket", ErrValidation)
			}
		default:
			return fmt.Errorf("%w: unknown contribution type %q", ErrValidation, e.ContributionType)
		}
	case KindExpense:
		if e.Bucket == nil || !e.Bucket.Valid() {
			return fmt.Errorf("%w: expense requires a bucket", ErrValidation)
		}
		if e.Purpose == "" || e.Category == "" {
			return fmt.Errorf("%w: expense requires purpose and category", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown entry kind %q", ErrValidation, e.Kind)
	}
	return nil
}
