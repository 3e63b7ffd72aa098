package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lift-alumni/liftfund/internal/money"
)

func pendingContribution(t *testing.T, cents int64, ratio int) LedgerEntry {
	t.Helper()
	e, err := NewContribution(CreateContributionInput{
		Type:        TypeBasic,
		Total:       money.FromCents(cents),
		Date:        time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		SubmittedBy: 7,
	}, ratio, time.Now())
	require.NoError(t, err)
	return e
}

func pendingExpense(t *testing.T, cents int64, b Bucket) LedgerEntry {
	t.Helper()
	e, err := NewExpense(CreateExpenseInput{
		Bucket:      b,
		Total:       money.FromCents(cents),
		Date:        time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
		Purpose:     "venue deposit",
		Category:    "events",
		SubmittedBy: 7,
	}, time.Now())
	require.NoError(t, err)
	return e
}

func TestApproveFromPending(t *testing.T) {
	e := pendingContribution(t, 100000, 60)
	now := time.Now()

	approved, err := Approve(e, 42, now)
	require.NoError(t, err)
	require.Equal(t, StatusApproved, approved.Status)
	require.NotNil(t, approved.DecidedBy)
	require.Equal(t, int64(42), *approved.DecidedBy)

	// Original value untouched; transitions return copies.
	require.Equal(t, StatusPending, e.Status)
}

func TestDecisionsAreTerminal(t *testing.T) {
	e := pendingContribution(t, 100000, 60)
	now := time.Now()

	approved, err := Approve(e, 42, now)
	require.NoError(t, err)

	_, err = Approve(approved, 42, now)
	require.ErrorIs(t, err, ErrInvalidStatus)
	_, err = Reject(approved, 42, now)
	require.ErrorIs(t, err, ErrInvalidStatus)
	_, _, err = ApplyEdit(approved, EntryUpdate{}, now)
	require.ErrorIs(t, err, ErrInvalidStatus)

	rejected, err := Reject(e, 42, now)
	require.NoError(t, err)
	_, err = Approve(rejected, 42, now)
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestApplyEditResplitsAtSnapshottedRatio(t *testing.T) {
	e := pendingContribution(t, 100000, 60)

	newTotal := money.FromCents(50000)
	edited, fields, err := ApplyEdit(e, EntryUpdate{Total: &newTotal}, time.Now())
	require.NoError(t, err)
	require.Equal(t, []string{"total"}, fields)

	// The entry keeps its 60/40 snapshot even if today's ratio differs.
	require.Equal(t, 60, edited.LiftPct)
	require.Equal(t, int64(30000), edited.LiftAmount.Cents())
	require.Equal(t, int64(20000), edited.AAAmount.Cents())
	require.Equal(t, edited.Total, edited.LiftAmount.Add(edited.AAAmount))
}

func TestApplyEditRejectsOversizedTotal(t *testing.T) {
	e := pendingContribution(t, 100000, 60)

	huge := money.FromCents(4_000_000_000_000_000_000)
	_, _, err := ApplyEdit(e, EntryUpdate{Total: &huge}, time.Now())
	require.ErrorIs(t, err, ErrValidation)
}

func TestApplyEditValidatesAsNew(t *testing.T) {
	e := pendingExpense(t, 20000, BucketLift)

	zero := money.FromCents(0)
	_, _, err := ApplyEdit(e, EntryUpdate{Total: &zero}, time.Now())
	require.ErrorIs(t, err, ErrValidation)

	empty := ""
	_, _, err = ApplyEdit(e, EntryUpdate{Purpose: &empty}, time.Now())
	require.ErrorIs(t, err, ErrValidation)
}

func TestApplyEditBucketOnSplitEntry(t *testing.T) {
	e := pendingContribution(t, 100000, 60)
	b := BucketLift
	_, _, err := ApplyEdit(e, EntryUpdate{Bucket: &b}, time.Now())
	require.ErrorIs(t, err, ErrValidation)
}

func TestApplyEditReportsChangedFields(t *testing.T) {
	e := pendingExpense(t, 20000, BucketLift)

	b := BucketAlumni
	notes := "moved to AA budget"
	_, fields, err := ApplyEdit(e, EntryUpdate{Bucket: &b, Notes: &notes}, time.Now())
	require.NoError(t, err)
	require.Equal(t, []string{"bucket", "notes"}, fields)
}

func TestNewExpenseRequiresAllFields(t *testing.T) {
	base := CreateExpenseInput{
		Bucket:      BucketLift,
		Total:       money.FromCents(5000),
		Date:        time.Now(),
		Purpose:     "printing",
		Category:    "office",
		SubmittedBy: 3,
	}

	for name, mutate := range map[string]func(*CreateExpenseInput){
		"zero amount":     func(in *CreateExpenseInput) { in.Total = money.FromCents(0) },
		"negative amount": func(in *CreateExpenseInput) { in.Total = money.FromCents(-5) },
		"no bucket":       func(in *CreateExpenseInput) { in.Bucket = "" },
		"no purpose":      func(in *CreateExpenseInput) { in.Purpose = "  " },
		"no category":     func(in *CreateExpenseInput) { in.Category = "" },
		"no date":         func(in *CreateExpenseInput) { in.Date = time.Time{} },
		"no submitter":    func(in *CreateExpenseInput) { in.SubmittedBy = 0 },
	} {
		in := base
		mutate(&in)
		_, err := NewExpense(in, time.Now())
		require.ErrorIs(t, err, ErrValidation, name)
	}
}

func TestNewContributionBackdatingAllowed(t *testing.T) {
	past := time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC)
	e, err := NewContribution(CreateContributionInput{
		Type:        TypeBasic,
		Total:       money.FromCents(100),
		Date:        past,
		SubmittedBy: 1,
	}, 50, time.Now())
	require.NoError(t, err)
	require.Equal(t, past, e.Date)
	require.Equal(t, StatusPending, e.Status)
}
