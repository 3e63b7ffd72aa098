package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/lift-alumni/liftfund/internal/ledger"
	"github.com/lift-alumni/liftfund/internal/money"
)

type sliceRepo struct {
	entries []ledger.LedgerEntry
	visited int
}

func (r *sliceRepo) WithTx(ctx context.Context, fn func(ctx context.Context, tx ledger.TxRepository) error) error {
	panic("not used")
}

func (r *sliceRepo) Get(ctx context.Context, id uuid.UUID) (ledger.LedgerEntry, error) {
	panic("not used")
}

func (r *sliceRepo) List(ctx context.Context, req ledger.ListRequest) ([]ledger.LedgerEntry, error) {
	return r.entries, nil
}

func (r *sliceRepo) Each(ctx context.Context, req ledger.ListRequest, fn func(ledger.LedgerEntry) error) error {
	for _, e := range r.entries {
		r.visited++
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

func splitEntry(total, lift money.Money, liftPct int) ledger.LedgerEntry {
	return ledger.LedgerEntry{
		ID:               uuid.New(),
		Kind:             ledger.KindContribution,
		ContributionType: ledger.TypeBasic,
		Total:            total,
		LiftAmount:       lift,
		AAAmount:         total - lift,
		LiftPct:          liftPct,
		AAPct:            100 - liftPct,
		Status:           ledger.StatusApproved,
		Date:             time.Now(),
	}
}

func TestCheckEntryAcceptsConservedSplit(t *testing.T) {
	require.Empty(t, checkEntry(splitEntry(1000, 600, 60)))
}

func TestCheckEntryFlagsBrokenSplit(t *testing.T) {
	e := splitEntry(1000, 600, 60)
	e.AAAmount = 300
	require.Equal(t, "shares do not sum to total", checkEntry(e))

	e = splitEntry(1000, 600, 60)
	e.AAPct = 50
	require.Equal(t, "snapshot percentages do not sum to 100", checkEntry(e))
}

func TestCheckEntryFlagsBucketlessExpense(t *testing.T) {
	e := ledger.LedgerEntry{
		ID:     uuid.New(),
		Kind:   ledger.KindExpense,
		Total:  500,
		Status: ledger.StatusApproved,
	}
	require.Equal(t, "entry missing bucket", checkEntry(e))
}

func TestIntegrityHandleCountsViolations(t *testing.T) {
	broken := splitEntry(1000, 600, 60)
	broken.AAAmount = 300

	repo := &sliceRepo{entries: []ledger.LedgerEntry{splitEntry(500, 250, 50), broken}}
	job := NewLedgerIntegrityJob(repo, nil, nil)

	task, err := NewLedgerIntegrityTask(LedgerIntegrityPayload{})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
}

func TestIntegrityHandleStopsAtLimit(t *testing.T) {
	repo := &sliceRepo{entries: []ledger.LedgerEntry{
		splitEntry(500, 250, 50),
		splitEntry(1000, 600, 60),
		splitEntry(2000, 800, 40),
		splitEntry(3000, 900, 30),
	}}
	job := NewLedgerIntegrityJob(repo, nil, nil)

	task, err := NewLedgerIntegrityTask(LedgerIntegrityPayload{Limit: 1})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	// The stream aborts on the row after the limit instead of draining
	// the remaining entries as no-ops.
	require.Equal(t, 2, repo.visited)
}

func TestIntegrityHandleRejectsMalformedPayload(t *testing.T) {
	job := NewLedgerIntegrityJob(&sliceRepo{}, nil, nil)
	err := job.Handle(context.Background(), asynq.NewTask(TaskLedgerIntegrity, []byte("{not json")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}
