package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func approvedContribution(t *testing.T, cents int64, ratio int) LedgerEntry {
	t.Helper()
	e := pendingContribution(t, cents, ratio)
	e, err := Approve(e, 1, time.Now())
	require.NoError(t, err)
	return e
}

func approvedExpense(t *testing.T, cents int64, b Bucket) LedgerEntry {
	t.Helper()
	e := pendingExpense(t, cents, b)
	e, err := Approve(e, 1, time.Now())
	require.NoError(t, err)
	return e
}

func TestAggregateMixedEntries(t *testing.T) {
	entries := []LedgerEntry{
		approvedContribution(t, 100000, 60), // LIFT 600.00, AA 400.00
		approvedExpense(t, 20000, BucketLift),
	}

	summaries := Aggregate(entries, Filter{})

	lift := summaries[BucketLift]
	require.Equal(t, int64(60000), lift.Contributions.Cents())
	require.Equal(t, int64(20000), lift.Expenses.Cents())
	require.Equal(t, int64(40000), lift.Balance.Cents())

	aa := summaries[BucketAlumni]
	require.Equal(t, int64(40000), aa.Contributions.Cents())
	require.Equal(t, int64(0), aa.Expenses.Cents())
	require.Equal(t, int64(40000), aa.Balance.Cents())
}

func TestAggregateExcludesPending(t *testing.T) {
	approved := approvedContribution(t, 30000, 50)
	pending := pendingContribution(t, 999900, 50)
	rejected, err := Reject(pendingContribution(t, 555500, 50), 1, time.Now())
	require.NoError(t, err)

	summaries := Aggregate([]LedgerEntry{approved, pending, rejected}, Filter{})

	total := summaries[BucketLift].Contributions.Add(summaries[BucketAlumni].Contributions)
	require.Equal(t, int64(30000), total.Cents())
}

func TestAggregateIdempotent(t *testing.T) {
	entries := []LedgerEntry{
		approvedContribution(t, 100000, 33),
		approvedExpense(t, 5000, BucketAlumni),
	}

	first := Aggregate(entries, Filter{})
	second := Aggregate(entries, Filter{})
	require.Equal(t, first, second)
}

func TestAggregateOrderIndependent(t *testing.T) {
	a := approvedContribution(t, 70000, 40)
	b := approvedExpense(t, 12300, BucketLift)
	c := approvedContribution(t, 100, 40)

	forward := Aggregate([]LedgerEntry{a, b, c}, Filter{})
	backward := Aggregate([]LedgerEntry{c, b, a}, Filter{})
	require.Equal(t, forward, backward)
}

func TestAggregateDateFilter(t *testing.T) {
	early := approvedContribution(t, 10000, 50)
	early.Date = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	late := approvedContribution(t, 20000, 50)
	late.Date = time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	summaries := Aggregate([]LedgerEntry{early, late}, Filter{
		From: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	total := summaries[BucketLift].Contributions.Add(summaries[BucketAlumni].Contributions)
	require.Equal(t, int64(20000), total.Cents())
}

func TestAggregateBucketFilter(t *testing.T) {
	split := approvedContribution(t, 100000, 60)
	aaOnly := approvedExpense(t, 5000, BucketAlumni)

	summaries := Aggregate([]LedgerEntry{split, aaOnly}, Filter{Bucket: BucketLift})

	require.Len(t, summaries, 1)
	lift := summaries[BucketLift]
	require.Equal(t, int64(60000), lift.Contributions.Cents())
	require.Equal(t, int64(0), lift.Expenses.Cents())
}

func TestAccumulatorStreams(t *testing.T) {
	acc := NewAccumulator(Filter{})
	for i := 0; i < 100; i++ {
		acc.Add(approvedContribution(t, 100, 50))
	}
	summaries := acc.Summaries()
	require.Equal(t, int64(5000), summaries[BucketLift].Contributions.Cents())
	require.Equal(t, int64(5000), summaries[BucketAlumni].Contributions.Cents())
}
