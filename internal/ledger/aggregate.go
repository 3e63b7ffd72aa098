package ledger

import "time"

// Filter narrows which entries feed an aggregation. Zero values mean
// no restriction. Status is fixed: only APPROVED entries ever count.
type Filter struct {
	Bucket Bucket
	From   time.Time
	To     time.Time
}

func (f Filter) matchesDate(d time.Time) bool {
	if !f.From.IsZero() && d.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && d.After(f.To) {
		return false
	}
	return true
}

func (f Filter) matchesBucket(b Bucket) bool {
	return f.Bucket == "" || f.Bucket == b
}

// Accumulator folds ledger entries into per-bucket summaries one entry
// at a time, so callers can stream rows straight off a cursor without
// materialising the whole set. The combine step is a plain sum, so
// input order does not matter.
type Accumulator struct {
	filter Filter
	sums   map[Bucket]*BucketSummary
}

// NewAccumulator prepares an accumulator for the given filter.
func NewAccumulator(filter Filter) *Accumulator {
	sums := make(map[Bucket]*BucketSummary, 2)
	for _, b := range Buckets() {
		if filter.matchesBucket(b) {
			sums[b] = &BucketSummary{Bucket: b}
		}
	}
	return &Accumulator{filter: filter, sums: sums}
}

// Add folds one entry into the running totals. Entries that are not
// APPROVED, or fall outside the filter, contribute nothing.
func (a *Accumulator) Add(e LedgerEntry) {
	if e.Status != StatusApproved {
		return
	}
	if !a.filter.matchesDate(e.Date) {
		return
	}
	for b, sum := range a.sums {
		amount := e.AmountFor(b)
		if amount == 0 {
			continue
		}
		switch e.Kind {
		case KindContribution:
			sum.Contributions = sum.Contributions.Add(amount)
		case KindExpense:
			sum.Expenses = sum.Expenses.Add(amount)
		}
	}
}

// Summaries returns the folded per-bucket totals with balances derived.
func (a *Accumulator) Summaries() map[Bucket]BucketSummary {
	out := make(map[Bucket]BucketSummary, len(a.sums))
	for b, sum := range a.sums {
		s := *sum
		s.Balance = s.Contributions.Sub(s.Expenses)
		out[b] = s
	}
	return out
}

// Aggregate folds a materialised slice of entries. Convenience wrapper
// over Accumulator for callers that already hold the entries.
func Aggregate(entries []LedgerEntry, filter Filter) map[Bucket]BucketSummary {
	acc := NewAccumulator(filter)
	for _, e := range entries {
		acc.Add(e)
	}
	return acc.Summaries()
}
