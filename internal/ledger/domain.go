// Package ledger implements the fund's bookkeeping core: contributions
// and expenses allocated across the two fund buckets, the approval
// lifecycle, and balance aggregation. All amounts are integer cents.
package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/lift-alumni/liftfund/internal/money"
)

// Bucket enumerates the two fund pools. The set is closed.
type Bucket string

const (
	BucketLift   Bucket = "LIFT"
	BucketAlumni Bucket = "ALUMNI_ASSOCIATION"
)

// Valid reports whether b names a known bucket.
func (b Bucket) Valid() bool {
	return b == BucketLift || b == BucketAlumni
}

// Buckets lists all buckets in display order.
func Buckets() []Bucket {
	return []Bucket{BucketLift, BucketAlumni}
}

// EntryKind distinguishes contributions from expenses.
type EntryKind string

const (
	KindContribution EntryKind = "CONTRIBUTION"
	KindExpense      EntryKind = "EXPENSE"
)

// ContributionType selects how a contribution is allocated.
type ContributionType string

const (
	// TypeBasic splits automatically per the configured ratio.
	TypeBasic ContributionType = "BASIC"
	// TypeAdditional targets a single declared bucket, no split.
	TypeAdditional ContributionType = "ADDITIONAL"
)

// EntryStatus enumerates approval states. PENDING is initial; APPROVED
// and REJECTED are terminal.
type EntryStatus string

const (
	StatusPending  EntryStatus = "PENDING"
	StatusApproved EntryStatus = "APPROVED"
	StatusRejected EntryStatus = "REJECTED"
)

// Sentinel errors for the ledger core.
var (
	ErrNotFound      = errors.New("ledger: entry not found")
	ErrValidation    = errors.New("ledger: validation failed")
	ErrInvalidStatus = errors.New("ledger: invalid status for operation")
	ErrForbidden     = errors.New("ledger: forbidden")
)

// LedgerEntry is one contribution or expense. For BASIC contributions
// LiftAmount+AAAmount always equals Total and LiftPct+AAPct equals 100;
// the percentages are snapshotted from the ratio configured at creation
// time and never re-read. All other entries carry a single Bucket.
type LedgerEntry struct {
	ID               uuid.UUID
	Kind             EntryKind
	ContributionType ContributionType // empty for expenses
	Bucket           *Bucket          // nil for BASIC contributions
	Total            money.Money
	LiftAmount       money.Money
	AAAmount         money.Money
	LiftPct          int
	AAPct            int
	Date             time.Time
	Status           EntryStatus
	Purpose          string // expenses only
	Category         string // expenses only
	Notes            string
	SubmittedBy      int64
	DecidedBy        *int64
	DecidedAt        *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsSplit reports whether the entry allocates to both buckets.
func (e LedgerEntry) IsSplit() bool {
	return e.Kind == KindContribution && e.ContributionType == TypeBasic
}

// AmountFor returns the portion of the entry allocated to bucket b.
func (e LedgerEntry) AmountFor(b Bucket) money.Money {
	if e.IsSplit() {
		switch b {
		case BucketLift:
			return e.LiftAmount
		case BucketAlumni:
			return e.AAAmount
		}
		return 0
	}
	if e.Bucket != nil && *e.Bucket == b {
		return e.Total
	}
	return 0
}

// SplitResult is the outcome of the split policy. Either both amounts
// and percentages are set (BASIC) or Bucket carries the full amount.
type SplitResult struct {
	LiftAmount money.Money
	AAAmount   money.Money
	LiftPct    int
	AAPct      int
	Bucket     *Bucket
}

// CreateContributionInput carries a new contribution.
type CreateContributionInput struct {
	Type        ContributionType
	Bucket      *Bucket // required for ADDITIONAL
	Total       money.Money
	Date        time.Time
	Notes       string
	SubmittedBy int64
}

// CreateExpenseInput carries a new expense. Bucket is mandatory; there
// is no implicit default pool for spending.
type CreateExpenseInput struct {
	Bucket      Bucket
	Total       money.Money
	Date        time.Time
	Purpose     string
	Category    string
	Notes       string
	SubmittedBy int64
}

// EntryUpdate describes an admin or submitter edit of a PENDING entry.
// Nil fields are left unchanged.
type EntryUpdate struct {
	Total    *money.Money
	Date     *time.Time
	Bucket   *Bucket
	Purpose  *string
	Category *string
	Notes    *string
}

// ListRequest filters ledger queries.
type ListRequest struct {
	Kind        EntryKind
	Status      EntryStatus
	Bucket      Bucket
	SubmittedBy int64
	From        time.Time
	To          time.Time
	Limit       int
	Offset      int
}

// BucketSummary is the derived per-bucket position. Balances are never
// stored, always recomputed over APPROVED entries.
type BucketSummary struct {
	Bucket        Bucket
	Contributions money.Money
	Expenses      money.Money
	Balance       money.Money
}
