// Package audit provides the append-only trail of state-changing
// actions. Records are written exactly once per mutation and are never
// updated or deleted.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action enumerates audited actions.
type Action string

const (
	ActionCreated      Action = "CREATED"
	ActionApproved     Action = "APPROVED"
	ActionRejected     Action = "REJECTED"
	ActionEdited       Action = "EDITED"
	ActionDeleted      Action = "DELETED"
	ActionRatioChanged Action = "RATIO_CHANGED"
)

// Entity names the kinds of records that carry an audit trail.
const (
	EntityLedgerEntry = "ledger_entry"
	EntitySettings    = "settings"
)

// Record is a single immutable audit log line.
type Record struct {
	ID       int64
	Entity   string
	EntityID uuid.UUID
	Action   Action
	ActorID  int64
	Notes    string
	Meta     map[string]any
	At       time.Time
}

// TimelineFilters narrows the audit timeline query.
type TimelineFilters struct {
	Entity   string
	EntityID uuid.UUID
	Action   Action
	From     time.Time
	To       time.Time
	Page     int
	PageSize int
}
