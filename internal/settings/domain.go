// Package settings holds process-wide fund configuration, currently
// just the contribution split ratio. The ratio is mutable only by an
// administrative action; ledger entries snapshot it at creation time,
// so changing it never rewrites history.
package settings

import (
	"errors"
	"time"
)

// DefaultSplitRatio is the LIFT share applied before any admin has
// configured one.
const DefaultSplitRatio = 50

// Sentinel errors.
var (
	ErrValidation = errors.New("settings: validation failed")
	ErrForbidden  = errors.New("settings: forbidden")
)

// SplitRatio is the configured LIFT percentage; the Alumni Association
// receives the remainder.
type SplitRatio struct {
	Percent   int
	UpdatedBy int64
	UpdatedAt time.Time
}
