package ledger

import (
	"fmt"

	"github.com/lift-alumni/liftfund/internal/money"
)

// ComputeSplit allocates a contribution between the buckets.
//
// BASIC contributions split per ratio: the LIFT share is rounded
// half-up and the Alumni Association share is the exact remainder, so
// the two always sum back to amount. ADDITIONAL contributions require a
// declared bucket and take the full amount with no percentages.
//
// Pure function; identical inputs always produce identical results.
func ComputeSplit(amount money.Money, typ ContributionType, declared *Bucket, ratio int) (SplitResult, error) {
	if !amount.IsPositive() {
		return SplitResult{}, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	switch typ {
	case TypeBasic:
		if !money.ValidPercent(ratio) {
			return SplitResult{}, fmt.Errorf("%w: split ratio %d out of range", ErrValidation, ratio)
		}
		if !amount.Splittable() {
			return SplitResult{}, fmt.Errorf("%w: amount exceeds %d cents", ErrValidation, money.MaxSplittable)
		}
		lift, aa := amount.SplitPercent(ratio)
		return SplitResult{
			LiftAmount: lift,
			AAAmount:   aa,
			LiftPct:    ratio,
			AAPct:      100 - ratio,
		}, nil
	case TypeAdditional:
		if declared == nil {
			return SplitResult{}, fmt.Errorf("%w: additional contribution requires a bucket", ErrValidation)
		}
		if !declared.Valid() {
			return SplitResult{}, fmt.Errorf("%w: unknown bucket %q", ErrValidation, *declared)
		}
		b := *declared
		return SplitResult{Bucket: &b}, nil
	default:
		return SplitResult{}, fmt.Errorf("%w: unknown contribution type %q", ErrValidation, typ)
	}
}
