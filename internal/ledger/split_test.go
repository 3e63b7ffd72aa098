package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lift-alumni/liftfund/internal/money"
)

func TestComputeSplitBasic(t *testing.T) {
	res, err := ComputeSplit(money.FromCents(100000), TypeBasic, nil, 33)
	require.NoError(t, err)
	require.Equal(t, int64(33000), res.LiftAmount.Cents())
	require.Equal(t, int64(67000), res.AAAmount.Cents())
	require.Equal(t, 33, res.LiftPct)
	require.Equal(t, 67, res.AAPct)
	require.Nil(t, res.Bucket)
}

func TestComputeSplitConservation(t *testing.T) {
	// Only the LIFT share is rounded; the AA share is the remainder, so
	// the halves always reassemble exactly.
	for ratio := 0; ratio <= 100; ratio++ {
		for _, cents := range []int64{1, 99, 100, 101, 33333, 100000} {
			amount := money.FromCents(cents)
			res, err := ComputeSplit(amount, TypeBasic, nil, ratio)
			require.NoError(t, err)
			require.Equal(t, amount, res.LiftAmount.Add(res.AAAmount))
			require.Equal(t, 100, res.LiftPct+res.AAPct)
		}
	}
}

func TestComputeSplitAdditional(t *testing.T) {
	b := BucketLift
	res, err := ComputeSplit(money.FromCents(5000), TypeAdditional, &b, 60)
	require.NoError(t, err)
	require.NotNil(t, res.Bucket)
	require.Equal(t, BucketLift, *res.Bucket)
	require.Zero(t, res.LiftPct)
	require.Zero(t, res.AAPct)

	_, err = ComputeSplit(money.FromCents(5000), TypeAdditional, nil, 60)
	require.ErrorIs(t, err, ErrValidation)
}

func TestComputeSplitRejectsBadInput(t *testing.T) {
	_, err := ComputeSplit(money.FromCents(0), TypeBasic, nil, 50)
	require.ErrorIs(t, err, ErrValidation)

	_, err = ComputeSplit(money.FromCents(-500), TypeBasic, nil, 50)
	require.ErrorIs(t, err, ErrValidation)

	_, err = ComputeSplit(money.FromCents(100), TypeBasic, nil, 101)
	require.ErrorIs(t, err, ErrValidation)

	_, err = ComputeSplit(money.FromCents(100), ContributionType("WEIRD"), nil, 50)
	require.ErrorIs(t, err, ErrValidation)

	bad := Bucket("SLUSH")
	_, err = ComputeSplit(money.FromCents(100), TypeAdditional, &bad, 50)
	require.ErrorIs(t, err, ErrValidation)
}

func TestComputeSplitRejectsOversizedAmount(t *testing.T) {
	// Above the safe cap the percent multiply would wrap around and hand
	// LIFT a fraction of a percent instead of its ratio.
	_, err := ComputeSplit(money.FromCents(4_000_000_000_000_000_000), TypeBasic, nil, 60)
	require.ErrorIs(t, err, ErrValidation)

	res, err := ComputeSplit(money.MaxSplittable, TypeBasic, nil, 60)
	require.NoError(t, err)
	require.Equal(t, money.MaxSplittable, res.LiftAmount.Add(res.AAAmount))
	require.InEpsilon(t, 0.60*float64(money.MaxSplittable.Cents()), float64(res.LiftAmount.Cents()), 0.01)

	// Additional contributions never multiply, so the cap does not apply.
	b := BucketLift
	_, err = ComputeSplit(money.FromCents(4_000_000_000_000_000_000), TypeAdditional, &b, 60)
	require.NoError(t, err)
}

func TestComputeSplitIdempotent(t *testing.T) {
	first, err := ComputeSplit(money.FromCents(12345), TypeBasic, nil, 47)
	require.NoError(t, err)
	second, err := ComputeSplit(money.FromCents(12345), TypeBasic, nil, 47)
	require.NoError(t, err)
	require.Equal(t, first, second)
}
