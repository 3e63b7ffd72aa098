package money

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitPercentConservation(t *testing.T) {
	cases := []struct {
		amount int64
		pct    int
		share  int64
	}{
		{100000, 33, 33000},
		{100000, 60, 60000},
		{1, 50, 1},   // half-up
		{99, 33, 33}, // 32.67 rounds up
		{100, 0, 0},
		{100, 100, 100},
	}
	for _, tc := range cases {
		share, rem := FromCents(tc.amount).SplitPercent(tc.pct)
		require.Equal(t, tc.share, share.Cents(), "amount=%d pct=%d", tc.amount, tc.pct)
		require.Equal(t, tc.amount, share.Cents()+rem.Cents(), "split must conserve amount")
	}
}

func TestSplitPercentNeverLeaks(t *testing.T) {
	for pct := 0; pct <= 100; pct++ {
		for _, amount := range []int64{1, 7, 99, 100, 101, 12345, 1000000} {
			share, rem := FromCents(amount).SplitPercent(pct)
			require.Equal(t, amount, share.Cents()+rem.Cents())
			require.GreaterOrEqual(t, share.Cents(), int64(0))
			require.GreaterOrEqual(t, rem.Cents(), int64(0))
		}
	}
}

func TestSplitPercentAtMaxSplittable(t *testing.T) {
	share, rem := MaxSplittable.SplitPercent(60)
	require.Equal(t, MaxSplittable.Cents(), share.Cents()+rem.Cents())
	// The rounded share stays within half a cent of the exact 60%.
	exact := MaxSplittable.Cents() / 100 * 60
	require.InDelta(t, exact, share.Cents(), 100)
	require.Greater(t, share.Cents(), rem.Cents())
}

func TestSplittableBounds(t *testing.T) {
	require.True(t, FromCents(1).Splittable())
	require.True(t, MaxSplittable.Splittable())
	require.False(t, (MaxSplittable + 1).Splittable())
	require.False(t, FromCents(4_000_000_000_000_000_000).Splittable())
	require.False(t, FromCents(0).Splittable())
	require.False(t, FromCents(-1).Splittable())
}

func TestParseDecimal(t *testing.T) {
	cases := map[string]int64{
		"12.34":  1234,
		"12,34":  1234,
		"12":     1200,
		"0.01":   1,
		"12.345": 1234,
		"12.346": 1235,
	}
	for in, want := range cases {
		got, err := ParseDecimal(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got.Cents(), in)
	}

	for _, in := range []string{"", "0", "-5", "+3", "abc", "1.2.3", "0.00"} {
		_, err := ParseDecimal(in)
		require.ErrorIs(t, err, ErrInvalidAmount, in)
	}
}

func TestString(t *testing.T) {
	require.Equal(t, "1234.50", FromCents(123450).String())
	require.Equal(t, "-0.05", FromCents(-5).String())
	require.Equal(t, "0.00", FromCents(0).String())
}
