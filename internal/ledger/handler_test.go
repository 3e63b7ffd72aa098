package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lift-alumni/liftfund/internal/money"
)

func TestParseAmountDecimalString(t *testing.T) {
	got, err := parseAmount("123.45", 0)
	require.NoError(t, err)
	require.Equal(t, int64(12345), got.Cents())

	got, err = parseAmount("99,90", 0)
	require.NoError(t, err)
	require.Equal(t, int64(9990), got.Cents())
}

func TestParseAmountCentsFallback(t *testing.T) {
	got, err := parseAmount("", 5000)
	require.NoError(t, err)
	require.Equal(t, int64(5000), got.Cents())
}

func TestParseAmountDecimalWinsOverCents(t *testing.T) {
	got, err := parseAmount("10.00", 5000)
	require.NoError(t, err)
	require.Equal(t, int64(1000), got.Cents())
}

func TestParseAmountRejectsBadInput(t *testing.T) {
	_, err := parseAmount("", 0)
	require.ErrorIs(t, err, money.ErrInvalidAmount)

	_, err = parseAmount("abc", 0)
	require.ErrorIs(t, err, money.ErrInvalidAmount)

	_, err = parseAmount("-5.00", 0)
	require.ErrorIs(t, err, money.ErrInvalidAmount)
}
