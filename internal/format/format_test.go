package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCurrencyRoundTrip(t *testing.T) {
	cases := []struct {
		code   string
		amount float64
	}{
		{"USD", 61.70},
		{"EUR", 1234.56},
		{"USD", 0.00},
		{"EUR", 9.99},
	}
	for _, tc := range cases {
		formatted := Currency(tc.amount, tc.code)
		require.NotEmpty(t, formatted)

		parsed, err := ParseCurrency(formatted)
		require.NoError(t, err)
		require.InDelta(t, tc.amount, parsed, 0.005, "round trip for %s %v -> %q", tc.code, tc.amount, formatted)
	}
}

func TestCurrencyUnknownCodeFallsBack(t *testing.T) {
	got := Currency(12.34, "ZZZ")
	require.Contains(t, got, "12.34")
}

func TestParseCurrencyRejectsEmpty(t *testing.T) {
	_, err := ParseCurrency("free")
	require.Error(t, err)
}

func TestDate(t *testing.T) {
	got := Date(time.Date(2026, 8, 30, 15, 4, 5, 0, time.UTC))
	require.Equal(t, "Aug 30, 2026", got)
}
