package pricing

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLineTotalNoDiscount(t *testing.T) {
	cases := []struct {
		name     string
		qty      int64
		price    float64
		expected float64
	}{
		{"single unit", 1, 10.00, 10.00},
		{"multiple units", 3, 19.99, 59.97},
		{"zero price", 5, 0, 0},
		{"fractional price", 7, 0.33, 2.31},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := LineTotal(LineInput{Quantity: tc.qty, UnitPrice: tc.price})
			require.InDelta(t, tc.expected, got, 1e-9)
		})
	}
}

func TestLineTotalNeverNegative(t *testing.T) {
	got := LineTotal(LineInput{Quantity: 1, UnitPrice: 10.00, DiscountAmount: 9999})
	require.Equal(t, 0.00, got)

	got = LineTotal(LineInput{Quantity: 2, UnitPrice: 5.00, DiscountPercent: 150})
	require.Equal(t, 0.00, got)
}

func TestLineTotalPercentBeatsFixed(t *testing.T) {
	// 2 x 50.00 = 100.00, 10% off = 90.00; the 999 fixed amount is ignored.
	got := LineTotal(LineInput{
		Quantity:        2,
		UnitPrice:       50.00,
		DiscountPercent: 10,
		DiscountAmount:  999,
	})
	require.InDelta(t, 90.00, got, 1e-9)
}

func TestLineTotalFixedDiscount(t *testing.T) {
	got := LineTotal(LineInput{Quantity: 4, UnitPrice: 25.00, DiscountAmount: 15.50})
	require.InDelta(t, 84.50, got, 1e-9)
}

func TestLineTotalClampsNegativeInputs(t *testing.T) {
	got := LineTotal(LineInput{Quantity: -3, UnitPrice: 10})
	require.Equal(t, 0.00, got)

	got = LineTotal(LineInput{Quantity: 2, UnitPrice: -10})
	require.Equal(t, 0.00, got)
}

func TestRoundHalfUp(t *testing.T) {
	require.InDelta(t, 0.13, Round(0.125), 1e-9)
	require.InDelta(t, 0.12, Round(0.1249), 1e-9)
	require.Equal(t, 0.00, Round(-5))
}

func TestCalculateEndToEnd(t *testing.T) {
	got := Calculate(DocumentInput{
		Lines: []LineInput{
			{Quantity: 2, UnitPrice: 25.00},
			{Quantity: 1, UnitPrice: 10.00},
		},
		DiscountPercent: 10,
		TaxPercent:      5,
		ShippingAmount:  5.00,
	})

	require.InDelta(t, 60.00, got.Subtotal, 1e-9)
	require.InDelta(t, 6.00, got.DiscountAmount, 1e-9)
	require.InDelta(t, 2.70, got.TaxAmount, 1e-9)
	require.InDelta(t, 5.00, got.ShippingAmount, 1e-9)
	require.InDelta(t, 61.70, got.TotalAmount, 1e-9)
}

func TestCalculateOrderIndependent(t *testing.T) {
	lines := []LineInput{
		{Quantity: 3, UnitPrice: 7.77, DiscountPercent: 5},
		{Quantity: 1, UnitPrice: 102.49, DiscountAmount: 10},
		{Quantity: 12, UnitPrice: 0.99},
		{Quantity: 2, UnitPrice: 49.95, DiscountPercent: 12.5},
	}
	base := Calculate(DocumentInput{Lines: lines, TaxPercent: 8.25})

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]LineInput(nil), lines...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		got := Calculate(DocumentInput{Lines: shuffled, TaxPercent: 8.25})
		require.InDelta(t, base.Subtotal, got.Subtotal, 1e-9)
		require.InDelta(t, base.TaxAmount, got.TaxAmount, 1e-9)
		require.InDelta(t, base.TotalAmount, got.TotalAmount, 1e-9)
	}
}

func TestCalculateDocumentDiscountClamped(t *testing.T) {
	got := Calculate(DocumentInput{
		Lines:          []LineInput{{Quantity: 1, UnitPrice: 20.00}},
		DiscountAmount: 500,
		TaxPercent:     10,
		ShippingAmount: 3.00,
	})

	require.InDelta(t, 20.00, got.Subtotal, 1e-9)
	require.InDelta(t, 20.00, got.DiscountAmount, 1e-9)
	require.InDelta(t, 0.00, got.TaxAmount, 1e-9)
	require.InDelta(t, 3.00, got.TotalAmount, 1e-9)
}

func TestCalculateShippingNotTaxed(t *testing.T) {
	got := Calculate(DocumentInput{
		Lines:          []LineInput{{Quantity: 1, UnitPrice: 100.00}},
		TaxPercent:     10,
		ShippingAmount: 50.00,
	})
	// Tax on 100.00, not 150.00.
	require.InDelta(t, 10.00, got.TaxAmount, 1e-9)
	require.InDelta(t, 160.00, got.TotalAmount, 1e-9)
}

func TestCalculateEmptyDocument(t *testing.T) {
	got := Calculate(DocumentInput{})
	require.Equal(t, Totals{}, got)
}

func TestCalculateNegativeAdjustmentsTreatedAsZero(t *testing.T) {
	got := Calculate(DocumentInput{
		Lines:          []LineInput{{Quantity: 2, UnitPrice: 10.00}},
		DiscountAmount: -5,
		TaxPercent:     -8,
		ShippingAmount: -2,
	})
	require.InDelta(t, 20.00, got.Subtotal, 1e-9)
	require.InDelta(t, 0.00, got.DiscountAmount, 1e-9)
	require.InDelta(t, 0.00, got.TaxAmount, 1e-9)
	require.InDelta(t, 20.00, got.TotalAmount, 1e-9)
}
