package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		name string
		qty  string
		min  string
		max  *decimal.Decimal
		want Status
	}{
		{name: "empty", qty: "0", min: "10", want: StatusOutOfStock},
		{name: "at minimum", qty: "10", min: "10", want: StatusInStock},
		{name: "below minimum", qty: "9", min: "10", want: StatusLowStock},
		{name: "at maximum", qty: "100", min: "10", max: decPtr("100"), want: StatusInStock},
		{name: "above maximum", qty: "101", min: "10", max: decPtr("100"), want: StatusOverstock},
		{name: "no maximum", qty: "1000000", min: "10", want: StatusInStock},
		{name: "fractional low", qty: "0.001", min: "0.5", want: StatusLowStock},
		{name: "zero minimum", qty: "0.001", min: "0", want: StatusInStock},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, StatusFor(dec(tc.qty), dec(tc.min), tc.max))
		})
	}
}

func TestStockValueIsPreTax(t *testing.T) {
	require.True(t, dec("37.5").Equal(StockValue(dec("2.5"), dec("15"))))
	require.True(t, StockValue(dec("0"), dec("15")).IsZero())
}

func TestPercentageOfCapacity(t *testing.T) {
	two := decimal.NewFromInt(DefaultCapacityMultiplier)

	require.True(t, dec("50").Equal(PercentageOfCapacity(dec("50"), dec("10"), decPtr("100"), two)))
	require.True(t, dec("75").Equal(PercentageOfCapacity(dec("15"), dec("10"), nil, two)))
	require.True(t, dec("100").Equal(PercentageOfCapacity(dec("500"), dec("10"), nil, two)))
	require.True(t, PercentageOfCapacity(dec("5"), dec("0"), nil, two).IsZero())
	require.True(t, dec("50").Equal(PercentageOfCapacity(dec("15"), dec("10"), nil, dec("3"))))
}
