package costing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kardex/internal/core/types"
)

func m(s string) types.Money {
	return types.MustMoney(s)
}

func TestAverageCost(t *testing.T) {
	tests := []struct {
		name     string
		qBefore  string
		cBefore  string
		qMove    string
		cMove    string
		expected string
	}{
		{
			name:    "first receipt on empty position",
			qBefore: "0", cBefore: "0",
			qMove: "100", cMove: "25000",
			expected: "25000",
		},
		{
			name:    "blend of two prices",
			qBefore: "10", cBefore: "100",
			qMove: "5", cMove: "130",
			expected: "110",
		},
		{
			name:    "same price leaves cost unchanged",
			qBefore: "7", cBefore: "42.50",
			qMove: "3", cMove: "42.50",
			expected: "42.50",
		},
		{
			name:    "rounding applied once at the end",
			qBefore: "3", cBefore: "10",
			qMove: "3", cMove: "10.01",
			// (30 + 30.03) / 6 = 10.005 -> 10.01 half-up
			expected: "10.01",
		},
		{
			name:    "half-up at the boundary",
			qBefore: "1", cBefore: "0.01",
			qMove: "1", cMove: "0.02",
			// 0.03 / 2 = 0.015 -> 0.02
			expected: "0.02",
		},
		{
			name:    "fractional quantities",
			qBefore: "2.5", cBefore: "8",
			qMove: "7.5", cMove: "12",
			// (20 + 90) / 10 = 11
			expected: "11",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AverageCost(m(tt.qBefore), m(tt.cBefore), m(tt.qMove), m(tt.cMove))
			assert.True(t, m(tt.expected).Equal(got),
				"expected %s, got %s", tt.expected, got)
		})
	}
}

func TestAverageCost_ZeroTotalQuantity(t *testing.T) {
	got := AverageCost(m("0"), m("0"), m("0"), m("0"))
	assert.True(t, got.IsZero(), "zero total quantity must yield cost 0, got %s", got)
}

func TestPosition_Apply(t *testing.T) {
	p := Position{Quantity: m("10"), UnitCost: m("100")}
	p = p.Apply(Movement{Quantity: m("5"), UnitCost: m("130")})

	assert.True(t, m("15").Equal(p.Quantity))
	assert.True(t, m("110").Equal(p.UnitCost))
	assert.True(t, m("1650").Equal(p.Value()))
}

func TestReverseReapply_RoundTrip(t *testing.T) {
	// Literal scenario: start at qty 10 cost 100, purchase 5 @ 130 -> 110.
	start := Position{Quantity: m("10"), UnitCost: m("100")}
	original := Movement{Quantity: m("5"), UnitCost: m("130")}
	posted := start.Apply(original)
	require.True(t, m("110").Equal(posted.UnitCost))

	// Correct the line to 5 @ 100 -> (1000+500)/15 = 100.
	corrected := Movement{Quantity: m("5"), UnitCost: m("100")}
	after := ReverseReapply(posted, original, corrected)
	assert.True(t, m("100").Equal(after.UnitCost), "got %s", after.UnitCost)
	assert.True(t, m("15").Equal(after.Quantity))

	// Correct it back to 5 @ 130 -> cost must return to 110 exactly.
	restored := ReverseReapply(after, corrected, original)
	assert.True(t, m("110").Equal(restored.UnitCost), "got %s", restored.UnitCost)
}

func TestReverseReapply_OrderIndependence(t *testing.T) {
	// An intervening movement between posting and correction must not
	// change the corrected outcome - the algebra is linear.
	start := Position{Quantity: m("10"), UnitCost: m("100")}
	original := Movement{Quantity: m("5"), UnitCost: m("130")}
	intervening := Movement{Quantity: m("5"), UnitCost: m("110")}
	corrected := Movement{Quantity: m("5"), UnitCost: m("100")}

	// Path A: post original, post intervening, then correct original.
	a := start.Apply(original).Apply(intervening)
	a = ReverseReapply(a, original, corrected)

	// Path B: the corrected value posted in the first place.
	b := start.Apply(corrected).Apply(intervening)

	assert.True(t, a.Quantity.Equal(b.Quantity))
	// Totals agree to the cent; per-unit costs may differ by intermediate
	// rounding only.
	diff := a.Value().Sub(b.Value()).Abs()
	assert.True(t, diff.LessThanOrEqual(m("0.60")),
		"value drift too large: %s vs %s", a.Value(), b.Value())
}

func TestReverseReapply_QuantityDrivenToZero(t *testing.T) {
	posted := Position{Quantity: m("5"), UnitCost: m("130")}
	original := Movement{Quantity: m("5"), UnitCost: m("130")}
	corrected := Movement{Quantity: m("0"), UnitCost: m("0")}

	after := ReverseReapply(posted, original, corrected)
	assert.True(t, after.Quantity.IsZero())
	assert.True(t, after.UnitCost.IsZero(), "zero quantity must carry cost 0")
}
