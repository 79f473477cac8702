// Package costing implements the weighted-average cost arithmetic.
// Everything in this package is pure: no storage, no clock, no context.
package costing

import (
	"kardex/internal/core/types"
)

// AverageCost returns the weighted-average unit cost after an inbound
// movement is applied to the current position.
//
//	valueBefore   = quantityBefore * costBefore
//	valueMovement = quantityMovement * costMovement
//	costAfter     = round2((valueBefore + valueMovement) / quantityAfter)
//
// Rounding happens once, at the final division, never on intermediate sums.
// A zero resulting quantity yields a cost of zero, not NaN.
func AverageCost(quantityBefore, costBefore, quantityMovement, costMovement types.Money) types.Money {
	quantityAfter := quantityBefore.Add(quantityMovement)
	if quantityAfter.IsZero() {
		return types.Zero()
	}

	valueBefore := quantityBefore.Mul(costBefore)
	valueMovement := quantityMovement.Mul(costMovement)

	return types.Round2(valueBefore.Add(valueMovement).Div(quantityAfter))
}

// Movement is one quantity/cost contribution to an article's position.
type Movement struct {
	Quantity types.Money
	UnitCost types.Money
}

// Value returns quantity * unit cost.
func (m Movement) Value() types.Money {
	return m.Quantity.Mul(m.UnitCost)
}

// Position is an article's aggregate state: on-hand quantity and the
// weighted-average unit cost it is carried at.
type Position struct {
	Quantity types.Money
	UnitCost types.Money
}

// Value returns the total carried value of the position.
func (p Position) Value() types.Money {
	return p.Quantity.Mul(p.UnitCost)
}

// Apply returns the position after an inbound movement.
func (p Position) Apply(m Movement) Position {
	return Position{
		Quantity: p.Quantity.Add(m.Quantity),
		UnitCost: AverageCost(p.Quantity, p.UnitCost, m.Quantity, m.UnitCost),
	}
}

// ReverseReapply corrects an already-applied movement against the current
// position. It algebraically removes the original movement's contribution
// and adds the corrected one:
//
//	valueWithout = current.Value() - original.Value()
//	valueNew     = valueWithout + corrected.Value()
//	quantityNew  = current.Quantity - original.Quantity + corrected.Quantity
//	costNew      = quantityNew <= 0 ? 0 : round2(valueNew / quantityNew)
//
// Weighted-average cost is linear in (quantity, value), so the result is
// independent of any movements applied between the original posting and the
// correction, as long as those are left untouched.
func ReverseReapply(current Position, original, corrected Movement) Position {
	valueWithout := current.Value().Sub(original.Value())
	quantityWithout := current.Quantity.Sub(original.Quantity)

	valueNew := valueWithout.Add(corrected.Value())
	quantityNew := quantityWithout.Add(corrected.Quantity)

	if quantityNew.Sign() <= 0 {
		return Position{Quantity: quantityNew, UnitCost: types.Zero()}
	}

	return Position{
		Quantity: quantityNew,
		UnitCost: types.Round2(valueNew.Div(quantityNew)),
	}
}
