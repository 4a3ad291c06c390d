package trading

import (
	"github.com/shopspring/decimal"

	"github.com/wesleyshe/Claw-Street-Bets/internal/portfolio"
	"github.com/wesleyshe/Claw-Street-Bets/internal/types"
)

// applyFill folds one fill into a position. Quantity is signed (long > 0,
// short < 0) and the rules are direction-symmetric:
//   - extending in the current direction re-weights the average entry price
//     by notional,
//   - reducing keeps the old entry price (realized P&L surfaces only through
//     cash),
//   - flipping through zero re-bases the entry price to the fill price,
//   - landing exactly on zero removes the row.
//
// removed reports that the position netted to zero and must be deleted.
func applyFill(pos portfolio.Position, side types.Side, qty, price decimal.Decimal) (portfolio.Position, bool) {
	delta := qty
	if side == types.SideSell {
		delta = qty.Neg()
	}

	old := pos.Quantity
	next := old.Add(delta)

	switch {
	case old.IsZero():
		pos.Quantity = next
		pos.AvgEntryPrice = price
	case next.IsZero():
		return portfolio.Position{}, true
	case old.Sign() == next.Sign() && old.Sign() == delta.Sign():
		// Extension: notional-weighted average of the old book and the fill.
		oldNotional := old.Abs().Mul(pos.AvgEntryPrice)
		fillNotional := delta.Abs().Mul(price)
		pos.AvgEntryPrice = oldNotional.Add(fillNotional).Div(next.Abs())
		pos.Quantity = next
	case old.Sign() == next.Sign():
		// Reduction without flip: entry price untouched.
		pos.Quantity = next
	default:
		// Flipped through zero: the surviving book is all new fill.
		pos.Quantity = next
		pos.AvgEntryPrice = price
	}
	return pos, false
}

// sweepBorrow nets simultaneous cash and debt down to whichever side
// survives, restoring the rest-state invariant: cash > 0 implies
// borrowed == 0 and borrowed > 0 implies cash == 0.
func sweepBorrow(pf *portfolio.Portfolio) {
	if pf.Cash.GreaterThan(decimal.Zero) && pf.Borrowed.GreaterThan(decimal.Zero) {
		repay := decimal.Min(pf.Cash, pf.Borrowed)
		pf.Cash = pf.Cash.Sub(repay)
		pf.Borrowed = pf.Borrowed.Sub(repay)
	}
}
