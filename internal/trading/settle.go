package trading

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wesleyshe/Claw-Street-Bets/internal/portfolio"
	"github.com/wesleyshe/Claw-Street-Bets/internal/prices"
	"github.com/wesleyshe/Claw-Street-Bets/internal/risk"
	"github.com/wesleyshe/Claw-Street-Bets/internal/types"
)

// ledgerState is everything the settlement pipeline mutates: one account's
// portfolio plus its open positions. It lives in memory; the transaction
// wrapper in engine.go loads it, hands it here, and persists whatever comes
// back, or nothing at all.
type ledgerState struct {
	Portfolio portfolio.Portfolio
	Positions []portfolio.Position
}

func (st ledgerState) position(assetID string) (portfolio.Position, bool) {
	for _, p := range st.Positions {
		if p.AssetID == assetID {
			return p, true
		}
	}
	return portfolio.Position{}, false
}

// settlement is the full outcome of one order: the new portfolio, the fill,
// the exact position writes to apply, and the post-settlement valuation.
type settlement struct {
	Portfolio   portfolio.Portfolio
	Trade       Trade
	Upserts     []portfolio.Position
	Deletes     []string
	Post        portfolio.Metrics
	Liquidated  bool
	Liquidation *LiquidationEvent
	Bankrupt    bool
}

// settleOrder runs steps 4-13 of the order pipeline (size resolution through
// liquidation) as a pure function over in-memory state. Funding follows the
// margin-financed variant: a buy draws free cash first and borrows the
// shortfall; a sell must reduce an existing long and repays debt from
// proceeds via the borrow sweep. Shorts never open.
func settleOrder(st ledgerState, ord Order, snap prices.Snapshot, pol risk.Policy, now time.Time) (settlement, error) {
	price, err := snap.Price(ord.AssetID)
	if err != nil {
		return settlement{}, mapPriceError(err)
	}

	var qty decimal.Decimal
	if ord.Notional != nil {
		qty = ord.Notional.Div(price)
	} else {
		qty = *ord.Quantity
	}
	if !qty.GreaterThan(decimal.Zero) {
		return settlement{}, validationErr(KindZeroSizeOrder, "order resolves to zero quantity", "increase the order size")
	}
	notional := qty.Mul(price)

	pf := st.Portfolio
	sweepBorrow(&pf)

	pre, err := portfolio.Compute(pf, st.Positions, snap)
	if err != nil {
		return settlement{}, mapPriceError(err)
	}

	pos, held := st.position(ord.AssetID)
	if !held {
		pos = portfolio.Position{AccountID: pf.AccountID, AssetID: ord.AssetID}
	}

	switch ord.Side {
	case types.SideBuy:
		pf.Cash = pf.Cash.Sub(notional)
		if pf.Cash.IsNegative() {
			pf.Borrowed = pf.Borrowed.Add(pf.Cash.Neg())
			pf.Cash = decimal.Zero
		}
	case types.SideSell:
		if !held || !pos.Quantity.GreaterThan(decimal.Zero) {
			return settlement{}, policyErr(KindNoPosition, fmt.Sprintf("no open %s position to sell", ord.AssetID), "buy before selling; shorting is disabled")
		}
		if qty.GreaterThan(pos.Quantity) {
			return settlement{}, policyErr(KindInsufficientPosition,
				fmt.Sprintf("sell of %s exceeds held %s %s", qty, pos.Quantity, ord.AssetID),
				"reduce the sell size to at most the open quantity")
		}
		pf.Cash = pf.Cash.Add(notional)
	}

	next, removed := applyFill(pos, ord.Side, qty, price)

	positions := make([]portfolio.Position, 0, len(st.Positions)+1)
	for _, p := range st.Positions {
		if p.AssetID != ord.AssetID {
			positions = append(positions, p)
		}
	}
	res := settlement{}
	if removed {
		res.Deletes = append(res.Deletes, ord.AssetID)
	} else {
		next.UpdatedAt = now
		positions = append(positions, next)
		res.Upserts = append(res.Upserts, next)
	}

	sweepBorrow(&pf)

	post, err := portfolio.Compute(pf, positions, snap)
	if err != nil {
		return settlement{}, mapPriceError(err)
	}

	if !post.Equity.GreaterThan(decimal.Zero) {
		return settlement{}, policyErr(KindNonPositiveEquity, "trade would leave equity at or below zero", "reduce the order size or close losing positions")
	}

	if pol.ExposureExceeded(post.GrossNotional, post.Equity) {
		// De-risking is always allowed: only exposure-increasing trades are
		// blocked once over the cap.
		if !post.GrossNotional.LessThan(pre.GrossNotional) {
			return settlement{}, policyErr(KindRiskViolation,
				fmt.Sprintf("gross exposure %s exceeds %sx leverage cap", post.GrossNotional.StringFixed(2), pol.MaxExposureMultiple),
				"reduce exposure or add equity before increasing the position")
		}
	}

	res.Portfolio = pf
	res.Post = post
	res.Trade = Trade{
		AccountID: pf.AccountID,
		AssetID:   ord.AssetID,
		Side:      ord.Side,
		Quantity:  qty,
		Price:     price,
		Notional:  notional,
		ClientRef: ord.ClientRef,
		CreatedAt: now,
	}

	if pol.LiquidationRequired(post.MaintenanceRatio) {
		liquidate(&res, positions, snap, pol, now)
	}

	res.Portfolio.UpdatedAt = now
	return res, nil
}

// liquidate force-closes every open position at the snapshot marks, sweeps
// proceeds into debt, and flips the account bankrupt when nothing is left.
// Prices are guaranteed present: the post-trade valuation already resolved
// every held asset.
func liquidate(res *settlement, positions []portfolio.Position, snap prices.Snapshot, pol risk.Policy, now time.Time) {
	pf := &res.Portfolio
	for _, pos := range positions {
		price, err := snap.Price(pos.AssetID)
		if err != nil {
			continue
		}
		pf.Cash = pf.Cash.Add(pos.Quantity.Mul(price))
	}
	sweepBorrow(pf)

	// Keep any delete already recorded by the fill (a sell that landed the
	// row exactly on zero) and add every remaining open row.
	seen := make(map[string]struct{}, len(positions)+1)
	for _, id := range res.Deletes {
		seen[id] = struct{}{}
	}
	for _, pos := range positions {
		if _, ok := seen[pos.AssetID]; !ok {
			res.Deletes = append(res.Deletes, pos.AssetID)
			seen[pos.AssetID] = struct{}{}
		}
	}
	res.Upserts = nil

	equity := pf.Cash.Sub(pf.Borrowed)
	res.Liquidated = true
	res.Bankrupt = !equity.GreaterThan(decimal.Zero)
	ratio := decimal.Zero
	if res.Post.MaintenanceRatio != nil {
		ratio = *res.Post.MaintenanceRatio
	}
	res.Liquidation = &LiquidationEvent{
		AccountID:        pf.AccountID,
		Equity:           equity,
		MaintenanceRatio: ratio,
		Threshold:        pol.MaintenanceThreshold,
		At:               now,
	}

	// The account is flat now; report the post-liquidation valuation.
	res.Post = portfolio.Metrics{
		Equity:        equity,
		MarketValue:   decimal.Zero,
		GrossNotional: decimal.Zero,
		UnrealizedPnL: decimal.Zero,
	}
}

func mapPriceError(err error) *Error {
	if errors.Is(err, prices.ErrMissingPrice) {
		return infraErr(KindMissingPrice, err.Error(), "the feed has no fresh quote for this asset, retry shortly")
	}
	return infraErr(KindMarketUnavailable, "price feed unavailable", "retry with backoff")
}
