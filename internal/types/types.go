package types

type Side string

type ActivityKind string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

const (
	ActivityTrade       ActivityKind = "trade"
	ActivityLiquidation ActivityKind = "liquidation"
	ActivityRegistered  ActivityKind = "registered"
)

func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}
