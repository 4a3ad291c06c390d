package portfolio

import (
	"time"

	"github.com/shopspring/decimal"
)

// Portfolio is the cash side of one account's ledger. Cash and borrowed may
// transiently both be positive inside a transaction; the borrow sweep nets
// min(cash, borrowed) to zero before anything is persisted.
type Portfolio struct {
	AccountID string          `json:"account_id"`
	Cash      decimal.Decimal `json:"cash"`
	Borrowed  decimal.Decimal `json:"borrowed"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Position is one (account, asset) row. Quantity is signed: positive long,
// negative short. A position that nets to exactly zero is deleted, never
// stored as zero. AvgEntryPrice is always positive while quantity is nonzero.
type Position struct {
	AccountID     string          `json:"account_id"`
	AssetID       string          `json:"asset_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	AvgEntryPrice decimal.Decimal `json:"avg_entry_price"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
