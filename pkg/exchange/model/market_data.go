package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketDataSnapshot is the per-symbol view derived from committed trades
// and live book state. Bid and ask are recomputed from the book on every
// read, never stored, so they cannot go stale after a cancel.
type MarketDataSnapshot struct {
	Symbol string `json:"symbol"`

	LastPrice decimal.Decimal     `json:"last_price"`
	BidPrice  decimal.NullDecimal `json:"bid_price"`
	AskPrice  decimal.NullDecimal `json:"ask_price"`

	OpenPrice decimal.Decimal `json:"open_price"`
	HighPrice decimal.Decimal `json:"high_price"`
	LowPrice  decimal.Decimal `json:"low_price"`
	Volume    int64           `json:"volume"`

	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"change_percent"`

	UpdatedAt time.Time `json:"updated_at"`
}
