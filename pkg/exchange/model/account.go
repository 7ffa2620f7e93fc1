package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account tracks one owner's cash balance in the instrument's tick currency.
type Account struct {
	OwnerID   string `gorm:"primaryKey"`
	Balance   decimal.Decimal
	UpdatedAt time.Time
}

func (Account) TableName() string {
	return "accounts"
}

// Position is one owner's signed net quantity in a symbol, with the
// weighted-average cost of the open quantity and cumulative realized P&L.
// Positive quantity is long, negative is short. A position is never
// deleted; it may sit at zero.
type Position struct {
	OwnerID     string `gorm:"primaryKey"`
	Symbol      string `gorm:"primaryKey"`
	Quantity    int64
	AvgPrice    decimal.Decimal
	RealizedPnL decimal.Decimal `gorm:"column:realized_pnl"`
	UpdatedAt   time.Time
}

func (Position) TableName() string {
	return "positions"
}
