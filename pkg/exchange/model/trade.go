package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Trade is the immutable record of one execution. Seq is the global trade
// sequence assigned at commit and defines the canonical trade history
// ordering.
type Trade struct {
	TradeID string `gorm:"primaryKey"`
	Seq     uint64

	Symbol      string
	BuyOrderID  string
	SellOrderID string
	BuyOwnerID  string
	SellOwnerID string

	Quantity int64
	Price    decimal.Decimal
	Notional decimal.Decimal

	ExecutedAt time.Time
}

func (Trade) TableName() string {
	return "trades"
}

func NewTrade(seq uint64, symbol string, buy, sell *Order, qty int64, price decimal.Decimal, ts time.Time) *Trade {
	return &Trade{
		TradeID:     uuid.New().String(),
		Seq:         seq,
		Symbol:      symbol,
		BuyOrderID:  buy.OrderID,
		SellOrderID: sell.OrderID,
		BuyOwnerID:  buy.OwnerID,
		SellOwnerID: sell.OwnerID,
		Quantity:    qty,
		Price:       price,
		Notional:    price.Mul(decimal.NewFromInt(qty)),
		ExecutedAt:  ts,
	}
}
