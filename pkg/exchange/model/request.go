package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubmitOrder is an order admission request as it arrives from a gateway.
// OwnerID has already been verified by the identity layer.
type SubmitOrder struct {
	ClientOrderID string
	OwnerID       string
	Symbol        string
	Side          OrderSide
	Type          OrderType
	Price         decimal.Decimal
	Quantity      int64
	TransactTime  time.Time
}

// SubmitResult reports the disposition of an admitted order: its terminal
// or resting status and every trade the admission produced, in commit
// order.
type SubmitResult struct {
	Order  Order
	Trades []*Trade
}

type CancelOrder struct {
	OrderID string
	OwnerID string
}

type CancelResult struct {
	Order Order
}

// BookSnapshot is a depth view of one symbol's book.
type BookSnapshot struct {
	Symbol string      `json:"symbol"`
	Bids   []BookLevel `json:"bids"`
	Asks   []BookLevel `json:"asks"`
}

type BookLevel struct {
	Price float64 `json:"price"`
	Qty   int64   `json:"qty"`
	Count int     `json:"count"`
}
