package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "Pending"
	OrderStatusOpen            OrderStatus = "Open"
	OrderStatusPartiallyFilled OrderStatus = "PartiallyFilled"
	OrderStatusFilled          OrderStatus = "Filled"
	OrderStatusCancelled       OrderStatus = "Cancelled"
)

type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

type OrderType string

const (
	OrderTypeLimit  OrderType = "LIMIT"
	OrderTypeMarket OrderType = "MARKET"
)

// Order is the engine-owned record of one submitted order. While the order
// is live it is mutated only inside its symbol sequencer; once terminal it
// is read-only history.
type Order struct {
	OrderID       string `gorm:"primaryKey"`
	ClientOrderID string
	OwnerID       string
	Symbol        string
	Side          OrderSide
	Type          OrderType

	// Price is the limit price; zero for market orders.
	Price    decimal.Decimal
	Quantity int64
	Filled   int64

	Status OrderStatus

	// Seq is the monotonic admission sequence assigned at intake. It breaks
	// price ties instead of wall-clock time.
	Seq uint64

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Order) TableName() string {
	return "orders"
}

func (o *Order) Remaining() int64 {
	return o.Quantity - o.Filled
}

// IsTerminal reports whether the order can never change again. A partially
// filled market order is terminal: its remainder was dropped at matching
// time instead of resting, so nothing is left to fill or cancel.
func (o *Order) IsTerminal() bool {
	switch o.Status {
	case OrderStatusFilled, OrderStatusCancelled:
		return true
	case OrderStatusPartiallyFilled:
		return o.Type == OrderTypeMarket
	}
	return false
}

// CanCancel reports whether a cancel request may still act on the order.
func (o *Order) CanCancel() bool {
	return !o.IsTerminal()
}
