package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventTypeTrade      EventType = "trade"
	EventTypeOrder      EventType = "order"
	EventTypeBook       EventType = "book"
	EventTypeMarketData EventType = "marketdata"
)

// Event is the immutable record handed to broadcasters and the
// write-behind persistence worker after an operation commits. Exactly one
// of the payload fields is set, matching Type.
type Event struct {
	EventID   string    `json:"event_id"`
	Type      EventType `json:"type"`
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`

	Trade      *TradeEvent         `json:"trade,omitempty"`
	Order      *OrderEvent         `json:"order,omitempty"`
	Book       *BookSnapshot       `json:"book,omitempty"`
	MarketData *MarketDataSnapshot `json:"market_data,omitempty"`
}

type TradeEvent struct {
	TradeID     string          `json:"trade_id"`
	Seq         uint64          `json:"seq"`
	Symbol      string          `json:"symbol"`
	BuyOrderID  string          `json:"buy_order_id"`
	SellOrderID string          `json:"sell_order_id"`
	BuyOwnerID  string          `json:"buy_owner_id"`
	SellOwnerID string          `json:"sell_owner_id"`
	Quantity    int64           `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Notional    decimal.Decimal `json:"notional"`
	ExecutedAt  time.Time       `json:"executed_at"`
}

// OrderEvent is a point-in-time copy of an order's state, taken at commit.
type OrderEvent struct {
	OrderID       string          `json:"order_id"`
	ClientOrderID string          `json:"client_order_id"`
	OwnerID       string          `json:"owner_id"`
	Symbol        string          `json:"symbol"`
	Side          OrderSide       `json:"side"`
	Type          OrderType       `json:"order_type"`
	Status        OrderStatus     `json:"status"`
	Price         decimal.Decimal `json:"price"`
	Quantity      int64           `json:"quantity"`
	Filled        int64           `json:"filled"`
	Seq           uint64          `json:"seq"`
}

func NewTradeEvent(t *Trade) *Event {
	return &Event{
		EventID:   uuid.New().String(),
		Type:      EventTypeTrade,
		Symbol:    t.Symbol,
		Timestamp: t.ExecutedAt,
		Trade: &TradeEvent{
			TradeID:     t.TradeID,
			Seq:         t.Seq,
			Symbol:      t.Symbol,
			BuyOrderID:  t.BuyOrderID,
			SellOrderID: t.SellOrderID,
			BuyOwnerID:  t.BuyOwnerID,
			SellOwnerID: t.SellOwnerID,
			Quantity:    t.Quantity,
			Price:       t.Price,
			Notional:    t.Notional,
			ExecutedAt:  t.ExecutedAt,
		},
	}
}

func NewOrderEvent(o Order, ts time.Time) *Event {
	return &Event{
		EventID:   uuid.New().String(),
		Type:      EventTypeOrder,
		Symbol:    o.Symbol,
		Timestamp: ts,
		Order: &OrderEvent{
			OrderID:       o.OrderID,
			ClientOrderID: o.ClientOrderID,
			OwnerID:       o.OwnerID,
			Symbol:        o.Symbol,
			Side:          o.Side,
			Type:          o.Type,
			Status:        o.Status,
			Price:         o.Price,
			Quantity:      o.Quantity,
			Filled:        o.Filled,
			Seq:           o.Seq,
		},
	}
}

func NewBookEvent(snapshot *BookSnapshot, ts time.Time) *Event {
	return &Event{
		EventID:   uuid.New().String(),
		Type:      EventTypeBook,
		Symbol:    snapshot.Symbol,
		Timestamp: ts,
		Book:      snapshot,
	}
}

func NewMarketDataEvent(snapshot *MarketDataSnapshot, ts time.Time) *Event {
	return &Event{
		EventID:   uuid.New().String(),
		Type:      EventTypeMarketData,
		Symbol:    snapshot.Symbol,
		Timestamp: ts,
		MarketData: snapshot,
	}
}
