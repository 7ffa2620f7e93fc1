package store

import "github.com/joripage/exchange-core/pkg/exchange/model"

// Store indexes live and historical engine state for lookups: orders by
// id, the client-order-id mapping used by gateways, and the committed
// trade history. The engine remains the source of truth for in-flight
// order state; mutation of stored orders happens only inside the symbol
// sequencer.
type Store interface {
	AddOrder(o *model.Order)
	GetOrder(orderID string) (*model.Order, bool)
	GetOrderIDByClientID(clientOrderID string) (string, bool)

	AddTrade(t *model.Trade)
	RecentTrades(symbol string, limit int) []*model.Trade
	TradesByOwner(ownerID string, limit int) []*model.Trade

	OrderIDsByOwner(ownerID string) []string
}
