package store

import (
	"sync"

	"github.com/joripage/exchange-core/pkg/exchange/model"
)

type InMemoryStore struct {
	mu sync.RWMutex

	orders        map[string]*model.Order
	byClientID    map[string]string   // client order id -> order id
	byOwner       map[string][]string // owner id -> order ids, admission order
	trades        map[string][]*model.Trade
	tradesByOwner map[string][]*model.Trade
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		orders:        make(map[string]*model.Order),
		byClientID:    make(map[string]string),
		byOwner:       make(map[string][]string),
		trades:        make(map[string][]*model.Trade),
		tradesByOwner: make(map[string][]*model.Trade),
	}
}

func (s *InMemoryStore) AddOrder(o *model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders[o.OrderID] = o
	if o.ClientOrderID != "" {
		s.byClientID[o.ClientOrderID] = o.OrderID
	}
	s.byOwner[o.OwnerID] = append(s.byOwner[o.OwnerID], o.OrderID)
}

func (s *InMemoryStore) GetOrder(orderID string) (*model.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[orderID]
	return o, ok
}

func (s *InMemoryStore) GetOrderIDByClientID(clientOrderID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byClientID[clientOrderID]
	return id, ok
}

func (s *InMemoryStore) AddTrade(t *model.Trade) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.trades[t.Symbol] = append(s.trades[t.Symbol], t)
	s.tradesByOwner[t.BuyOwnerID] = append(s.tradesByOwner[t.BuyOwnerID], t)
	if t.SellOwnerID != t.BuyOwnerID {
		s.tradesByOwner[t.SellOwnerID] = append(s.tradesByOwner[t.SellOwnerID], t)
	}
}

// RecentTrades returns up to limit trades for symbol, most recent first.
func (s *InMemoryStore) RecentTrades(symbol string, limit int) []*model.Trade {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return lastN(s.trades[symbol], limit)
}

func (s *InMemoryStore) TradesByOwner(ownerID string, limit int) []*model.Trade {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return lastN(s.tradesByOwner[ownerID], limit)
}

func (s *InMemoryStore) OrderIDsByOwner(ownerID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byOwner[ownerID]
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

func lastN(trades []*model.Trade, limit int) []*model.Trade {
	if limit <= 0 || limit > len(trades) {
		limit = len(trades)
	}

	out := make([]*model.Trade, 0, limit)
	for i := len(trades) - 1; i >= len(trades)-limit; i-- {
		out = append(out, trades[i])
	}
	return out
}
