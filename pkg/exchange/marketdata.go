package exchange

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/joripage/exchange-core/pkg/exchange/model"
	"github.com/joripage/exchange-core/pkg/orderbook"
)

// marketData aggregates committed trades for one symbol. It is owned by
// the symbol sequencer and mutated only after a trade commits. Best bid
// and ask are intentionally absent here: they are recomputed from the live
// book at snapshot time, so cancels that produce no trade can never leave
// them stale.
type marketData struct {
	symbol string

	openPrice decimal.Decimal
	lastPrice decimal.Decimal
	highPrice decimal.Decimal
	lowPrice  decimal.Decimal
	volume    int64
	hasTrade  bool
	updatedAt time.Time
}

// newMarketData seeds the session. A zero openPrice means the session
// opens on the first trade.
func newMarketData(symbol string, openPrice decimal.Decimal) *marketData {
	return &marketData{
		symbol:    symbol,
		openPrice: openPrice,
		lastPrice: openPrice,
		highPrice: openPrice,
		lowPrice:  openPrice,
	}
}

func (m *marketData) applyTrade(price decimal.Decimal, qty int64, ts time.Time) {
	if !m.hasTrade {
		m.hasTrade = true
		if m.openPrice.IsZero() {
			m.openPrice = price
		}
		m.highPrice = price
		m.lowPrice = price
	} else {
		if price.GreaterThan(m.highPrice) {
			m.highPrice = price
		}
		if price.LessThan(m.lowPrice) {
			m.lowPrice = price
		}
	}

	m.lastPrice = price
	m.volume += qty
	m.updatedAt = ts
}

// snapshot derives the full market-data view, recomputing bid/ask from the
// book. Caller holds the symbol sequencer.
func (m *marketData) snapshot(book *orderbook.Book) *model.MarketDataSnapshot {
	snap := &model.MarketDataSnapshot{
		Symbol:    m.symbol,
		LastPrice: m.lastPrice,
		OpenPrice: m.openPrice,
		HighPrice: m.highPrice,
		LowPrice:  m.lowPrice,
		Volume:    m.volume,
		UpdatedAt: m.updatedAt,
	}

	if bid, ok := book.BestBid(); ok {
		snap.BidPrice = decimal.NewNullDecimal(decimal.NewFromFloat(bid.Price))
	}
	if ask, ok := book.BestAsk(); ok {
		snap.AskPrice = decimal.NewNullDecimal(decimal.NewFromFloat(ask.Price))
	}

	snap.Change = m.lastPrice.Sub(m.openPrice)
	if !m.openPrice.IsZero() {
		snap.ChangePercent = snap.Change.Div(m.openPrice).Mul(decimal.NewFromInt(100))
	}

	return snap
}
