package exchange

import (
	"time"

	"go.uber.org/zap"

	"github.com/joripage/exchange-core/pkg/exchange/model"
	"github.com/joripage/exchange-core/pkg/orderbook"
)

// match runs the taker against the opposite side of the book until it is
// exhausted or no longer crossable, then disposes of the remainder.
// Caller holds eng.mu. Every trade is fully committed — fills, maker
// status, settlement, market data — before the next one is generated, so
// a maker filled by trade n is gone before trade n+1 looks at the book.
func (x *Exchange) match(eng *symbolEngine, taker *model.Order, now time.Time) ([]*model.Trade, []*model.Event, []model.Order) {
	var (
		trades  []*model.Trade
		events  []*model.Event
		reports []model.Order
	)

	oppose := bookSide(taker.Side).Opposite()

	for taker.Remaining() > 0 {
		makerRef, ok := bestOf(eng.book, oppose)
		if !ok {
			break
		}
		if taker.Type == model.OrderTypeLimit && !crosses(taker, makerRef.Price) {
			break
		}

		maker, ok := x.store.GetOrder(makerRef.ID)
		if !ok {
			// a resting order with no backing record means the store and
			// book diverged; evict the entry rather than match against it
			zap.S().Errorw("resting order missing from store", "symbol", eng.symbol, "order_id", makerRef.ID)
			_, _ = eng.book.Remove(makerRef.ID)
			continue
		}

		qty := taker.Remaining()
		if makerRef.Qty < qty {
			qty = makerRef.Qty
		}

		// trade at the resting order's price
		price := maker.Price

		buy, sell := taker, maker
		if taker.Side == model.OrderSideSell {
			buy, sell = maker, taker
		}
		trade := model.NewTrade(x.tradeSeq.Add(1), eng.symbol, buy, sell, qty, price, now)

		taker.Filled += qty
		maker.Filled += qty
		maker.UpdatedAt = now
		if maker.Remaining() == 0 {
			maker.Status = model.OrderStatusFilled
		} else {
			maker.Status = model.OrderStatusPartiallyFilled
		}
		eng.book.ReduceBest(oppose, qty)

		x.ledger.ApplyTrade(trade)
		eng.md.applyTrade(price, qty, now)
		x.store.AddTrade(trade)

		trades = append(trades, trade)
		events = append(events, model.NewTradeEvent(trade), model.NewOrderEvent(*maker, now))
		reports = append(reports, *maker)
	}

	switch {
	case taker.Remaining() == 0:
		taker.Status = model.OrderStatusFilled
	case taker.Type == model.OrderTypeLimit:
		if taker.Filled > 0 {
			taker.Status = model.OrderStatusPartiallyFilled
		} else {
			taker.Status = model.OrderStatusOpen
		}
		// insert cannot fail here: the id is a fresh uuid and admission
		// validated the price as positive
		_ = eng.book.Insert(&orderbook.Order{
			ID:    taker.OrderID,
			Side:  bookSide(taker.Side),
			Price: taker.Price.InexactFloat64(),
			Qty:   taker.Remaining(),
			Seq:   taker.Seq,
		})
	default:
		// a market remainder is never rested; whatever filled is final,
		// even if that is nothing
		taker.Status = model.OrderStatusPartiallyFilled
	}
	taker.UpdatedAt = now

	events = append(events, model.NewOrderEvent(*taker, now))
	reports = append(reports, *taker)

	return trades, events, reports
}

func bookSide(s model.OrderSide) orderbook.Side {
	if s == model.OrderSideSell {
		return orderbook.SELL
	}
	return orderbook.BUY
}

func bestOf(b *orderbook.Book, side orderbook.Side) (*orderbook.Order, bool) {
	if side == orderbook.BUY {
		return b.BestBid()
	}
	return b.BestAsk()
}

func crosses(taker *model.Order, makerPrice float64) bool {
	limit := taker.Price.InexactFloat64()
	if taker.Side == model.OrderSideBuy {
		return makerPrice <= limit
	}
	return makerPrice >= limit
}
