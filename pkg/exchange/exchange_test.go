package exchange

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joripage/exchange-core/pkg/exchange/broadcast"
	"github.com/joripage/exchange-core/pkg/exchange/model"
	"github.com/joripage/exchange-core/pkg/exchange/store"
)

func newTestExchange(t *testing.T, openingBalance int64) *Exchange {
	t.Helper()
	cfg := &Config{
		Symbols:        []SymbolConfig{{Symbol: "AAPL"}},
		OpeningBalance: decimal.NewFromInt(openingBalance),
	}
	ledger := NewLedger(cfg.OpeningBalance)
	dispatcher := broadcast.NewDispatcher(broadcast.DispatcherConfig{})
	return New(cfg, ledger, store.NewInMemoryStore(), dispatcher)
}

func limitOrder(owner, side string, qty int64, price float64) *model.SubmitOrder {
	return &model.SubmitOrder{
		OwnerID:  owner,
		Symbol:   "AAPL",
		Side:     model.OrderSide(side),
		Type:     model.OrderTypeLimit,
		Price:    decimal.NewFromFloat(price),
		Quantity: qty,
	}
}

func marketOrder(owner, side string, qty int64) *model.SubmitOrder {
	return &model.SubmitOrder{
		OwnerID:  owner,
		Symbol:   "AAPL",
		Side:     model.OrderSide(side),
		Type:     model.OrderTypeMarket,
		Quantity: qty,
	}
}

func TestSubmitLimitBuyRests(t *testing.T) {
	x := newTestExchange(t, 10_000)
	ctx := context.Background()

	res, err := x.SubmitOrder(ctx, limitOrder("alice", "BUY", 10, 100))
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusOpen, res.Order.Status)
	assert.Empty(t, res.Trades)

	snap, err := x.BookSnapshot("AAPL", 10)
	require.NoError(t, err)
	require.Len(t, snap.Bids, 1)
	assert.Equal(t, model.BookLevel{Price: 100, Qty: 10, Count: 1}, snap.Bids[0])
	assert.Empty(t, snap.Asks)
}

func TestLimitOrdersCross(t *testing.T) {
	x := newTestExchange(t, 10_000)
	ctx := context.Background()

	buy, err := x.SubmitOrder(ctx, limitOrder("alice", "BUY", 10, 100))
	require.NoError(t, err)

	sell, err := x.SubmitOrder(ctx, limitOrder("bob", "SELL", 10, 100))
	require.NoError(t, err)

	require.Len(t, sell.Trades, 1)
	trade := sell.Trades[0]
	assert.Equal(t, int64(10), trade.Quantity)
	assert.True(t, trade.Price.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, buy.Order.OrderID, trade.BuyOrderID)
	assert.Equal(t, sell.Order.OrderID, trade.SellOrderID)

	assert.Equal(t, model.OrderStatusFilled, sell.Order.Status)
	got, err := x.GetOrder(buy.Order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusFilled, got.Status)

	// 10 @ 100 moves 1000 from buyer to seller
	assert.True(t, x.Ledger().Balance("alice").Equal(decimal.NewFromInt(9_000)))
	assert.True(t, x.Ledger().Balance("bob").Equal(decimal.NewFromInt(11_000)))

	snap, err := x.BookSnapshot("AAPL", 10)
	require.NoError(t, err)
	assert.Empty(t, snap.Bids)
	assert.Empty(t, snap.Asks)
}

func TestTradeAtRestingOrderPrice(t *testing.T) {
	x := newTestExchange(t, 10_000)
	ctx := context.Background()

	_, err := x.SubmitOrder(ctx, limitOrder("alice", "BUY", 5, 101))
	require.NoError(t, err)

	sell, err := x.SubmitOrder(ctx, limitOrder("bob", "SELL", 8, 99))
	require.NoError(t, err)

	require.Len(t, sell.Trades, 1)
	assert.Equal(t, int64(5), sell.Trades[0].Quantity)
	assert.True(t, sell.Trades[0].Price.Equal(decimal.NewFromInt(101)), "trade must execute at the resting buy's price")

	assert.Equal(t, model.OrderStatusPartiallyFilled, sell.Order.Status)
	assert.Equal(t, int64(5), sell.Order.Filled)

	snap, err := x.BookSnapshot("AAPL", 10)
	require.NoError(t, err)
	assert.Empty(t, snap.Bids)
	require.Len(t, snap.Asks, 1)
	assert.Equal(t, model.BookLevel{Price: 99, Qty: 3, Count: 1}, snap.Asks[0])
}

func TestMarketBuySweepsBook(t *testing.T) {
	x := newTestExchange(t, 10_000)
	ctx := context.Background()

	_, err := x.SubmitOrder(ctx, limitOrder("bob", "SELL", 7, 100))
	require.NoError(t, err)
	_, err = x.SubmitOrder(ctx, limitOrder("bob", "SELL", 5, 101))
	require.NoError(t, err)

	res, err := x.SubmitOrder(ctx, marketOrder("alice", "BUY", 20))
	require.NoError(t, err)

	require.Len(t, res.Trades, 2)
	assert.Equal(t, int64(7), res.Trades[0].Quantity)
	assert.True(t, res.Trades[0].Price.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, int64(5), res.Trades[1].Quantity)
	assert.True(t, res.Trades[1].Price.Equal(decimal.NewFromInt(101)))

	assert.Equal(t, model.OrderStatusPartiallyFilled, res.Order.Status)
	assert.Equal(t, int64(12), res.Order.Filled)

	// the remainder must not rest
	snap, err := x.BookSnapshot("AAPL", 10)
	require.NoError(t, err)
	assert.Empty(t, snap.Bids)
	assert.Empty(t, snap.Asks)
}

func TestMarketOrderEmptyBook(t *testing.T) {
	x := newTestExchange(t, 10_000)

	res, err := x.SubmitOrder(context.Background(), marketOrder("alice", "BUY", 20))
	require.NoError(t, err)
	assert.Empty(t, res.Trades)
	assert.Equal(t, model.OrderStatusPartiallyFilled, res.Order.Status)
	assert.Equal(t, int64(0), res.Order.Filled)
	assert.True(t, res.Order.IsTerminal())
}

func TestMarketPartialFillIsFinal(t *testing.T) {
	x := newTestExchange(t, 10_000)
	ctx := context.Background()

	_, err := x.SubmitOrder(ctx, limitOrder("bob", "SELL", 10, 100))
	require.NoError(t, err)

	res, err := x.SubmitOrder(ctx, marketOrder("alice", "BUY", 30))
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPartiallyFilled, res.Order.Status)
	assert.Equal(t, int64(10), res.Order.Filled)
	assert.True(t, res.Order.IsTerminal())

	// the dropped remainder is dead: not open, not cancellable
	assert.Empty(t, x.OpenOrders("alice"))
	_, err = x.CancelOrder(ctx, &model.CancelOrder{OrderID: res.Order.OrderID, OwnerID: "alice"})
	assert.ErrorIs(t, err, ErrNotCancellable)
}

func TestInsufficientBalance(t *testing.T) {
	x := newTestExchange(t, 500)

	_, err := x.SubmitOrder(context.Background(), limitOrder("alice", "BUY", 10, 100))
	require.ErrorIs(t, err, ErrInsufficientBalance)

	assert.Empty(t, x.OpenOrders("alice"))
	assert.Empty(t, x.RecentTrades("AAPL", 10))
}

func TestSellRequiresNoBalance(t *testing.T) {
	x := newTestExchange(t, 0)

	res, err := x.SubmitOrder(context.Background(), limitOrder("alice", "SELL", 10, 100))
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusOpen, res.Order.Status)
}

func TestPriceTimePriority(t *testing.T) {
	x := newTestExchange(t, 100_000)
	ctx := context.Background()

	first, err := x.SubmitOrder(ctx, limitOrder("bob", "SELL", 5, 100))
	require.NoError(t, err)
	second, err := x.SubmitOrder(ctx, limitOrder("carol", "SELL", 5, 100))
	require.NoError(t, err)
	// better price beats earlier admission
	cheaper, err := x.SubmitOrder(ctx, limitOrder("dave", "SELL", 5, 99))
	require.NoError(t, err)

	res, err := x.SubmitOrder(ctx, marketOrder("alice", "BUY", 15))
	require.NoError(t, err)

	require.Len(t, res.Trades, 3)
	assert.Equal(t, cheaper.Order.OrderID, res.Trades[0].SellOrderID)
	assert.Equal(t, first.Order.OrderID, res.Trades[1].SellOrderID)
	assert.Equal(t, second.Order.OrderID, res.Trades[2].SellOrderID)
}

func TestCancelOrder(t *testing.T) {
	x := newTestExchange(t, 10_000)
	ctx := context.Background()

	res, err := x.SubmitOrder(ctx, limitOrder("alice", "BUY", 10, 100))
	require.NoError(t, err)

	cancelled, err := x.CancelOrder(ctx, &model.CancelOrder{OrderID: res.Order.OrderID, OwnerID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, cancelled.Order.Status)

	snap, err := x.BookSnapshot("AAPL", 10)
	require.NoError(t, err)
	assert.Empty(t, snap.Bids)

	_, err = x.CancelOrder(ctx, &model.CancelOrder{OrderID: res.Order.OrderID, OwnerID: "alice"})
	assert.ErrorIs(t, err, ErrNotCancellable)
}

func TestCancelUnknownOrder(t *testing.T) {
	x := newTestExchange(t, 10_000)

	_, err := x.CancelOrder(context.Background(), &model.CancelOrder{OrderID: "nope", OwnerID: "alice"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelWrongOwner(t *testing.T) {
	x := newTestExchange(t, 10_000)
	ctx := context.Background()

	res, err := x.SubmitOrder(ctx, limitOrder("alice", "BUY", 10, 100))
	require.NoError(t, err)

	// ownership mismatch is indistinguishable from a missing order
	_, err = x.CancelOrder(ctx, &model.CancelOrder{OrderID: res.Order.OrderID, OwnerID: "mallory"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelFilledOrder(t *testing.T) {
	x := newTestExchange(t, 10_000)
	ctx := context.Background()

	buy, err := x.SubmitOrder(ctx, limitOrder("alice", "BUY", 10, 100))
	require.NoError(t, err)
	_, err = x.SubmitOrder(ctx, limitOrder("bob", "SELL", 10, 100))
	require.NoError(t, err)

	_, err = x.CancelOrder(ctx, &model.CancelOrder{OrderID: buy.Order.OrderID, OwnerID: "alice"})
	assert.ErrorIs(t, err, ErrNotCancellable)
}

func TestSubmitValidation(t *testing.T) {
	x := newTestExchange(t, 10_000)
	ctx := context.Background()

	cases := []struct {
		name string
		req  *model.SubmitOrder
	}{
		{"unknown symbol", &model.SubmitOrder{OwnerID: "a", Symbol: "MSFT", Side: model.OrderSideBuy, Type: model.OrderTypeLimit, Price: decimal.NewFromInt(1), Quantity: 1}},
		{"zero quantity", limitOrder("a", "BUY", 0, 100)},
		{"negative quantity", limitOrder("a", "BUY", -5, 100)},
		{"limit without price", &model.SubmitOrder{OwnerID: "a", Symbol: "AAPL", Side: model.OrderSideBuy, Type: model.OrderTypeLimit, Quantity: 1}},
		{"unknown side", &model.SubmitOrder{OwnerID: "a", Symbol: "AAPL", Side: "SHORT", Type: model.OrderTypeLimit, Price: decimal.NewFromInt(1), Quantity: 1}},
		{"unknown type", &model.SubmitOrder{OwnerID: "a", Symbol: "AAPL", Side: model.OrderSideBuy, Type: "STOP", Price: decimal.NewFromInt(1), Quantity: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := x.SubmitOrder(ctx, tc.req)
			assert.ErrorIs(t, err, ErrInvalidOrder)
		})
	}
}

func TestDuplicateClientOrderID(t *testing.T) {
	x := newTestExchange(t, 10_000)
	ctx := context.Background()

	req := limitOrder("alice", "BUY", 1, 100)
	req.ClientOrderID = "cl-1"
	_, err := x.SubmitOrder(ctx, req)
	require.NoError(t, err)

	dup := limitOrder("alice", "BUY", 1, 100)
	dup.ClientOrderID = "cl-1"
	_, err = x.SubmitOrder(ctx, dup)
	assert.ErrorIs(t, err, ErrInvalidOrder)
}

func TestTickSizeRejection(t *testing.T) {
	cfg := &Config{
		Symbols:        []SymbolConfig{{Symbol: "AAPL", TickSize: decimal.NewFromFloat(0.5)}},
		OpeningBalance: decimal.NewFromInt(10_000),
	}
	x := New(cfg, NewLedger(cfg.OpeningBalance), store.NewInMemoryStore(), broadcast.NewDispatcher(broadcast.DispatcherConfig{}))

	_, err := x.SubmitOrder(context.Background(), limitOrder("alice", "BUY", 1, 100.3))
	assert.ErrorIs(t, err, ErrInvalidOrder)

	_, err = x.SubmitOrder(context.Background(), limitOrder("alice", "BUY", 1, 100.5))
	assert.NoError(t, err)
}

func TestPriceBandRejection(t *testing.T) {
	cfg := &Config{
		Symbols: []SymbolConfig{{
			Symbol:     "AAPL",
			PriceFloor: decimal.NewFromInt(50),
			PriceCeil:  decimal.NewFromInt(150),
		}},
		OpeningBalance: decimal.NewFromInt(100_000),
	}
	x := New(cfg, NewLedger(cfg.OpeningBalance), store.NewInMemoryStore(), broadcast.NewDispatcher(broadcast.DispatcherConfig{}))

	_, err := x.SubmitOrder(context.Background(), limitOrder("alice", "BUY", 1, 200))
	assert.ErrorIs(t, err, ErrInvalidOrder)

	_, err = x.SubmitOrder(context.Background(), limitOrder("alice", "SELL", 1, 40))
	assert.ErrorIs(t, err, ErrInvalidOrder)

	_, err = x.SubmitOrder(context.Background(), limitOrder("alice", "BUY", 1, 150))
	assert.NoError(t, err)
}

func TestOpenOrders(t *testing.T) {
	x := newTestExchange(t, 100_000)
	ctx := context.Background()

	open, err := x.SubmitOrder(ctx, limitOrder("alice", "BUY", 5, 90))
	require.NoError(t, err)
	filledBuy, err := x.SubmitOrder(ctx, limitOrder("alice", "BUY", 5, 100))
	require.NoError(t, err)
	_, err = x.SubmitOrder(ctx, limitOrder("bob", "SELL", 5, 100))
	require.NoError(t, err)

	orders := x.OpenOrders("alice")
	require.Len(t, orders, 1)
	assert.Equal(t, open.Order.OrderID, orders[0].OrderID)
	assert.NotEqual(t, filledBuy.Order.OrderID, orders[0].OrderID)
}

func TestRecentTradesMostRecentFirst(t *testing.T) {
	x := newTestExchange(t, 100_000)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := x.SubmitOrder(ctx, limitOrder("bob", "SELL", 1, 100))
		require.NoError(t, err)
		_, err = x.SubmitOrder(ctx, limitOrder("alice", "BUY", 1, 100))
		require.NoError(t, err)
	}

	trades := x.RecentTrades("AAPL", 2)
	require.Len(t, trades, 2)
	assert.Greater(t, trades[0].Seq, trades[1].Seq)
}

func TestTradeSequenceMonotonic(t *testing.T) {
	x := newTestExchange(t, 100_000)
	ctx := context.Background()

	_, err := x.SubmitOrder(ctx, limitOrder("bob", "SELL", 3, 100))
	require.NoError(t, err)
	_, err = x.SubmitOrder(ctx, limitOrder("bob", "SELL", 3, 101))
	require.NoError(t, err)

	res, err := x.SubmitOrder(ctx, marketOrder("alice", "BUY", 6))
	require.NoError(t, err)

	require.Len(t, res.Trades, 2)
	assert.Equal(t, res.Trades[0].Seq+1, res.Trades[1].Seq)
}

func TestNoCrossableResidue(t *testing.T) {
	x := newTestExchange(t, 1_000_000)
	ctx := context.Background()

	prices := []float64{100, 101, 99, 103, 97, 100, 102, 98}
	for i, p := range prices {
		side := "BUY"
		if i%2 == 1 {
			side = "SELL"
		}
		_, err := x.SubmitOrder(ctx, limitOrder("alice", side, 3, p))
		require.NoError(t, err)

		snap, err := x.BookSnapshot("AAPL", 1)
		require.NoError(t, err)
		if len(snap.Bids) > 0 && len(snap.Asks) > 0 {
			assert.Less(t, snap.Bids[0].Price, snap.Asks[0].Price)
		}
	}
}

func TestMarketDataAfterTrades(t *testing.T) {
	x := newTestExchange(t, 100_000)
	ctx := context.Background()

	_, err := x.SubmitOrder(ctx, limitOrder("bob", "SELL", 5, 100))
	require.NoError(t, err)
	_, err = x.SubmitOrder(ctx, limitOrder("alice", "BUY", 5, 100))
	require.NoError(t, err)
	_, err = x.SubmitOrder(ctx, limitOrder("bob", "SELL", 2, 105))
	require.NoError(t, err)
	_, err = x.SubmitOrder(ctx, limitOrder("alice", "BUY", 2, 105))
	require.NoError(t, err)

	md, err := x.MarketData("AAPL")
	require.NoError(t, err)
	assert.True(t, md.LastPrice.Equal(decimal.NewFromInt(105)))
	assert.True(t, md.OpenPrice.Equal(decimal.NewFromInt(100)), "first trade sets the open when no open price is configured")
	assert.True(t, md.HighPrice.Equal(decimal.NewFromInt(105)))
	assert.True(t, md.LowPrice.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, int64(7), md.Volume)
	assert.True(t, md.Change.Equal(decimal.NewFromInt(5)))
	assert.True(t, md.ChangePercent.Equal(decimal.NewFromInt(5)))
}

func TestConcurrentTradingConservesCash(t *testing.T) {
	const (
		owners         = 8
		ordersPerOwner = 200
		opening        = int64(1_000_000)
	)

	x := newTestExchange(t, opening)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < owners; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(i)))
			owner := fmt.Sprintf("owner-%d", i)
			for n := 0; n < ordersPerOwner; n++ {
				side := "BUY"
				if rng.Intn(2) == 1 {
					side = "SELL"
				}
				price := float64(90 + rng.Intn(21))
				qty := int64(1 + rng.Intn(10))

				res, err := x.SubmitOrder(ctx, limitOrder(owner, side, qty, price))
				if err != nil {
					continue
				}
				if rng.Intn(4) == 0 {
					_, _ = x.CancelOrder(ctx, &model.CancelOrder{OrderID: res.Order.OrderID, OwnerID: owner})
				}
			}
		}(i)
	}
	wg.Wait()

	// trades only move cash between owners; no concurrent interleaving may
	// create or destroy it
	total := decimal.Zero
	for i := 0; i < owners; i++ {
		total = total.Add(x.Ledger().Balance(fmt.Sprintf("owner-%d", i)))
	}
	assert.True(t, total.Equal(decimal.NewFromInt(opening*owners)), "total cash %s", total)

	snap, err := x.BookSnapshot("AAPL", 1)
	require.NoError(t, err)
	if len(snap.Bids) > 0 && len(snap.Asks) > 0 {
		assert.Less(t, snap.Bids[0].Price, snap.Asks[0].Price)
	}
}
