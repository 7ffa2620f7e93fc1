package exchange

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joripage/exchange-core/pkg/exchange/model"
)

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func testTrade(buyOwner, sellOwner string, qty int64, price float64) *model.Trade {
	p := dec(price)
	return &model.Trade{
		TradeID:    "t",
		Symbol:     "AAPL",
		BuyOwnerID: buyOwner,
		SellOwnerID: sellOwner,
		Quantity:   qty,
		Price:      p,
		Notional:   p.Mul(decimal.NewFromInt(qty)),
		ExecutedAt: time.Now(),
	}
}

func TestLedgerOpeningBalance(t *testing.T) {
	l := NewLedger(dec(1_000))
	assert.True(t, l.Balance("anyone").Equal(dec(1_000)))
}

func TestLedgerApplyTradeMovesCash(t *testing.T) {
	l := NewLedger(dec(10_000))

	l.ApplyTrade(testTrade("alice", "bob", 10, 100))

	assert.True(t, l.Balance("alice").Equal(dec(9_000)))
	assert.True(t, l.Balance("bob").Equal(dec(11_000)))
}

func TestLedgerPositionAveragePrice(t *testing.T) {
	l := NewLedger(dec(100_000))

	l.ApplyTrade(testTrade("alice", "bob", 10, 100))
	l.ApplyTrade(testTrade("alice", "bob", 10, 110))

	pos := l.Position("alice", "AAPL")
	assert.Equal(t, int64(20), pos.Quantity)
	assert.True(t, pos.AvgPrice.Equal(dec(105)))
	assert.True(t, pos.RealizedPnL.IsZero())
}

func TestLedgerRealizedPnLOnReduce(t *testing.T) {
	l := NewLedger(dec(100_000))

	l.ApplyTrade(testTrade("alice", "bob", 10, 100))
	// alice sells 4 at 110: realizes (110-100)*4 = 40
	l.ApplyTrade(testTrade("bob", "alice", 4, 110))

	pos := l.Position("alice", "AAPL")
	assert.Equal(t, int64(6), pos.Quantity)
	assert.True(t, pos.AvgPrice.Equal(dec(100)), "reducing must not move the average price")
	assert.True(t, pos.RealizedPnL.Equal(dec(40)))
}

func TestLedgerPositionReversal(t *testing.T) {
	l := NewLedger(dec(100_000))

	l.ApplyTrade(testTrade("alice", "bob", 10, 100))
	// alice sells 15 at 90: closes 10 for (90-100)*10 = -100, carries short 5 at 90
	l.ApplyTrade(testTrade("bob", "alice", 15, 90))

	pos := l.Position("alice", "AAPL")
	assert.Equal(t, int64(-5), pos.Quantity)
	assert.True(t, pos.AvgPrice.Equal(dec(90)))
	assert.True(t, pos.RealizedPnL.Equal(dec(-100)))
}

func TestLedgerShortCoverPnL(t *testing.T) {
	l := NewLedger(dec(100_000))

	// bob goes short 10 at 100, covers 10 at 80: realizes (100-80)*10 = 200
	l.ApplyTrade(testTrade("alice", "bob", 10, 100))
	l.ApplyTrade(testTrade("bob", "carol", 10, 80))

	pos := l.Position("bob", "AAPL")
	assert.Equal(t, int64(0), pos.Quantity)
	assert.True(t, pos.AvgPrice.IsZero(), "a flat position has no entry price")
	assert.True(t, pos.RealizedPnL.Equal(dec(200)))
}

func TestLedgerHasBuyingPower(t *testing.T) {
	l := NewLedger(dec(500))

	assert.True(t, l.HasBuyingPower("alice", dec(500)))
	assert.False(t, l.HasBuyingPower("alice", dec(500.01)))
}

func TestLedgerDeposit(t *testing.T) {
	l := NewLedger(dec(0))

	l.Deposit("alice", dec(250))
	assert.True(t, l.Balance("alice").Equal(dec(250)))
}

func TestLedgerPositions(t *testing.T) {
	l := NewLedger(dec(100_000))

	l.ApplyTrade(testTrade("alice", "bob", 10, 100))

	got := l.Positions("alice")
	require.Len(t, got, 1)
	assert.Equal(t, "AAPL", got[0].Symbol)

	assert.Empty(t, l.Positions("carol"))
}
