package exchange

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joripage/exchange-core/pkg/exchange/model"
)

// Ledger settles committed trades against owner balances and positions.
// Both legs of a trade are applied under one lock so no reader can observe
// a debited buyer without the credited seller. Accounts and positions are
// created lazily; positions are never deleted.
type Ledger struct {
	mu sync.RWMutex

	openingBalance decimal.Decimal
	accounts       map[string]*model.Account
	positions      map[string]map[string]*model.Position // owner -> symbol
}

func NewLedger(openingBalance decimal.Decimal) *Ledger {
	return &Ledger{
		openingBalance: openingBalance,
		accounts:       make(map[string]*model.Account),
		positions:      make(map[string]map[string]*model.Position),
	}
}

func (l *Ledger) account(ownerID string) *model.Account {
	acc, ok := l.accounts[ownerID]
	if !ok {
		acc = &model.Account{OwnerID: ownerID, Balance: l.openingBalance, UpdatedAt: time.Now()}
		l.accounts[ownerID] = acc
	}
	return acc
}

func (l *Ledger) position(ownerID, symbol string) *model.Position {
	bySymbol, ok := l.positions[ownerID]
	if !ok {
		bySymbol = make(map[string]*model.Position)
		l.positions[ownerID] = bySymbol
	}
	pos, ok := bySymbol[symbol]
	if !ok {
		pos = &model.Position{OwnerID: ownerID, Symbol: symbol}
		bySymbol[symbol] = pos
	}
	return pos
}

// Restore seeds the ledger from persisted accounts and positions. Meant
// for rebuilding a projection at startup, before any trade is applied.
func (l *Ledger) Restore(accounts []*model.Account, positions []*model.Position) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, acc := range accounts {
		a := *acc
		l.accounts[a.OwnerID] = &a
	}
	for _, pos := range positions {
		p := *pos
		bySymbol, ok := l.positions[p.OwnerID]
		if !ok {
			bySymbol = make(map[string]*model.Position)
			l.positions[p.OwnerID] = bySymbol
		}
		bySymbol[p.Symbol] = &p
	}
}

// Balance returns the owner's current cash balance, creating the account
// with the opening balance on first touch.
func (l *Ledger) Balance(ownerID string) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.account(ownerID).Balance
}

// Deposit credits an owner's balance. Used by provisioning and tests.
func (l *Ledger) Deposit(ownerID string, amount decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()

	acc := l.account(ownerID)
	acc.Balance = acc.Balance.Add(amount)
	acc.UpdatedAt = time.Now()
}

// HasBuyingPower reports whether the owner's balance covers notional.
func (l *Ledger) HasBuyingPower(ownerID string, notional decimal.Decimal) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.account(ownerID).Balance.GreaterThanOrEqual(notional)
}

// Position returns a copy of the owner's position in symbol.
func (l *Ledger) Position(ownerID, symbol string) model.Position {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if bySymbol, ok := l.positions[ownerID]; ok {
		if pos, ok := bySymbol[symbol]; ok {
			return *pos
		}
	}
	return model.Position{OwnerID: ownerID, Symbol: symbol}
}

// Positions returns copies of all positions held by the owner.
func (l *Ledger) Positions(ownerID string) []model.Position {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []model.Position
	for _, pos := range l.positions[ownerID] {
		out = append(out, *pos)
	}
	return out
}

// ApplyTrade settles one trade: debit the buyer by notional, credit the
// seller, and move both positions. The whole application is one critical
// section; partial settlement is never observable.
func (l *Ledger) ApplyTrade(t *model.Trade) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()

	buyer := l.account(t.BuyOwnerID)
	buyer.Balance = buyer.Balance.Sub(t.Notional)
	buyer.UpdatedAt = now

	seller := l.account(t.SellOwnerID)
	seller.Balance = seller.Balance.Add(t.Notional)
	seller.UpdatedAt = now

	l.applyPosition(t.BuyOwnerID, t.Symbol, t.Quantity, t.Price, now)
	l.applyPosition(t.SellOwnerID, t.Symbol, -t.Quantity, t.Price, now)
}

// applyPosition moves one owner's position by delta at price. Growing a
// position in its own direction recomputes the weighted-average cost;
// reducing or reversing realizes P&L on the closed portion and carries any
// excess at the trade price.
func (l *Ledger) applyPosition(ownerID, symbol string, delta int64, price decimal.Decimal, now time.Time) {
	pos := l.position(ownerID, symbol)
	oldQty := pos.Quantity
	newQty := oldQty + delta

	if oldQty == 0 || (oldQty > 0) == (delta > 0) {
		oldAbs := abs64(oldQty)
		addAbs := abs64(delta)
		totalCost := pos.AvgPrice.Mul(decimal.NewFromInt(oldAbs)).
			Add(price.Mul(decimal.NewFromInt(addAbs)))
		pos.AvgPrice = totalCost.Div(decimal.NewFromInt(oldAbs + addAbs))
	} else {
		closed := abs64(oldQty)
		if abs64(delta) < closed {
			closed = abs64(delta)
		}

		pnlPerUnit := price.Sub(pos.AvgPrice)
		if oldQty < 0 {
			// closing a short: gain when bought back below average
			pnlPerUnit = pos.AvgPrice.Sub(price)
		}
		pos.RealizedPnL = pos.RealizedPnL.Add(pnlPerUnit.Mul(decimal.NewFromInt(closed)))

		switch {
		case newQty == 0:
			pos.AvgPrice = decimal.Zero
		case (oldQty > 0) != (newQty > 0):
			// reversed through zero: the excess opens at the trade price
			pos.AvgPrice = price
		}
	}

	pos.Quantity = newQty
	pos.UpdatedAt = now
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
