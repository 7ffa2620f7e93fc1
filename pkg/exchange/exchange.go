package exchange

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/joripage/exchange-core/pkg/exchange/broadcast"
	"github.com/joripage/exchange-core/pkg/exchange/model"
	"github.com/joripage/exchange-core/pkg/exchange/riskrule"
	"github.com/joripage/exchange-core/pkg/exchange/store"
	"github.com/joripage/exchange-core/pkg/orderbook"
)

// depth of the book slice attached to book-update events
const eventBookDepth = 10

type SymbolConfig struct {
	Symbol     string          `yaml:"symbol"`
	TickSize   decimal.Decimal `yaml:"tick_size"`
	PriceFloor decimal.Decimal `yaml:"price_floor"`
	PriceCeil  decimal.Decimal `yaml:"price_ceil"`
	OpenPrice  decimal.Decimal `yaml:"open_price"`
}

type Config struct {
	Symbols        []SymbolConfig  `yaml:"symbols"`
	OpeningBalance decimal.Decimal `yaml:"opening_balance"`
}

// OrderGateway is the transport that feeds orders in and receives order
// reports back (FIX acceptor in production, a stub in tests).
type OrderGateway interface {
	Start(ctx context.Context) error
	OnOrderReport(ctx context.Context, order model.Order)
}

// symbolEngine is the sequencer for one symbol: its book, its market-data
// aggregate, and the mutex that serializes every mutation touching them.
// Trade sequence numbers, order status transitions and settlement for this
// symbol are all totally ordered by this lock.
type symbolEngine struct {
	symbol string
	book   *orderbook.Book
	md     *marketData
	mu     sync.Mutex
}

// Exchange runs one matching engine per configured symbol and settles
// everything through a shared ledger. Symbols are independent: their
// sequencers never contend with each other.
type Exchange struct {
	ledger     *Ledger
	store      store.Store
	dispatcher *broadcast.Dispatcher
	gateway    OrderGateway

	engines map[string]*symbolEngine
	rules   []riskrule.RiskRule

	orderSeq atomic.Uint64
	tradeSeq atomic.Uint64
}

func New(cfg *Config, ledger *Ledger, st store.Store, dispatcher *broadcast.Dispatcher) *Exchange {
	x := &Exchange{
		ledger:     ledger,
		store:      st,
		dispatcher: dispatcher,
		engines:    make(map[string]*symbolEngine),
	}

	ticks := make(map[string]decimal.Decimal)
	bands := make(map[string]riskrule.PriceBand)
	for _, sc := range cfg.Symbols {
		x.engines[sc.Symbol] = &symbolEngine{
			symbol: sc.Symbol,
			book:   orderbook.NewBook(sc.Symbol),
			md:     newMarketData(sc.Symbol, sc.OpenPrice),
		}
		if !sc.TickSize.IsZero() {
			ticks[sc.Symbol] = sc.TickSize
		}
		if !sc.PriceFloor.IsZero() || !sc.PriceCeil.IsZero() {
			bands[sc.Symbol] = riskrule.PriceBand{Floor: sc.PriceFloor, Ceil: sc.PriceCeil}
		}
	}
	if len(ticks) > 0 {
		x.rules = append(x.rules, riskrule.NewTickSizeRule(ticks))
	}
	if len(bands) > 0 {
		x.rules = append(x.rules, riskrule.NewLimitPriceRule(bands))
	}

	return x
}

func (x *Exchange) SetGateway(gw OrderGateway) {
	x.gateway = gw
}

func (x *Exchange) AddRiskRule(r riskrule.RiskRule) {
	x.rules = append(x.rules, r)
}

func (x *Exchange) Ledger() *Ledger {
	return x.ledger
}

func (x *Exchange) Start(ctx context.Context) error {
	x.dispatcher.Start()
	if x.gateway != nil {
		return x.gateway.Start(ctx)
	}
	return nil
}

func (x *Exchange) Stop() {
	x.dispatcher.Stop()
}

// SubmitOrder validates, admits and matches one incoming order. On return
// the order and every trade it produced are committed; events and order
// reports have been handed off for delivery.
func (x *Exchange) SubmitOrder(ctx context.Context, req *model.SubmitOrder) (*model.SubmitResult, error) {
	eng, err := x.validate(req)
	if err != nil {
		return nil, err
	}

	eng.mu.Lock()

	// buy-side pre-check runs inside the sequencer so the balance it sees
	// cannot move before the order is admitted
	if req.Side == model.OrderSideBuy {
		if !x.ledger.HasBuyingPower(req.OwnerID, x.buyNotional(eng, req)) {
			eng.mu.Unlock()
			return nil, ErrInsufficientBalance
		}
	}

	now := time.Now()
	order := &model.Order{
		OrderID:       uuid.New().String(),
		ClientOrderID: req.ClientOrderID,
		OwnerID:       req.OwnerID,
		Symbol:        req.Symbol,
		Side:          req.Side,
		Type:          req.Type,
		Price:         req.Price,
		Quantity:      req.Quantity,
		Status:        model.OrderStatusPending,
		Seq:           x.orderSeq.Add(1),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	x.store.AddOrder(order)

	trades, events, reports := x.match(eng, order, now)

	events = append(events, model.NewBookEvent(x.bookSnapshotLocked(eng, eventBookDepth), now))
	if len(trades) > 0 {
		events = append(events, model.NewMarketDataEvent(eng.md.snapshot(eng.book), now))
	}

	result := &model.SubmitResult{Order: *order, Trades: trades}
	eng.mu.Unlock()

	x.dispatcher.Dispatch(events...)
	x.report(ctx, reports)

	return result, nil
}

// CancelOrder removes a live order. A cancel that loses the race against
// matching sees a terminal status and fails with ErrNotCancellable; that
// is the defined resolution, not an error to retry.
func (x *Exchange) CancelOrder(ctx context.Context, req *model.CancelOrder) (*model.CancelResult, error) {
	order, ok := x.store.GetOrder(req.OrderID)
	if !ok || order.OwnerID != req.OwnerID {
		return nil, ErrNotFound
	}

	eng := x.engines[order.Symbol]

	eng.mu.Lock()
	if !order.CanCancel() {
		eng.mu.Unlock()
		return nil, ErrNotCancellable
	}

	// a Pending order that never rested is absent from the book
	_, _ = eng.book.Remove(order.OrderID)

	now := time.Now()
	order.Status = model.OrderStatusCancelled
	order.UpdatedAt = now

	events := []*model.Event{
		model.NewOrderEvent(*order, now),
		model.NewBookEvent(x.bookSnapshotLocked(eng, eventBookDepth), now),
	}
	result := &model.CancelResult{Order: *order}
	eng.mu.Unlock()

	x.dispatcher.Dispatch(events...)
	x.report(ctx, []model.Order{result.Order})

	return result, nil
}

// BookSnapshot returns an aggregated depth view of one symbol's book.
func (x *Exchange) BookSnapshot(symbol string, depth int) (*model.BookSnapshot, error) {
	eng, ok := x.engines[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: unknown symbol %q", ErrInvalidOrder, symbol)
	}

	eng.mu.Lock()
	defer eng.mu.Unlock()
	return x.bookSnapshotLocked(eng, depth), nil
}

// MarketData returns the symbol's snapshot with bid/ask recomputed from
// the live book.
func (x *Exchange) MarketData(symbol string) (*model.MarketDataSnapshot, error) {
	eng, ok := x.engines[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: unknown symbol %q", ErrInvalidOrder, symbol)
	}

	eng.mu.Lock()
	defer eng.mu.Unlock()
	return eng.md.snapshot(eng.book), nil
}

// GetOrder returns a copy of one order's current state.
func (x *Exchange) GetOrder(orderID string) (model.Order, error) {
	order, ok := x.store.GetOrder(orderID)
	if !ok {
		return model.Order{}, ErrNotFound
	}

	eng := x.engines[order.Symbol]
	eng.mu.Lock()
	defer eng.mu.Unlock()
	return *order, nil
}

// OpenOrders returns copies of the owner's non-terminal orders.
func (x *Exchange) OpenOrders(ownerID string) []model.Order {
	var out []model.Order
	for _, id := range x.store.OrderIDsByOwner(ownerID) {
		order, ok := x.store.GetOrder(id)
		if !ok {
			continue
		}
		eng := x.engines[order.Symbol]
		eng.mu.Lock()
		if !order.IsTerminal() {
			out = append(out, *order)
		}
		eng.mu.Unlock()
	}
	return out
}

// RecentTrades returns the symbol's committed trades, most recent first.
func (x *Exchange) RecentTrades(symbol string, limit int) []*model.Trade {
	return x.store.RecentTrades(symbol, limit)
}

func (x *Exchange) TradesByOwner(ownerID string, limit int) []*model.Trade {
	return x.store.TradesByOwner(ownerID, limit)
}

func (x *Exchange) validate(req *model.SubmitOrder) (*symbolEngine, error) {
	eng, ok := x.engines[req.Symbol]
	if !ok {
		return nil, fmt.Errorf("%w: unknown symbol %q", ErrInvalidOrder, req.Symbol)
	}
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidOrder)
	}

	switch req.Side {
	case model.OrderSideBuy, model.OrderSideSell:
	default:
		return nil, fmt.Errorf("%w: unknown side %q", ErrInvalidOrder, req.Side)
	}

	switch req.Type {
	case model.OrderTypeLimit:
		if req.Price.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: limit order requires a positive price", ErrInvalidOrder)
		}
	case model.OrderTypeMarket:
	default:
		return nil, fmt.Errorf("%w: unknown order type %q", ErrInvalidOrder, req.Type)
	}

	if req.ClientOrderID != "" {
		if _, dup := x.store.GetOrderIDByClientID(req.ClientOrderID); dup {
			return nil, fmt.Errorf("%w: duplicate client order id %q", ErrInvalidOrder, req.ClientOrderID)
		}
	}

	for _, r := range x.rules {
		if err := r.Check(req); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidOrder, err)
		}
	}

	return eng, nil
}

// buyNotional estimates the cash a buy could consume: the limit notional,
// or for a market buy a worst-case reservation at the current best ask.
// With no ask liquidity the estimate is zero; the order cannot fill.
func (x *Exchange) buyNotional(eng *symbolEngine, req *model.SubmitOrder) decimal.Decimal {
	qty := decimal.NewFromInt(req.Quantity)
	if req.Type == model.OrderTypeLimit {
		return req.Price.Mul(qty)
	}

	ask, ok := eng.book.BestAsk()
	if !ok {
		return decimal.Zero
	}
	if maker, ok := x.store.GetOrder(ask.ID); ok {
		return maker.Price.Mul(qty)
	}
	return decimal.NewFromFloat(ask.Price).Mul(qty)
}

func (x *Exchange) bookSnapshotLocked(eng *symbolEngine, depth int) *model.BookSnapshot {
	return &model.BookSnapshot{
		Symbol: eng.symbol,
		Bids:   toBookLevels(eng.book.PriceLevels(orderbook.BUY, depth)),
		Asks:   toBookLevels(eng.book.PriceLevels(orderbook.SELL, depth)),
	}
}

func toBookLevels(levels []orderbook.PriceLevel) []model.BookLevel {
	out := make([]model.BookLevel, len(levels))
	for i, lvl := range levels {
		out[i] = model.BookLevel{Price: lvl.Price, Qty: lvl.Qty, Count: lvl.Count}
	}
	return out
}

func (x *Exchange) report(ctx context.Context, orders []model.Order) {
	if x.gateway == nil {
		return
	}
	for _, o := range orders {
		x.gateway.OnOrderReport(ctx, o)
	}
}
