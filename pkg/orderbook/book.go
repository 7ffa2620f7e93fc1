package orderbook

import (
	"sort"

	"github.com/gammazero/deque"
)

type bookLevel struct {
	queue deque.Deque[*Order]
	qty   int64
	count int
}

// Book holds the resting orders of one symbol in two ladders: a map of
// price levels per side, each level a FIFO queue, plus a heap of level
// prices for best-price lookup. Orders are addressed by id through an
// arena so removal does not touch the queues; a removed order is
// tombstoned in place and pruned when it reaches the front.
//
// Book is not safe for concurrent use. All access is serialized by the
// owning symbol sequencer.
type Book struct {
	symbol string

	bids map[float64]*bookLevel
	asks map[float64]*bookLevel

	bidHeap *priceHeap
	askHeap *priceHeap

	resting map[string]*Order
}

func NewBook(symbol string) *Book {
	return &Book{
		symbol:  symbol,
		bids:    make(map[float64]*bookLevel),
		asks:    make(map[float64]*bookLevel),
		bidHeap: newPriceHeap(func(a, b float64) bool { return a > b }), // max-heap
		askHeap: newPriceHeap(func(a, b float64) bool { return a < b }), // min-heap
		resting: make(map[string]*Order),
	}
}

func (b *Book) Symbol() string {
	return b.symbol
}

func (b *Book) sideOf(side Side) (map[float64]*bookLevel, *priceHeap) {
	if side == BUY {
		return b.bids, b.bidHeap
	}
	return b.asks, b.askHeap
}

// Insert appends a resting order to the end of its price level's FIFO,
// creating the level if needed.
func (b *Book) Insert(o *Order) error {
	if o.Price <= 0 {
		return ErrInvalidPrice
	}
	if _, ok := b.resting[o.ID]; ok {
		return ErrDuplicateOrder
	}

	levels, prices := b.sideOf(o.Side)
	lvl := levels[o.Price]
	if lvl == nil {
		lvl = &bookLevel{}
		levels[o.Price] = lvl
		prices.push(o.Price)
	}
	lvl.queue.PushBack(o)
	lvl.qty += o.Qty
	lvl.count++
	b.resting[o.ID] = o

	return nil
}

// Remove excises an order from wherever it rests. The order is tombstoned
// in its queue and skipped when it surfaces; level aggregates are adjusted
// immediately so depth snapshots stay exact.
func (b *Book) Remove(orderID string) (*Order, error) {
	o, ok := b.resting[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	delete(b.resting, orderID)
	o.cancelled = true

	levels, _ := b.sideOf(o.Side)
	if lvl := levels[o.Price]; lvl != nil {
		lvl.qty -= o.Qty
		lvl.count--
	}

	return o, nil
}

// best returns the live front order of the side's top level, pruning
// tombstones and exhausted levels on the way down.
func (b *Book) best(side Side) (*bookLevel, *Order, bool) {
	levels, prices := b.sideOf(side)
	for {
		price, ok := prices.peek()
		if !ok {
			return nil, nil, false
		}

		lvl := levels[price]
		if lvl == nil || lvl.count == 0 {
			prices.pop()
			delete(levels, price)
			continue
		}

		for lvl.queue.Len() > 0 {
			front := lvl.queue.Front()
			if front.cancelled {
				lvl.queue.PopFront()
				continue
			}
			return lvl, front, true
		}

		prices.pop()
		delete(levels, price)
	}
}

// BestBid returns the first order of the highest bid level, if any.
func (b *Book) BestBid() (*Order, bool) {
	_, o, ok := b.best(BUY)
	return o, ok
}

// BestAsk returns the first order of the lowest ask level, if any.
func (b *Book) BestAsk() (*Order, bool) {
	_, o, ok := b.best(SELL)
	return o, ok
}

// ReduceBest consumes qty from the side's front order after a fill. A
// fully consumed order leaves the book.
func (b *Book) ReduceBest(side Side, qty int64) {
	lvl, front, ok := b.best(side)
	if !ok {
		return
	}

	front.Qty -= qty
	lvl.qty -= qty
	if front.Qty <= 0 {
		lvl.queue.PopFront()
		lvl.count--
		delete(b.resting, front.ID)
	}
}

// PriceLevels returns up to depth aggregated levels for one side, best
// price first.
func (b *Book) PriceLevels(side Side, depth int) []PriceLevel {
	levels, _ := b.sideOf(side)

	prices := make([]float64, 0, len(levels))
	for price, lvl := range levels {
		if lvl.count > 0 {
			prices = append(prices, price)
		}
	}
	if side == BUY {
		sort.Sort(sort.Reverse(sort.Float64Slice(prices)))
	} else {
		sort.Float64s(prices)
	}

	if depth > 0 && len(prices) > depth {
		prices = prices[:depth]
	}

	out := make([]PriceLevel, 0, len(prices))
	for _, price := range prices {
		lvl := levels[price]
		out = append(out, PriceLevel{Price: price, Qty: lvl.qty, Count: lvl.count})
	}
	return out
}

// RestingCount reports how many live orders the book holds.
func (b *Book) RestingCount() int {
	return len(b.resting)
}

// Resting reports whether orderID currently rests in the book.
func (b *Book) Resting(orderID string) bool {
	_, ok := b.resting[orderID]
	return ok
}
