package orderbook

import "container/heap"

// priceHeap orders the live level prices of one book side. The comparator
// is injected so the same type serves bids (max-heap) and asks (min-heap).
// Book creates at most one level per price, so unlike a general-purpose
// heap no duplicate tracking is needed here.
type priceHeap struct {
	prices []float64
	less   func(a, b float64) bool
}

func newPriceHeap(less func(a, b float64) bool) *priceHeap {
	return &priceHeap{less: less}
}

func (h *priceHeap) Len() int           { return len(h.prices) }
func (h *priceHeap) Less(i, j int) bool { return h.less(h.prices[i], h.prices[j]) }
func (h *priceHeap) Swap(i, j int)      { h.prices[i], h.prices[j] = h.prices[j], h.prices[i] }

func (h *priceHeap) Push(x any) {
	h.prices = append(h.prices, x.(float64))
}

func (h *priceHeap) Pop() any {
	n := len(h.prices)
	price := h.prices[n-1]
	h.prices = h.prices[:n-1]
	return price
}

// push adds a new level price, restoring heap order.
func (h *priceHeap) push(price float64) {
	heap.Push(h, price)
}

// pop removes the best price.
func (h *priceHeap) pop() float64 {
	return heap.Pop(h).(float64)
}

// peek returns the best price without removing it.
func (h *priceHeap) peek() (float64, bool) {
	if len(h.prices) == 0 {
		return 0, false
	}
	return h.prices[0], true
}
