package orderbook

import (
	"fmt"
	"testing"
)

func TestInsertAndBest(t *testing.T) {
	b := NewBook("CQAF")

	orders := []*Order{
		{ID: "B1", Side: BUY, Price: 99, Qty: 10, Seq: 1},
		{ID: "B2", Side: BUY, Price: 100, Qty: 5, Seq: 2},
		{ID: "S1", Side: SELL, Price: 102, Qty: 7, Seq: 3},
		{ID: "S2", Side: SELL, Price: 101, Qty: 3, Seq: 4},
	}
	for _, o := range orders {
		if err := b.Insert(o); err != nil {
			t.Fatalf("insert %s: %v", o.ID, err)
		}
	}

	bid, ok := b.BestBid()
	if !ok || bid.ID != "B2" || bid.Price != 100 {
		t.Errorf("expected best bid B2@100, got %+v", bid)
	}
	ask, ok := b.BestAsk()
	if !ok || ask.ID != "S2" || ask.Price != 101 {
		t.Errorf("expected best ask S2@101, got %+v", ask)
	}
}

func TestInsertDuplicate(t *testing.T) {
	b := NewBook("CQAF")
	if err := b.Insert(&Order{ID: "B1", Side: BUY, Price: 100, Qty: 10}); err != nil {
		t.Fatal(err)
	}
	if err := b.Insert(&Order{ID: "B1", Side: BUY, Price: 101, Qty: 10}); err != ErrDuplicateOrder {
		t.Errorf("expected ErrDuplicateOrder, got %v", err)
	}
}

func TestInsertInvalidPrice(t *testing.T) {
	b := NewBook("CQAF")
	if err := b.Insert(&Order{ID: "B1", Side: BUY, Price: 0, Qty: 10}); err != ErrInvalidPrice {
		t.Errorf("expected ErrInvalidPrice, got %v", err)
	}
}

func TestFIFOWithinLevel(t *testing.T) {
	b := NewBook("CQAF")
	for i := 1; i <= 3; i++ {
		o := &Order{ID: fmt.Sprintf("S%d", i), Side: SELL, Price: 100, Qty: 5, Seq: uint64(i)}
		if err := b.Insert(o); err != nil {
			t.Fatal(err)
		}
	}

	for i := 1; i <= 3; i++ {
		front, ok := b.BestAsk()
		if !ok {
			t.Fatalf("expected ask at step %d", i)
		}
		want := fmt.Sprintf("S%d", i)
		if front.ID != want {
			t.Errorf("step %d: expected %s first, got %s", i, want, front.ID)
		}
		b.ReduceBest(SELL, 5)
	}

	if _, ok := b.BestAsk(); ok {
		t.Error("expected empty ask side")
	}
}

func TestRemove(t *testing.T) {
	b := NewBook("CQAF")
	b.Insert(&Order{ID: "S1", Side: SELL, Price: 100, Qty: 5, Seq: 1})
	b.Insert(&Order{ID: "S2", Side: SELL, Price: 100, Qty: 7, Seq: 2})

	if _, err := b.Remove("S1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := b.Remove("S1"); err != ErrOrderNotFound {
		t.Errorf("expected ErrOrderNotFound on second remove, got %v", err)
	}
	if _, err := b.Remove("ghost"); err != ErrOrderNotFound {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}

	// tombstone pruned: S2 surfaces as best
	ask, ok := b.BestAsk()
	if !ok || ask.ID != "S2" {
		t.Errorf("expected S2 as best ask after removal, got %+v", ask)
	}

	levels := b.PriceLevels(SELL, 10)
	if len(levels) != 1 || levels[0].Qty != 7 || levels[0].Count != 1 {
		t.Errorf("expected level (100,7,1), got %+v", levels)
	}
}

func TestRemoveLastOrderEmptiesLevel(t *testing.T) {
	b := NewBook("CQAF")
	b.Insert(&Order{ID: "B1", Side: BUY, Price: 100, Qty: 5})
	b.Insert(&Order{ID: "B2", Side: BUY, Price: 99, Qty: 4})

	b.Remove("B1")

	bid, ok := b.BestBid()
	if !ok || bid.ID != "B2" || bid.Price != 99 {
		t.Errorf("expected best bid B2@99, got %+v", bid)
	}
}

func TestReduceBestPartial(t *testing.T) {
	b := NewBook("CQAF")
	b.Insert(&Order{ID: "S1", Side: SELL, Price: 100, Qty: 10})

	b.ReduceBest(SELL, 4)

	ask, ok := b.BestAsk()
	if !ok || ask.Qty != 6 {
		t.Errorf("expected remaining 6, got %+v", ask)
	}
	levels := b.PriceLevels(SELL, 1)
	if levels[0].Qty != 6 {
		t.Errorf("expected level qty 6, got %d", levels[0].Qty)
	}

	b.ReduceBest(SELL, 6)
	if b.RestingCount() != 0 {
		t.Errorf("expected empty book, got %d resting", b.RestingCount())
	}
}

func TestPriceLevelsDepth(t *testing.T) {
	b := NewBook("CQAF")
	for i := 0; i < 5; i++ {
		b.Insert(&Order{ID: fmt.Sprintf("B%d", i), Side: BUY, Price: 100 - float64(i), Qty: 10})
		b.Insert(&Order{ID: fmt.Sprintf("S%d", i), Side: SELL, Price: 101 + float64(i), Qty: 10})
	}

	bids := b.PriceLevels(BUY, 3)
	if len(bids) != 3 {
		t.Fatalf("expected 3 bid levels, got %d", len(bids))
	}
	if bids[0].Price != 100 || bids[1].Price != 99 || bids[2].Price != 98 {
		t.Errorf("expected bids descending from 100, got %+v", bids)
	}

	asks := b.PriceLevels(SELL, 3)
	if asks[0].Price != 101 || asks[1].Price != 102 || asks[2].Price != 103 {
		t.Errorf("expected asks ascending from 101, got %+v", asks)
	}
}

func BenchmarkInsertRemove(b *testing.B) {
	book := NewBook("CQAF")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		id := fmt.Sprintf("O-%d", i)
		book.Insert(&Order{ID: id, Side: BUY, Price: 100 + float64(i%50), Qty: 10})
		book.Remove(id)
	}
}
