package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joripage/exchange-core/pkg/exchange"
	"github.com/joripage/exchange-core/pkg/exchange/broadcast"
	"github.com/joripage/exchange-core/pkg/exchange/model"
	"github.com/joripage/exchange-core/pkg/exchange/store"
)

const (
	numOrders = 1_000_000
	numOwners = 1_000
	minPrice  = 100.0
	maxPrice  = 200.0
	minQty    = 1
	maxQty    = 100
)

func randomOrder() *model.SubmitOrder {
	side := model.OrderSideBuy
	if rand.Intn(2) == 0 {
		side = model.OrderSideSell
	}
	price := minPrice + rand.Float64()*(maxPrice-minPrice)
	qty := int64(rand.Intn(maxQty-minQty+1) + minQty)

	return &model.SubmitOrder{
		OwnerID:  fmt.Sprintf("ACC-%04d", rand.Intn(numOwners)),
		Symbol:   "ABC",
		Side:     side,
		Type:     model.OrderTypeLimit,
		Price:    decimal.NewFromFloat(float64(int(price*100)) / 100),
		Quantity: qty,
	}
}

func main() {
	rand.Seed(time.Now().UnixNano())

	cfg := &exchange.Config{
		Symbols:        []exchange.SymbolConfig{{Symbol: "ABC"}},
		OpeningBalance: decimal.NewFromInt(1_000_000_000),
	}
	dispatcher := broadcast.NewDispatcher(broadcast.DispatcherConfig{})
	x := exchange.New(cfg, exchange.NewLedger(cfg.OpeningBalance), store.NewInMemoryStore(), dispatcher)
	dispatcher.Start()

	ctx := context.Background()
	totalTrades := 0
	totalQty := int64(0)

	start := time.Now()
	for i := 0; i < numOrders; i++ {
		result, err := x.SubmitOrder(ctx, randomOrder())
		if err != nil {
			continue
		}
		for _, t := range result.Trades {
			totalTrades++
			totalQty += t.Quantity
		}
	}
	elapsed := time.Since(start)

	dispatcher.Stop()

	fmt.Println("--------")
	fmt.Printf("Total Orders     : %d\n", numOrders)
	fmt.Printf("Total Trades     : %d\n", totalTrades)
	fmt.Printf("Total Matched Qty: %d\n", totalQty)
	fmt.Printf("Dropped Events   : %d\n", dispatcher.Dropped())
	fmt.Printf("Time Taken       : %s\n", elapsed)
	fmt.Printf("Orders/sec       : %.0f\n", float64(numOrders)/elapsed.Seconds())
}
