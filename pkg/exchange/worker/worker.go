package worker

import (
	"context"
	"encoding/json"
	"time"

	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/joripage/exchange-core/pkg/exchange"
	"github.com/joripage/exchange-core/pkg/exchange/model"
	"github.com/joripage/exchange-core/pkg/exchange/repo"
)

// Worker is the write-behind tail of the engine: it consumes the event
// stream and projects it into the database. Matching never waits on it.
// Positions and balances are rebuilt here by replaying trades through the
// same settlement arithmetic the engine uses. The replay ledger is
// rehydrated from the accounts and positions tables before consuming, so
// a restart resumes from the persisted state instead of opening balances;
// the trade-row insert is the durable dedupe for redeliveries.
type Worker struct {
	order    repo.IOrder
	trade    repo.ITrade
	account  repo.IAccount
	position repo.IPosition

	ledger *exchange.Ledger
}

func NewWorker(r repo.IRepo, openingBalance decimal.Decimal) *Worker {
	return &Worker{
		order:    r.Order(),
		trade:    r.Trade(),
		account:  r.Account(),
		position: r.Position(),
		ledger:   exchange.NewLedger(openingBalance),
	}
}

// Rehydrate loads persisted accounts and positions into the replay ledger.
// Must run before the first trade is handled.
func (w *Worker) Rehydrate(ctx context.Context) error {
	accounts, err := w.account.List(ctx)
	if err != nil {
		return err
	}
	positions, err := w.position.List(ctx)
	if err != nil {
		return err
	}
	w.ledger.Restore(accounts, positions)
	zap.S().Infow("projection ledger rehydrated", "accounts", len(accounts), "positions", len(positions))
	return nil
}

// StartConsumer pulls events from a durable JetStream consumer until ctx
// is cancelled. Failed events are not acked and redeliver; every handler
// is idempotent.
func (w *Worker) StartConsumer(ctx context.Context, js nats.JetStreamContext, subject, durable string) error {
	if err := w.Rehydrate(ctx); err != nil {
		return err
	}

	cons, err := js.PullSubscribe(subject, durable)
	if err != nil {
		return err
	}

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		msgs, err := cons.Fetch(10, nats.MaxWait(2*time.Second))
		if err != nil {
			if err != nats.ErrTimeout {
				zap.S().Warnw("fetch events", "error", err)
			}
			continue
		}

		for _, msg := range msgs {
			var ev model.Event
			if err := json.Unmarshal(msg.Data, &ev); err != nil {
				zap.S().Errorw("unmarshal event", "error", err)
				_ = msg.Ack()
				continue
			}
			if err := w.handleEvent(ctx, &ev); err != nil {
				zap.S().Errorw("handle event", "event_id", ev.EventID, "type", ev.Type, "error", err)
				continue
			}
			_ = msg.Ack()
		}
	}
}

func (w *Worker) handleEvent(ctx context.Context, ev *model.Event) error {
	switch ev.Type {
	case model.EventTypeOrder:
		return w.handleOrder(ctx, ev.Order)
	case model.EventTypeTrade:
		return w.handleTrade(ctx, ev.Trade)
	default:
		// book and market-data events are transient views, not history
		return nil
	}
}

func (w *Worker) handleOrder(ctx context.Context, ev *model.OrderEvent) error {
	_, err := w.order.Upsert(ctx, &model.Order{
		OrderID:       ev.OrderID,
		ClientOrderID: ev.ClientOrderID,
		OwnerID:       ev.OwnerID,
		Symbol:        ev.Symbol,
		Side:          ev.Side,
		Type:          ev.Type,
		Price:         ev.Price,
		Quantity:      ev.Quantity,
		Filled:        ev.Filled,
		Status:        ev.Status,
		Seq:           ev.Seq,
		UpdatedAt:     time.Now(),
	})
	return err
}

func (w *Worker) handleTrade(ctx context.Context, ev *model.TradeEvent) error {
	trade := &model.Trade{
		TradeID:     ev.TradeID,
		Seq:         ev.Seq,
		Symbol:      ev.Symbol,
		BuyOrderID:  ev.BuyOrderID,
		SellOrderID: ev.SellOrderID,
		BuyOwnerID:  ev.BuyOwnerID,
		SellOwnerID: ev.SellOwnerID,
		Quantity:    ev.Quantity,
		Price:       ev.Price,
		Notional:    ev.Notional,
		ExecutedAt:  ev.ExecutedAt,
	}
	inserted, err := w.trade.Create(ctx, trade)
	if err != nil {
		return err
	}
	if !inserted {
		// redelivery of a trade that was already projected
		return nil
	}
	w.ledger.ApplyTrade(trade)

	for _, ownerID := range []string{ev.BuyOwnerID, ev.SellOwnerID} {
		acc := model.Account{OwnerID: ownerID, Balance: w.ledger.Balance(ownerID), UpdatedAt: time.Now()}
		if _, err := w.account.Upsert(ctx, &acc); err != nil {
			return err
		}
		pos := w.ledger.Position(ownerID, ev.Symbol)
		if _, err := w.position.Upsert(ctx, &pos); err != nil {
			return err
		}
	}
	return nil
}
