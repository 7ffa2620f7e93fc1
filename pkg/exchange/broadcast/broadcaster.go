package broadcast

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff"
	"go.uber.org/zap"

	"github.com/joripage/exchange-core/pkg/exchange/model"
)

// Broadcaster receives immutable engine events for downstream delivery.
type Broadcaster interface {
	Publish(ctx context.Context, ev *model.Event) error
}

type DispatcherConfig struct {
	BufferSize  int
	MaxRetries  uint64
	MaxInterval time.Duration
}

// Dispatcher decouples event delivery from the symbol sequencers. Dispatch
// is a non-blocking channel handoff; when the buffer is full the event is
// dropped and counted rather than stalling matching. Delivery to each
// subscriber is retried with exponential backoff up to MaxRetries, then
// the failure is logged and the event abandoned. Committed state is never
// rolled back for a delivery failure.
type Dispatcher struct {
	cfg  DispatcherConfig
	ch   chan *model.Event
	subs []Broadcaster

	dropped atomic.Int64
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 4096
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 2 * time.Second
	}

	return &Dispatcher{
		cfg:    cfg,
		ch:     make(chan *model.Event, cfg.BufferSize),
		stopCh: make(chan struct{}),
	}
}

// Subscribe registers a downstream consumer. Not safe to call after Start.
func (d *Dispatcher) Subscribe(b Broadcaster) {
	d.subs = append(d.subs, b)
}

func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go d.run()
}

// Stop drains buffered events, then returns.
func (d *Dispatcher) Stop() {
	close(d.stopCh)
	d.wg.Wait()
}

// Dispatch hands events to the delivery loop without blocking the caller.
func (d *Dispatcher) Dispatch(events ...*model.Event) {
	for _, ev := range events {
		select {
		case d.ch <- ev:
		default:
			n := d.dropped.Add(1)
			zap.S().Warnw("event dropped, dispatcher buffer full",
				"event_id", ev.EventID, "type", ev.Type, "total_dropped", n)
		}
	}
}

// Dropped reports how many events were discarded on a full buffer.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case ev := <-d.ch:
			d.deliver(ev)
		case <-d.stopCh:
			for {
				select {
				case ev := <-d.ch:
					d.deliver(ev)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(ev *model.Event) {
	ctx := context.Background()
	for _, sub := range d.subs {
		boff := backoff.NewExponentialBackOff()
		boff.MaxInterval = d.cfg.MaxInterval

		err := backoff.Retry(func() error {
			return sub.Publish(ctx, ev)
		}, backoff.WithMaxRetries(boff, d.cfg.MaxRetries))
		if err != nil {
			zap.S().Errorw("broadcast failed, event abandoned",
				"event_id", ev.EventID, "type", ev.Type, "err", err)
		}
	}
}
