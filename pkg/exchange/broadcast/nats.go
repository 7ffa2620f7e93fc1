package broadcast

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/joripage/exchange-core/pkg/exchange/model"
)

type NatsConfig struct {
	URL     string `yaml:"url"`
	Stream  string `yaml:"stream"`
	Subject string `yaml:"subject"`
}

// NatsPublisher relays engine events to a JetStream stream. The
// persistence worker consumes this stream and writes events behind the
// engine (see pkg/exchange/worker).
type NatsPublisher struct {
	js      nats.JetStreamContext
	subject string
}

func NewNatsPublisher(cfg *NatsConfig) (*NatsPublisher, error) {
	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream context: %w", err)
	}

	if _, err := js.AddStream(&nats.StreamConfig{
		Name:     cfg.Stream,
		Subjects: []string{cfg.Subject},
	}); err != nil && err != nats.ErrStreamNameAlreadyInUse {
		return nil, fmt.Errorf("ensure stream: %w", err)
	}

	return &NatsPublisher{js: js, subject: cfg.Subject}, nil
}

func (p *NatsPublisher) Publish(ctx context.Context, ev *model.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(p.subject, data)
	return err
}
