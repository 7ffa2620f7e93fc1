package broadcast

import (
	"context"

	kafkawrapper "github.com/joripage/exchange-core/pkg/kafka_wrapper"

	"github.com/joripage/exchange-core/pkg/exchange/model"
)

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// KafkaBroadcaster relays engine events to a Kafka topic, keyed by symbol
// so one symbol's events stay ordered within a partition.
type KafkaBroadcaster struct {
	producer *kafkawrapper.Producer
	topic    string
}

func NewKafkaBroadcaster(cfg *KafkaConfig) *KafkaBroadcaster {
	return &KafkaBroadcaster{
		producer: kafkawrapper.NewProducer(kafkawrapper.ProducerConfig{
			Brokers: cfg.Brokers,
		}),
		topic: cfg.Topic,
	}
}

func (b *KafkaBroadcaster) Publish(ctx context.Context, ev *model.Event) error {
	return b.producer.PublishJSON(ctx, b.topic, ev.Symbol, ev, map[string]string{
		"event_type": string(ev.Type),
	})
}

func (b *KafkaBroadcaster) Close(ctx context.Context) error {
	return b.producer.Close(ctx)
}
