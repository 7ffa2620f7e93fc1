package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/joripage/exchange-core/config"
	"github.com/joripage/exchange-core/pkg/exchange/model"
	kafkawrapper "github.com/joripage/exchange-core/pkg/kafka_wrapper"
	"github.com/joripage/exchange-core/pkg/logging"
)

// marketfeed tails the exchange event topic and prints trades and
// market-data updates. Useful for eyeballing the feed during development.
func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	if _, err := logging.Init(cfg.ServiceName+"-marketfeed", logging.INFO); err != nil {
		panic(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cg, err := kafkawrapper.NewConsumerGroup(kafkawrapper.ConsumerConfig{
		Brokers: cfg.Kafka.Brokers,
		GroupID: "marketfeed",
		Topic:   cfg.Kafka.Topic,
	})
	if err != nil {
		zap.S().Fatalw("create consumer", "error", err)
	}
	defer cg.Close() // nolint

	go func() {
		err := cg.Run(ctx, func(ctx context.Context, msg kafkawrapper.Message) error {
			var ev model.Event
			if err := json.Unmarshal(msg.Value, &ev); err != nil {
				return err
			}
			switch ev.Type {
			case model.EventTypeTrade:
				fmt.Printf("TRADE  %s qty=%d price=%s\n", ev.Symbol, ev.Trade.Quantity, ev.Trade.Price)
			case model.EventTypeMarketData:
				fmt.Printf("MARKET %s last=%s volume=%d\n", ev.Symbol, ev.MarketData.LastPrice, ev.MarketData.Volume)
			}
			return nil
		})
		if err != nil {
			zap.S().Errorw("consumer stopped", "error", err)
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	cancel()
}
