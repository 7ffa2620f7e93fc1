package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/joripage/exchange-core/config"
	"github.com/joripage/exchange-core/pkg/exchange"
	"github.com/joripage/exchange-core/pkg/exchange/broadcast"
	"github.com/joripage/exchange-core/pkg/exchange/cache"
	fixgateway "github.com/joripage/exchange-core/pkg/exchange/fix"
	"github.com/joripage/exchange-core/pkg/exchange/store"
	redis_wrapper "github.com/joripage/exchange-core/pkg/infra/redis"
	"github.com/joripage/exchange-core/pkg/logging"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	go func() {
		http.ListenAndServe("localhost:6060", nil) // nolint
	}()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	if _, err := logging.Init(cfg.ServiceName, logging.INFO); err != nil {
		panic(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	dispatcher := broadcast.NewDispatcher(broadcast.DispatcherConfig{})

	if cfg.Nats != nil {
		nats, err := broadcast.NewNatsPublisher(cfg.Nats)
		if err != nil {
			zap.S().Fatalw("connect nats", "error", err)
		}
		dispatcher.Subscribe(nats)
	}

	if cfg.Kafka != nil {
		dispatcher.Subscribe(broadcast.NewKafkaBroadcaster(cfg.Kafka))
	}

	if cfg.Redis != nil {
		redisClient, err := redis_wrapper.InitRedis(cfg.Redis)
		if err != nil {
			zap.S().Fatalw("connect redis", "error", err)
		}
		dispatcher.Subscribe(cache.NewMarketDataCache(redisClient))
	}

	ledger := exchange.NewLedger(cfg.Exchange.OpeningBalance)
	x := exchange.New(cfg.Exchange, ledger, store.NewInMemoryStore(), dispatcher)

	fixGateway := fixgateway.NewFixGateway(&fixgateway.FixGatewayConfig{
		ConfigFilepath: cfg.FixConfigFilepath,
	})
	fixGateway.AddExchangeInstance(x)
	x.SetGateway(fixGateway)

	if err := x.Start(ctx); err != nil {
		zap.S().Fatalw("start exchange", "error", err)
	}
	fmt.Println("Exchange started. Press Ctrl+C to exit.")

	<-sigs
	fmt.Println("Shutting down...")

	cancel()
	fixGateway.Stop()
	x.Stop()

	fmt.Println("Exited cleanly.")
}
