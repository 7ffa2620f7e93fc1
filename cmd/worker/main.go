package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/joripage/exchange-core/config"
	"github.com/joripage/exchange-core/pkg/exchange/repo"
	"github.com/joripage/exchange-core/pkg/exchange/worker"
	postgres_wrapper "github.com/joripage/exchange-core/pkg/infra/postgres"
	"github.com/joripage/exchange-core/pkg/logging"
)

const durableName = "exchange_worker"

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	if _, err := logging.Init(cfg.ServiceName+"-worker", logging.INFO); err != nil {
		panic(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	nc, err := nats.Connect(cfg.Nats.URL)
	if err != nil {
		zap.S().Fatalw("connect nats", "error", err)
	}
	js, err := nc.JetStream()
	if err != nil {
		zap.S().Fatalw("jetstream context", "error", err)
	}

	_, _ = js.AddStream(&nats.StreamConfig{
		Name:     cfg.Nats.Stream,
		Subjects: []string{cfg.Nats.Subject},
	})

	db, err := postgres_wrapper.InitPostgres(cfg.ExchangeDB)
	if err != nil {
		zap.S().Fatalw("init db", "error", err)
	}

	sqlRepo := repo.NewRepo(db)

	w := worker.NewWorker(sqlRepo, cfg.Exchange.OpeningBalance)
	go func() {
		if err := w.StartConsumer(ctx, js, cfg.Nats.Subject, durableName); err != nil && err != context.Canceled {
			zap.S().Errorw("consumer stopped", "error", err)
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	cancel()
	zap.S().Info("worker exited")
}
