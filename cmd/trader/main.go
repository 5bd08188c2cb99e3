package main

import (
	"context"
	"flag"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/olyamironova/paper-exchange/internal/adapter/cache"
	"github.com/olyamironova/paper-exchange/internal/adapter/pg"
	"github.com/olyamironova/paper-exchange/internal/config"
	"github.com/olyamironova/paper-exchange/internal/core"
	"github.com/olyamironova/paper-exchange/internal/logger"
	"github.com/olyamironova/paper-exchange/internal/port"
	"github.com/olyamironova/paper-exchange/internal/shell"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", os.Getenv("EXCHANGE_CONFIG"), "YAML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		OutputFile: cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	}, os.Stderr)
	if err != nil {
		logrus.Fatalf("init logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var journal port.Journal
	if cfg.PG.DSN != "" {
		pj, err := pg.NewPgJournal(ctx, cfg.PG.DSN)
		if err != nil {
			log.Fatalf("connect postgres: %v", err)
		}
		defer pj.Close()
		if err := pj.Migrate(ctx); err != nil {
			log.Fatalf("migrate journal: %v", err)
		}
		journal = pj
		log.Info("postgres journal enabled")
	}

	var summaries port.Cache
	if cfg.Redis.Addr != "" {
		rc := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		defer rc.Close()
		if err := rc.Ping(ctx); err != nil {
			log.Fatalf("connect redis: %v", err)
		}
		summaries = rc
		log.WithField("addr", cfg.Redis.Addr).Info("redis summary cache enabled")
	}

	params, err := cfg.LedgerParams()
	if err != nil {
		log.Fatalf("ledger params: %v", err)
	}
	opts := []core.Option{
		core.WithErrorHandler(func(op string, err error) {
			log.WithError(err).WithField("op", op).Warn("sink write failed")
		}),
	}
	if cfg.Market.RandomSeed != nil {
		seed := *cfg.Market.RandomSeed
		opts = append(opts, core.WithRandomSource(rand.New(rand.NewPCG(seed, seed))))
	}

	ledger, err := core.NewLedger(params, journal, summaries, opts...)
	if err != nil {
		log.Fatalf("create ledger: %v", err)
	}

	if err := shell.New(ledger, log, os.Stdout).Run(ctx, os.Stdin); err != nil && ctx.Err() == nil {
		log.WithError(err).Error("shell stopped")
	}
}
