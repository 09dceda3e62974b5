package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"restopos/internal/audit"
	"restopos/internal/config"
	"restopos/internal/infra"
	"restopos/internal/repository"
	"restopos/internal/router"
	"restopos/internal/service"
	"restopos/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger — dev: pretty, prod: JSON
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// Worker pool for async tasks (audit persistence, treasury notifications).
	// Handlers are wired here, at the composition root, so the pool has full
	// access to infrastructure dependencies.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)

	pool := worker.NewPool(rdb)
	pool.Register(worker.QueueAudit, worker.NewAuditWorker(repository.NewAuditRepository(db)))
	pool.Register(worker.QueueNotify, worker.NewNotifyWorker(mailer, cfg.TreasuryEmail))
	pool.Start(ctx, cfg.WorkerPoolSize)

	auditor := audit.NewSink(dispatcher.EnqueueAudit)
	notifier := worker.NewQueueNotifier(dispatcher)

	// The nightly consolidation job gets its own service instance; it only
	// reads, so it carries no notifier.
	treasurySvc := service.NewTreasuryService(
		repository.NewTransferRepository(db),
		repository.NewCashRepository(db),
		auditor,
		nil,
	)
	consolidationCron, err := worker.StartConsolidationCron(cfg, treasurySvc, mailer)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start consolidation cron")
	}
	defer consolidationCron.Stop()

	r := router.New(router.Dependencies{
		DB:       db,
		Redis:    rdb,
		Cfg:      cfg,
		Auditor:  auditor,
		Notifier: notifier,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("restopos backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
