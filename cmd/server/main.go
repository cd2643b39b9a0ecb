package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"cradle/internal/child"
	childcache "cradle/internal/child/cache"
	"cradle/internal/child/handler"
	"cradle/internal/child/service"
	"cradle/internal/events"
	"cradle/internal/guardian"
	"cradle/internal/ledger"
	"cradle/internal/notify"
	"cradle/internal/platform/config"
	"cradle/internal/platform/httpserver"
	"cradle/internal/platform/logger"
	"cradle/internal/platform/metrics"
	"cradle/internal/platform/middleware"
	"cradle/internal/platform/postgres"
	platformredis "cradle/internal/platform/redis"
	httptransport "cradle/internal/transport/http"
)

// main wires dependencies and owns the process lifecycle: the HTTP server and
// the outbox relay run until a signal arrives, then drain gracefully.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("postgres unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	children := child.NewPostgresStore(db)
	guardians := guardian.NewPostgresDirectory(db)
	history := ledger.NewService(ledger.NewPostgresStore(db))
	outbox := events.NewPostgresStore(db)

	var cache service.LookupCache
	if redisClient, err := platformredis.NewClient(ctx, cfg.RedisAddr); err != nil {
		log.Warn("redis unavailable, lookups go straight to postgres", "error", err)
	} else {
		defer redisClient.Close()
		cache = childcache.New(redisClient, cfg.LookupCacheTTL, log, m)
	}

	var notifier notify.Notifier
	if cfg.SendgridAPIKey != "" {
		notifier = notify.NewSendgridNotifier(cfg.SendgridAPIKey, cfg.FromName, cfg.FromEmail, log)
	} else {
		notifier = notify.NewConsoleNotifier(log)
	}

	publisher, err := events.NewKafkaPublisher(ctx, strings.Split(cfg.KafkaBrokers, ","), cfg.KafkaTopic)
	if err != nil {
		log.Error("kafka unavailable", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()
	relay := events.NewRelay(outbox, publisher, cfg.OutboxInterval, log, m)

	childService := service.New(service.Config{
		Children:  children,
		Guardians: guardians,
		Ledger:    history,
		Events:    outbox,
		Notifier:  notifier,
		Cache:     cache,
		Tx:        newPostgresTx(db),
		Logger:    log,
		Metrics:   m,
		BaseURL:   cfg.BaseURL,
	})

	router := httptransport.NewRouter(
		handler.New(childService, log),
		middleware.NewJWTManager(cfg.JWTSigningKey),
		log,
		m,
	)
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting cradle", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		err := relay.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		// One last drain so committed events don't wait for the next boot.
		if _, err := relay.Drain(shutdownCtx); err != nil {
			log.Warn("final outbox drain failed", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("shutdown with error", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
