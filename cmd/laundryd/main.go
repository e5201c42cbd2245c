package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"campus-laundry-backend/config"
	"campus-laundry-backend/internal/api"
	"campus-laundry-backend/internal/db"
	"campus-laundry-backend/internal/logger"
	"campus-laundry-backend/internal/metrics"
	"campus-laundry-backend/internal/notification"
	"campus-laundry-backend/internal/session"
	"campus-laundry-backend/internal/store"
	"campus-laundry-backend/internal/sweeper"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration from %s: %v\n", configPath, err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	log.Info().Str("path", configPath).Msg("configuration loaded")

	var webpushOptions *webpush.Options
	if cfg.Push.Enabled() {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
	} else {
		log.Warn().Msg("VAPID keys not configured, low stock alerts will only be logged")
	}

	gormDB, err := db.Init(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	appStore := store.NewGormStore(gormDB)
	sessions := session.NewManager(appStore, cfg.Session.TTL, cfg.Session.Cleanup, log, m)
	go sessions.RunReaper(ctx, cfg.Session.Cleanup)

	pool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, webpushOptions, log)
	pool.Start(ctx)

	sweeperSvc := sweeper.NewService(&cfg.Sweeper, appStore, pool, m, log)
	go sweeperSvc.Run(ctx)

	handler := api.NewHandler(appStore, sessions, webpushOptions, m, log, cfg.Orders.ReturnAfterDays)
	router := api.NewRouter(handler, cfg.Server, reg, log)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server stopped unexpectedly")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info().Msg("shutdown signal received, stopping services")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
		return
	}

	log.Info().Msg("server gracefully stopped")
}
