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

	"github.com/gin-gonic/gin"
	"github.com/sportevents/backend/internal/client"
	"github.com/sportevents/backend/internal/config"
	"github.com/sportevents/backend/internal/db"
	"github.com/sportevents/backend/internal/db/memory"
	"github.com/sportevents/backend/internal/handler"
	"github.com/sportevents/backend/internal/obs"
	"github.com/sportevents/backend/internal/service"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	production := cfg.Server.IsProduction()

	logger, err := obs.NewLogger(obs.LogConfig{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
		App:    "sportevents-backend",
		Env:    cfg.Server.Env,
	})
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	settings, err := service.ParseAuthSettings(cfg.Auth)
	if err != nil {
		logger.Fatal("auth config", zap.Error(err))
	}

	store, err := openStore(rootCtx, cfg, logger)
	if err != nil {
		logger.Fatal("storage", zap.Error(err))
	}
	defer store.Close()

	metrics := obs.NewMetrics()

	var notifier service.ResetNotifier
	if cfg.Notify.NotifierURL != "" {
		notifier = client.NewHTTPNotifier(cfg.Notify.NotifierURL)
	} else {
		notifier = client.NewLogNotifier(logger, !production)
	}

	authService, err := service.NewAuthService(store, settings, service.AuthOptions{
		FrontendURL: cfg.Notify.FrontendURL,
		Notifier:    notifier,
		Recorder:    metrics,
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal("auth service", zap.Error(err))
	}
	eventService := service.NewEventService(store)

	sweeper := service.NewTokenSweeper(authService, settings.SweepInterval, metrics, logger)
	go sweeper.Run(rootCtx)

	if production {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handler.NewRouter(handler.RouterConfig{
		Auth:           authService,
		Events:         eventService,
		DB:             store,
		Metrics:        metrics,
		Logger:         logger,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Production:     production,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listening", zap.String("addr", srv.Addr), zap.String("storage", cfg.Storage.Driver))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-rootCtx.Done():
		logger.Info("shutdown signal")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", zap.Error(err))
		}
	}

	shCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	logger.Info("bye")
}

func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (service.Repository, error) {
	switch cfg.Storage.Driver {
	case "memory":
		logger.Warn("using in-memory storage; data is lost on restart")
		return memory.New(), nil
	case "postgres", "":
		store, err := db.Open(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.Storage.Driver)
	}
}
