package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fleetxp/api"
	"fleetxp/config"
	"fleetxp/game/attribution"
	"fleetxp/ledger"
	"fleetxp/logger"
	"fleetxp/metrics"
	"fleetxp/migrations"
	"fleetxp/publish"
	"fleetxp/socket"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// set timezone to utc
	time.Local = time.UTC

	// load environment variables; a missing .env is fine when the environment is set directly
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}
	if err := logger.Init(os.Getenv("LOG_LEVEL")); err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer logger.Sync()
	l := logger.L()

	config.Init()

	// database connection
	config.ConnectDatabase()
	if err := migrations.Migrate(config.DB); err != nil {
		l.Fatal("migration failed", zap.Error(err))
	}
	if config.SeedDemoData {
		migrations.Seed(config.DB)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := ledger.NewStore(config.DB)
	table, err := store.Load(ctx)
	if err != nil {
		l.Fatal("failed to load ship data", zap.Error(err))
	}
	l.Info("ship data loaded", zap.Int("ships", table.Len()))

	publisher, err := publish.NewPublisher(publish.Config{Brokers: config.KafkaBrokers, Topic: config.KafkaTopic}, l)
	if err != nil {
		l.Fatal("invalid kafka configuration", zap.Error(err))
	}
	defer publisher.Close()

	m := metrics.New()
	engine := attribution.NewEngine(table, config.XP, l)
	l.Info("xp constants loaded", zap.String("file", config.XPConstantsFile), zap.Any("settings", engine.Settings()))

	httpServer := &http.Server{
		Addr:              ":" + config.HTTPPort,
		Handler:           api.NewRouter(table, store, m),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		l.Info("HTTP server is running", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	sessions := socket.NewSessionServer(engine, table, store, publisher, m, l, socket.Options{
		MaxConnections:   config.MaxConnections,
		AutosaveInterval: config.AutosaveInterval,
	})
	if err := sessions.ListenAndServe(ctx, ":"+config.AppPort); err != nil {
		l.Fatal("server could not be started", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		l.Warn("HTTP shutdown", zap.Error(err))
	}
	l.Info("shut down")
}
