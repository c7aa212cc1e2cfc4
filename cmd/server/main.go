package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alxandria/ledger/internal/api"
	"github.com/alxandria/ledger/internal/cache"
	"github.com/alxandria/ledger/internal/db"
	"github.com/alxandria/ledger/internal/host"
	"github.com/alxandria/ledger/pkg/config"
	"github.com/alxandria/ledger/pkg/logging"
	"github.com/alxandria/ledger/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logging.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.GetLogger().Sync()

	logger := logging.GetLogger()
	logger.Info("Starting ledger API server",
		zap.String("chain_id", cfg.Ledger.ChainID),
		zap.String("contract", cfg.Ledger.ContractName),
		zap.String("version", cfg.Ledger.ContractVersion))

	tel, err := telemetry.Init(&cfg.Telemetry, cfg.Ledger.ContractVersion)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer tel.Shutdown()

	database, err := db.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	err = database.Migrate(migrateCtx)
	cancelMigrate()
	if err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	redisCache, err := cache.New(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisCache.Close()

	ledgerHost, err := host.NewFromConfig(database, &cfg.Ledger, redisCache, tel.Metrics)
	if err != nil {
		logger.Fatal("Failed to create ledger host", zap.Error(err))
	}

	if strings.EqualFold(cfg.Logging.Level, "debug") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	api.NewRouter(database, redisCache, ledgerHost).SetupRoutes(engine)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
