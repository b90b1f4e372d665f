package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Aidin1998/bookshelf/api"
	"github.com/Aidin1998/bookshelf/internal/books"
	"github.com/Aidin1998/bookshelf/internal/config"
	"github.com/Aidin1998/bookshelf/internal/database"
	"github.com/Aidin1998/bookshelf/pkg/logger"
	"github.com/Aidin1998/bookshelf/pkg/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Load configuration
	var paths []string
	if path := os.Getenv("BOOKSHELF_CONFIG"); path != "" {
		paths = append(paths, path)
	}
	cfg, err := config.LoadConfig(paths...)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create logger
	zapLogger, err := logger.NewLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger.Info("Configuration loaded", zap.Strings("sources", cfg.Sources))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry := telemetry.ShutdownFunc(func(context.Context) error { return nil })
	if cfg.Tracing.Enabled {
		shutdownTelemetry, err = telemetry.Setup(ctx, telemetry.Config{ServiceName: cfg.Tracing.ServiceName})
		if err != nil {
			zapLogger.Fatal("Failed to set up telemetry", zap.Error(err))
		}
	}

	// Connect to the book store; the service does not start without it
	repo, err := database.Open(ctx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to book store",
			zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}

	booksSvc, err := books.NewService(zapLogger, repo, books.WithOperationTimeout(cfg.Database.OperationTimeout))
	if err != nil {
		zapLogger.Fatal("Failed to create books service", zap.Error(err))
	}

	gin.SetMode(cfg.Server.Mode)
	apiServer := api.NewServer(zapLogger, booksSvc, *cfg)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      apiServer.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		zapLogger.Info("Starting API server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt or listener failure
	select {
	case <-ctx.Done():
		zapLogger.Info("Shutting down server...")
	case err := <-serverErr:
		zapLogger.Error("API server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Failed to shut down API server", zap.Error(err))
	}
	if err := repo.Close(shutdownCtx); err != nil {
		zapLogger.Error("Failed to close book store", zap.Error(err))
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		zapLogger.Error("Failed to flush telemetry", zap.Error(err))
	}

	zapLogger.Info("Server exited properly")
}
