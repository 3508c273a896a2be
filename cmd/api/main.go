package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	delivery "miniwallet/internal/adapter/delivery/http"
	"miniwallet/internal/adapter/events"
	handler "miniwallet/internal/adapter/handler/http"
	"miniwallet/internal/bootstrap"
	"miniwallet/internal/config"
	domainService "miniwallet/internal/domain/service"
	"miniwallet/internal/logger"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// --- Configuration ---
	cfgPath := "configs"
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration from %s: %v", cfgPath, err)
	}

	// --- Logger ---
	appLogger, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to setup logger: %v", err)
	}
	defer appLogger.Sync()
	appLogger.Info("Logger initialized", zap.Any("config", cfg.Logger))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Dependency Injection (Manual) ---
	appLogger.Info("Initializing dependencies...")
	app, err := bootstrap.New(ctx, cfg, true, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize dependencies", zap.Error(err))
	}
	defer app.Close()

	stopLoop, err := startRequestLoop(ctx, cfg.Events, app.Transactions.Serve, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to open event transport", zap.Error(err))
	}
	defer stopLoop()

	// --- HTTP Router & Server ---
	h := handler.NewHandler(app.Chains, app.Session, app.Transactions, cfg.Server.GetRequestTimeout(), appLogger)
	server := &fasthttp.Server{
		Handler: delivery.NewServerHandler(h, app.Metrics, cfg.Metrics, appLogger),
		Name:    cfg.App.Name,
	}

	serverAddr := ":" + cfg.Server.Port
	serveErr := make(chan error, 1)
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("address", serverAddr))
		serveErr <- server.ListenAndServe(serverAddr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	case <-ctx.Done():
		appLogger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			appLogger.Error("Server shutdown failed", zap.Error(err))
		}
	}
}

type serveFunc func(ctx context.Context, transport domainService.EventTransport) error

// dialTransport is replaced in tests.
var dialTransport = func(cfg config.EventsConfig, logger *zap.Logger) (domainService.EventTransport, error) {
	return events.NewAMQPTransport(cfg, logger)
}

// startRequestLoop serves transactionRequest events from the broker. With the memory transport
// there is no producer outside the process, and HTTP clients submit through POST /transactions,
// so no loop is started.
func startRequestLoop(ctx context.Context, cfg config.EventsConfig, serve serveFunc, logger *zap.Logger) (func(), error) {
	if cfg.Transport != "amqp" {
		logger.Info("No event broker configured, transaction requests are taken over HTTP only")
		return func() {}, nil
	}
	transport, err := dialTransport(cfg, logger)
	if err != nil {
		return nil, err
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := serve(ctx, transport); err != nil {
			logger.Error("Transaction request loop stopped", zap.Error(err))
		}
	}()
	return func() {
		if err := transport.Close(); err != nil {
			logger.Warn("Failed to close event transport", zap.Error(err))
		}
		<-done
	}, nil
}
