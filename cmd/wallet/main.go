package main

import (
	"bufio"
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"miniwallet/internal/bootstrap"
	"miniwallet/internal/config"
	"miniwallet/internal/logger"

	"go.uber.org/zap"
)

func main() {
	cfgPath := "configs"
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration from %s: %v", cfgPath, err)
	}

	// stdout belongs to the prompt
	appLogger := logger.NewLoggerTo(cfg.Logger, os.Stderr)
	defer appLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, false, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize dependencies", zap.Error(err))
	}
	defer app.Close()

	in := bufio.NewReader(os.Stdin)
	c := &cli{
		in:      in,
		out:     os.Stdout,
		secret:  terminalSecret(in, os.Stdin, os.Stderr),
		chains:  app.Chains,
		session: app.Session,
		txs:     app.Transactions,
	}
	c.run(ctx)
}
