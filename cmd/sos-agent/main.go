package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/abhishekmmb18-lang/Enigma/internal/agent"
	"github.com/abhishekmmb18-lang/Enigma/internal/config"
	"github.com/abhishekmmb18-lang/Enigma/internal/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	cfg := config.LoadAgent()

	zl, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat, "sos-agent")
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	poller := agent.NewPoller(agent.Options{
		BaseURL:        cfg.BackendURL,
		PollInterval:   cfg.PollInterval,
		ContactRefresh: cfg.ContactRefresh,
		RequestTimeout: cfg.RequestTimeout,
	}, agent.LogDispatcher{Logger: zl}, zl)

	if err := poller.Run(ctx); err != nil {
		zl.Fatal("sos agent stopped", zap.Error(err))
	}
}
