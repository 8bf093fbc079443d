package main

import (
	"bufio"
	"context"
	"log"
	"os"

	replAdapter "orderdesk/internal/adapters/repl"
	"orderdesk/internal/app"
	"orderdesk/internal/backend"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	client, err := backend.NewFromEnv(logger)
	if err != nil {
		logger.Fatal("backend", zap.Error(err))
	}

	// The terminal loop is synchronous; a zero debounce makes each search
	// command block on its lookup instead of racing the next prompt.
	svc := app.NewService(client, 0, logger)

	replAdapter.Run(context.Background(), svc, bufio.NewReader(os.Stdin))
}
