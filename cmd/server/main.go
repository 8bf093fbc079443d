package main

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	webAdapter "orderdesk/internal/adapters/web"
	"orderdesk/internal/app"
	"orderdesk/internal/backend"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	client, err := backend.NewFromEnv(logger)
	if err != nil {
		logger.Fatal("backend", zap.Error(err))
	}

	debounce := app.DefaultDebounce
	if raw := os.Getenv("SEARCH_DEBOUNCE_MS"); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil {
			logger.Fatal("invalid SEARCH_DEBOUNCE_MS", zap.String("value", raw))
		}
		debounce = time.Duration(ms) * time.Millisecond
	}

	svc := app.NewService(client, debounce, logger)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins, logger)

	logger.Info("server starting", zap.String("port", port))
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		logger.Fatal("server", zap.Error(err))
	}
}
