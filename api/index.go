package handler

import (
	"log/slog"
	"net/http"
	"os"
	"sync"

	"flash-news/internal/app"
	"flash-news/internal/config"
	"flash-news/internal/logging"
)

var (
	once    sync.Once
	router  http.Handler
	initErr error
)

func setup() {
	cfg, err := config.FromEnv()
	if err != nil {
		initErr = err
		return
	}
	logger := logging.NewWithWriter(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)
	router = app.New(cfg, logger, nil).Router
}

// Handler is the entry point for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(setup)
	if initErr != nil {
		slog.Error("invalid configuration", slog.Any("error", initErr))
		http.Error(w, `{"success":false,"message":"server misconfigured"}`, http.StatusInternalServerError)
		return
	}
	router.ServeHTTP(w, r)
}
