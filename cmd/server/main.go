package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/backendstudioapp/dashboardtypeform/internal/auth"
	"github.com/backendstudioapp/dashboardtypeform/internal/config"
	"github.com/backendstudioapp/dashboardtypeform/internal/httpx"
	"github.com/backendstudioapp/dashboardtypeform/internal/metrics"
	"github.com/backendstudioapp/dashboardtypeform/internal/store"
	"github.com/backendstudioapp/dashboardtypeform/internal/supabase"
)

func main() {
	cfgPath := flag.String("config", "", "path to YAML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		slog.Error("config error", slog.String("err", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	sb := supabase.New(cfg.SupabaseURL, cfg.SupabaseKey, supabase.NewHTTPClient(cfg.HTTPTimeout), logger)
	st := store.NewMemoryStore()
	m := metrics.New()

	am := auth.NewManager(cfg.SessionSecret, cfg.SessionTTL)
	if cfg.AdminEmail != "" {
		if err := am.Register(cfg.AdminEmail, cfg.AdminPassword, "admin"); err != nil {
			logger.Error("seed admin failed", slog.String("err", err.Error()))
			os.Exit(1)
		}
	}
	if cfg.CloserEmail != "" {
		if err := am.Register(cfg.CloserEmail, cfg.CloserPassword, "closer"); err != nil {
			logger.Error("seed closer failed", slog.String("err", err.Error()))
			os.Exit(1)
		}
	}

	r := httpx.NewRouter(logger, st, sb, am, m, cfg.AllowedOrigins)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting server", slog.String("port", cfg.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
}
