// Package main is the entry point for the weekly planner server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/weekly-planner/backend/internal/api"
	"github.com/weekly-planner/backend/internal/calendar"
	"github.com/weekly-planner/backend/internal/config"
	"github.com/weekly-planner/backend/internal/log"
	"github.com/weekly-planner/backend/internal/planner"
	"github.com/weekly-planner/backend/internal/service"
	"github.com/weekly-planner/backend/internal/storage"
	"github.com/weekly-planner/backend/internal/strategy"
	"github.com/weekly-planner/backend/internal/websocket"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
// Defaults to "dev" when not provided.
var version = "dev"

func main() {
	configPath := flag.String("config", "/data/planner.yaml", "Path to the YAML config file")
	envFile := flag.String("env", ".env", "Optional .env file with PLANNER_* overrides")
	addr := flag.String("addr", "", "HTTP server address (overrides config)")
	dataDir := flag.String("data", "", "Data directory for the SQLite database (overrides config)")
	healthCheck := flag.Bool("health-check", false, "Run health check and exit")
	flag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Listen = *addr
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}

	// Health check mode for Docker HEALTHCHECK
	if *healthCheck {
		if err := runHealthCheck(cfg.Listen); err != nil {
			fmt.Fprintf(os.Stderr, "health check failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if err := log.Init(cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if envVer := os.Getenv("VERSION"); envVer != "" {
		version = envVer
	}

	if err := run(cfg); err != nil {
		log.Error("server exited", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	log.Info("starting weekly planner", "version", version, "listen", cfg.Listen, "data_dir", cfg.DataDir)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := storage.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info("database ready", "path", db.Path())

	hub := websocket.NewHub()
	go hub.Run(ctx)
	broadcaster := websocket.NewEventBroadcaster(hub)

	hours, err := cfg.Hours()
	if err != nil {
		return err
	}
	defaultStrategy, err := strategy.New(cfg.Strategy.Name, hours)
	if err != nil {
		return err
	}

	p, err := planner.New()
	if err != nil {
		return err
	}
	settings := storage.NewSettingsRepository(db)
	svc := service.New(p, service.Options{
		Store:    storage.NewPlannerRepository(db),
		Settings: settings,
		Notifier: broadcaster,
		Strategy: defaultStrategy,
		Hours:    hours,
		Host:     cfg.Host,
	})
	if err := svc.Load(ctx); err != nil {
		return err
	}

	codec, err := calendar.NewICSCodec(cfg.Export.Anchor)
	if err != nil {
		return err
	}

	var exporter *calendar.Exporter
	if cfg.Export.Enabled {
		exporter = calendar.NewExporter(svc, codec, cfg.Export.Dir, cfg.Export.Cron, broadcaster)
		if err := exporter.Start(ctx); err != nil {
			return err
		}
		defer exporter.Stop()
	}

	router := api.NewRouter(api.Dependencies{
		Version:   version,
		DB:        db,
		Settings:  settings,
		Hub:       hub,
		Service:   svc,
		Codec:     codec,
		Exporter:  exporter,
		StaticDir: cfg.StaticDir,
	})

	server := &http.Server{
		Addr:         cfg.Listen,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.Listen)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serving http: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	log.Info("server stopped")
	return nil
}

// runHealthCheck performs a health check against the running server.
func runHealthCheck(addr string) error {
	url := "http://localhost" + addr + "/api/health"
	if addr != "" && addr[0] != ':' {
		url = "http://" + addr + "/api/health"
	}
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return nil
}
