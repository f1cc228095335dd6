// Package main provides the authorship API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kamilpajak/authorship/internal/app"
	"github.com/kamilpajak/authorship/internal/config"
	"github.com/kamilpajak/authorship/internal/logging"
	"github.com/kamilpajak/authorship/internal/server"
	"github.com/kamilpajak/authorship/internal/store"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to a YAML config file")
		port        = flag.String("port", "", "Server port (default $PORT or 8080)")
		migrateOnly = flag.Bool("migrate", false, "Run migrations and exit")
		warm        = flag.Bool("warm", true, "Load the classifier before accepting requests")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if cfg.Log.Format == logging.FormatText && os.Getenv("LOG_FORMAT") == "" {
		cfg.Log.Format = logging.FormatJSON
	}
	log, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}

	if *migrateOnly {
		if cfg.Store.URL == "" {
			log.Fatal("DATABASE_URL is required for --migrate")
		}
		log.Info("Running database migrations...")
		if err := store.Migrate(cfg.Store.URL); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Info("Migrations complete")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log, app.Options{OpenStore: true, Auth: true})
	if err != nil {
		log.Fatalf("Startup failed: %v", err)
	}
	defer a.Close()

	if *warm {
		// A cold or unreachable model is reported by /health; requests get 503.
		if err := a.Adapter.Warm(ctx); err != nil {
			log.WithError(err).Error("classifier failed to load")
		}
	}

	if err := server.Run(ctx, ":"+cfg.Server.Port, a.Handler(), log); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
