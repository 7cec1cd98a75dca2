package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/folio/internal/api"
	"github.com/dgallion1/folio/internal/catalog"
	"github.com/dgallion1/folio/internal/config"
	"github.com/dgallion1/folio/internal/loader"
	"github.com/dgallion1/folio/internal/reflow"
	"github.com/dgallion1/folio/internal/render"
	"github.com/dgallion1/folio/internal/view"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		log.Error("load catalog", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize rendering.
	pages := loader.New(os.DirFS(cfg.BooksDir), log)
	renderer := render.NewRenderer(pages, cat,
		reflow.Options{ConstrainWidth: cfg.ConstrainWidth},
		render.NewCache(cfg.CacheTTL),
		render.NewStats(cfg.StatsWindow),
		log)

	orch := render.NewOrchestrator(cfg, renderer, log)
	orch.Start(ctx)

	views := view.NewStore(cfg.ViewTTL, cfg.MaxViews)
	go views.Run(ctx, time.Minute)

	// Initialize HTTP server.
	srv := api.NewServer(orch, views, log, cfg)

	httpServer := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     srv,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting folio", "port", cfg.Port, "books_dir", cfg.BooksDir, "books", len(cat.Books))
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
