package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dgallion1/md2docx/internal/api"
	"github.com/dgallion1/md2docx/internal/config"
	"github.com/dgallion1/md2docx/internal/metrics"
	"github.com/dgallion1/md2docx/internal/pipeline"
	"github.com/dgallion1/md2docx/internal/style"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Port string `help:"Listen port (default: $PORT or 8090)"`
}

func (c *ServeCmd) Run(g *Global, root *CLI) error {
	cfg := config.Load()
	if c.Port != "" {
		cfg.Port = c.Port
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level := cfg.Level()
	if root.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(g.Stdout, &slog.HandlerOptions{Level: level}))

	reg := prom.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	stylesDir := resolveStylesDir(cfg, root.StylesDir)
	conv, err := newConverter(cfg, stylesDir, log)
	if err != nil {
		return err
	}
	conv.Metrics = m

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if stylesDir != "" && cfg.WatchStyles {
		w, err := style.NewWatcher(stylesDir, conv.Styles, log)
		if err != nil {
			return err
		}
		defer w.Close()
		if err := w.Start(ctx); err != nil {
			return err
		}
	}

	// Initialize pipeline.
	orch, err := pipeline.NewOrchestrator(cfg, conv, log, m)
	if err != nil {
		return err
	}
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, reg, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting md2docx", "port", cfg.Port, "styles", conv.Styles.Names(), "workers", cfg.WorkerCount)
		errCh <- httpServer.ListenAndServe()
	}()

	// Graceful shutdown.
	select {
	case err := <-errCh:
		orch.Stop()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown failed", "error", err)
	}
	orch.Stop()
	return nil
}

