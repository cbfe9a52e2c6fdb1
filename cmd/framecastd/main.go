// Command framecastd runs the framecast rendering daemon: the HTTP API, the
// job store, and the worker pool that drives jobs to completion.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/joho/godotenv"

	"framecast/internal/config"
	"framecast/internal/deps"
	"framecast/internal/fetch"
	"framecast/internal/httpapi"
	"framecast/internal/jobstore"
	"framecast/internal/logging"
	"framecast/internal/pipeline"
	"framecast/internal/render"
	"framecast/internal/runner"
)

const shutdownGrace = 10 * time.Second

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to the framecast config file")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, resolvedPath, found, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	if found {
		logger.Info("config loaded", logging.String("path", resolvedPath))
	} else {
		logger.Info("no config file found, using defaults")
	}

	for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
		if status.Available {
			continue
		}
		logger.Warn("external dependency unavailable",
			logging.String("name", status.Name),
			logging.String("command", status.Command),
			logging.String("detail", status.Detail),
		)
	}

	lock := flock.New(filepath.Join(cfg.Paths.LogDir, "framecastd.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		logger.Error("acquire daemon lock", logging.Error(err))
		return
	}
	if !locked {
		logger.Error("another framecastd instance is already running")
		return
	}
	defer lock.Unlock()

	store, err := jobstore.Open(cfg)
	if err != nil {
		logger.Error("open job store", logging.Error(err))
		return
	}
	defer store.Close()

	engine := render.NewEngine(cfg, runner.New(), logger)
	fetcher := fetch.NewClient(cfg.DownloadTimeout())
	orchestrator := pipeline.NewOrchestrator(cfg, store, fetcher, engine, logger)
	pool := pipeline.NewPool(cfg, orchestrator, logger)

	server := httpapi.NewServer(cfg, store, pool, logger)
	httpServer := &http.Server{
		Addr:    cfg.Paths.Bind,
		Handler: server.Router(),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("framecastd listening", logging.String("bind", cfg.Paths.Bind))
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("framecastd shutting down")
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", logging.Error(err))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", logging.Error(err))
	}

	// In-flight jobs run to a terminal status before exit.
	pool.Close()
	logger.Info("framecastd stopped")
}
