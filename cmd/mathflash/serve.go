package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vytor/mathflash/internal/api"
	"github.com/vytor/mathflash/internal/config"
	"github.com/vytor/mathflash/internal/db"
	"github.com/vytor/mathflash/internal/logger"
	"github.com/vytor/mathflash/internal/puzzle"
	"github.com/vytor/mathflash/internal/repository/sqlite"
	"github.com/vytor/mathflash/internal/services"
	"github.com/vytor/mathflash/internal/sweeper"
	"github.com/vytor/mathflash/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("%v", err)
		return err
	}

	log.Info("mathflash server starting")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("max_puzzles=%d", cfg.MaxPuzzles)
	log.Debug("default_difficulty=%s", cfg.StartingDifficulty())
	log.Debug("worker_count=%d", cfg.WorkerCount)
	log.Debug("worker_queue_size=%d", cfg.WorkerQueueSize)
	log.Debug("session_idle=%v", cfg.SessionIdleTimeout())
	log.Debug("sweep_interval=%v", cfg.SweepInterval())

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		return err
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	sessionService := services.NewSessionService(
		sqlite.NewSessionRepository(database.DB),
		sqlite.NewPuzzleRepository(database.DB),
		sqlite.NewAttemptRepository(database.DB),
		puzzle.NewGenerator(nil),
		services.SessionOptions{
			DefaultMaxPuzzles: cfg.MaxPuzzles,
			DefaultDifficulty: cfg.StartingDifficulty(),
		},
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := worker.NewPool(cfg.WorkerCount, cfg.WorkerQueueSize)
	pool.Start(ctx)

	sweep := sweeper.New(pool, &worker.CloseIdleSessionsJob{
		Sessions: sessionService,
		IdleFor:  cfg.SessionIdleTimeout(),
	}, cfg.SweepInterval())
	if err := sweep.Start(); err != nil {
		pool.Stop()
		return err
	}

	srv := &api.Server{Sessions: sessionService, DB: database}
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	var runErr error
	select {
	case sig := <-stop:
		log.Info("received signal %v, initiating graceful shutdown", sig)
	case runErr = <-serveErr:
		log.Error("HTTP server error: %v", runErr)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("stopping sweeper")
	sweep.Stop()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping worker pool")
	cancel()
	pool.Stop()

	log.Info("mathflash server stopped")
	return runErr
}
