package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ndavis/chesstutor/internal/api"
	"github.com/ndavis/chesstutor/internal/config"
	"github.com/ndavis/chesstutor/internal/engine"
	"github.com/ndavis/chesstutor/internal/game"
	"github.com/ndavis/chesstutor/internal/logger"
	"github.com/ndavis/chesstutor/internal/openings"
	"github.com/ndavis/chesstutor/internal/srs"
	"github.com/ndavis/chesstutor/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("Chess Tutor Server Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("stockfish_path=%s", cfg.StockfishPath)
	log.Debug("stockfish_depth=%d", cfg.StockfishDepth)
	log.Debug("engine_pool_size=%d", cfg.EnginePoolSize)
	log.Debug("srs_cards_path=%s", cfg.SRSCardsPath)
	log.Debug("openings_db_path=%s", cfg.OpeningsDBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("analysis_worker_count=%d", cfg.AnalysisWorkerCount)
	log.Debug("analysis_queue_size=%d", cfg.AnalysisQueueSize)
	log.Debug("mine_cp_threshold=%d", cfg.MineCPThreshold)

	enginePool, err := engine.NewPool(cfg.StockfishPath, cfg.EnginePoolSize)
	if err != nil {
		log.Error("failed to start engine pool: %v", err)
		os.Exit(1)
	}
	defer enginePool.Close()

	cards, err := srs.NewScheduler(cfg.SRSCardsPath)
	if err != nil {
		log.Error("failed to load review cards: %v", err)
		os.Exit(1)
	}

	store, err := openings.OpenStore(cfg.OpeningsDBPath)
	if err != nil {
		log.Error("failed to open openings database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing openings database")
		store.Close()
	}()

	manager := game.NewManager(enginePool, openings.NewBook(), cfg.StockfishDepth)

	minePool := worker.NewPool(cfg.AnalysisWorkerCount, cfg.AnalysisQueueSize)

	srv := &api.Server{
		Games:           manager,
		Cards:           cards,
		Openings:        store,
		Engines:         enginePool,
		MinePool:        minePool,
		StockfishDepth:  cfg.StockfishDepth,
		MineCPThreshold: cfg.MineCPThreshold,
	}

	ctx, cancel := context.WithCancel(context.Background())
	minePool.Start(ctx)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("stopping worker pool")
	cancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	minePool.Stop()

	log.Info("===========================================")
	log.Info("Chess Tutor Server Stopped")
	log.Info("===========================================")
}
