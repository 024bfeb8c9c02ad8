// Package daemon hosts the HTTP API and ties the pipeline's collaborators
// into a single lifecycle with flock-based locking to prevent multiple
// instances from serving the same state directory.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"marquee/internal/config"
	"marquee/internal/curator"
	"marquee/internal/history"
	"marquee/internal/logging"
	"marquee/internal/services/llm"
	"marquee/internal/services/tmdb"
)

// Daemon owns the API server and the shared clients behind it.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger

	orchestrator *curator.Orchestrator
	metadata     *tmdb.Client
	store        *history.Store
	api          *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// New constructs a daemon with initialized dependencies. The metadata client
// and history store are optional: without a TMDB key the pipeline runs in
// pass-through mode, and without history every session starts fresh.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	completer := llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Referer:        cfg.LLM.Referer,
		Title:          cfg.LLM.Title,
		Temperature:    cfg.LLM.Temperature,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	})

	var metadata *tmdb.Client
	var searcher tmdb.Searcher
	if cfg.TMDBConfigured() {
		client, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language, cfg.TMDB.Region)
		if err != nil {
			return nil, fmt.Errorf("tmdb client: %w", err)
		}
		metadata = client
		searcher = client
	} else {
		logger.Warn("tmdb api key not configured, candidate enrichment disabled")
	}

	var store *history.Store
	if cfg.History.Enabled {
		opened, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("open history store: %w", err)
		}
		store = opened
	}

	enricher := curator.NewEnricher(searcher, logging.NewComponentLogger(logger, "enrich"))
	orchestrator := curator.NewOrchestrator(completer, enricher, curator.Settings{
		LineupSize:        cfg.Curator.LineupSize,
		AlternativesMin:   cfg.Curator.AlternativesMin,
		AlternativesMax:   cfg.Curator.AlternativesMax,
		BanListPromptCap:  cfg.Curator.BanListPromptCap,
		PreviousTitlesCap: cfg.Curator.PreviousTitlesCap,
		Thresholds: curator.Thresholds{
			Rating:     cfg.Curator.RatingThreshold,
			Popularity: cfg.Curator.PopularityMin,
			Momentum:   cfg.Curator.MomentumMin,
		},
	}, logging.NewComponentLogger(logger, "curator"))

	lockPath := filepath.Join(cfg.Server.StateDir, "marqueed.lock")
	d := &Daemon{
		cfg:          cfg,
		logger:       logger,
		orchestrator: orchestrator,
		metadata:     metadata,
		store:        store,
		lockPath:     lockPath,
		lock:         flock.New(lockPath),
	}
	// Interface fields stay nil when the concrete client is absent so the
	// handlers can distinguish "not configured" cleanly.
	var meta metadataClient
	if metadata != nil {
		meta = metadata
	}
	var hs historyStore
	if store != nil {
		hs = store
	}
	d.api = newAPIServer(cfg.Server.Bind, orchestrator, meta, hs, cfg, logging.NewComponentLogger(logger, "api"))
	return d, nil
}

// Start acquires the instance lock and brings up the API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another marquee daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	if err := d.api.start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		d.cancel = nil
		return err
	}

	d.running.Store(true)
	d.logger.Info("marquee daemon started",
		logging.String("bind", d.cfg.Server.Bind),
		logging.String("lock", d.lockPath),
	)
	return nil
}

// Stop shuts the API server down and releases the instance lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("marquee daemon stopped")
}

// Close releases all resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Running reports whether the daemon has been started.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// Addr returns the API listener address once started, for tests and logs.
func (d *Daemon) Addr() string {
	return d.api.addr()
}
