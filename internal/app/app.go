// Package app wires the process-wide singletons — fetch cache, vector
// index, embedder, reranker, EDGAR client — into a ready-to-use
// Pipeline. Construction happens once at process startup, never lazily
// inside a request path, per §9's singleton guidance.
package app

import (
	"context"
	"fmt"

	"github.com/codekshitij/toshi/internal/cache"
	"github.com/codekshitij/toshi/internal/config"
	"github.com/codekshitij/toshi/internal/edgar"
	"github.com/codekshitij/toshi/internal/embed"
	"github.com/codekshitij/toshi/internal/obs"
	"github.com/codekshitij/toshi/internal/pipeline"
	"github.com/codekshitij/toshi/internal/retrieve"
	"github.com/codekshitij/toshi/internal/vectorindex"
)

// App bundles the running process's singleton handles so callers (CLI
// commands, tests) can both drive the pipeline and cleanly tear down.
type App struct {
	Config        config.Config
	Cache         *cache.Cache
	Store         vectorindex.Store
	Pipeline      *pipeline.Pipeline
	shutdownMeter func(context.Context) error
}

// New loads configuration and initializes every singleton in dependency
// order (C1 -> C4/C5 -> C6 -> C7), matching §5's "process-wide
// singletons, initialized once" model. Config, fetch-cache and vector-index
// failures are returned here. The embedder and reranker are HTTP clients
// built without contacting their servers, so an unreachable model server
// is not detected here; it surfaces as an error on the first request.
func New(logLevelOverride string) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("app: load config: %w", err)
	}
	if logLevelOverride != "" {
		cfg.Telemetry.LogLevel = logLevelOverride
	}
	log := obs.NewLogger(cfg.Telemetry.LogLevel)
	shutdownMeter := obs.InitMeterProvider()
	metrics := obs.NewOtelMetrics()

	boltStore, err := cache.NewBoltStore(cfg.Cache.Path)
	if err != nil {
		return nil, fmt.Errorf("app: open fetch cache: %w", err)
	}
	fetchCache := cache.New(boltStore, cache.WithLogger(log))

	store, err := newVectorStore(cfg.Vector)
	if err != nil {
		return nil, fmt.Errorf("app: open vector index: %w", err)
	}

	embedder := embed.NewClientEmbedder(cfg.Embedding)
	reranker := retrieve.NewClientReranker(cfg.Reranker)

	retriever := retrieve.New(store, embedder, reranker,
		retrieve.WithLogger(log),
		retrieve.WithMetrics(metrics),
	)

	edgarClient := edgar.NewClient(cfg.Edgar)

	p := pipeline.New(edgarClient, fetchCache, store, embedder, retriever,
		pipeline.WithLogger(log),
		pipeline.WithMetrics(metrics),
	)

	return &App{Config: cfg, Cache: fetchCache, Store: store, Pipeline: p, shutdownMeter: shutdownMeter}, nil
}

func newVectorStore(cfg config.VectorConfig) (vectorindex.Store, error) {
	switch cfg.Backend {
	case "qdrant":
		return vectorindex.NewQdrantStore(cfg.QdrantDSN, cfg.Collection, cfg.Dimensions)
	case "", "sqlite":
		return vectorindex.NewSQLiteStore(cfg.SQLitePath, cfg.Dimensions)
	default:
		return nil, fmt.Errorf("app: unknown vector backend %q", cfg.Backend)
	}
}

// Close releases every durable handle in reverse initialization order.
func (a *App) Close() error {
	var firstErr error
	if err := a.Store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := a.Cache.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if a.shutdownMeter != nil {
		if err := a.shutdownMeter(context.Background()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
