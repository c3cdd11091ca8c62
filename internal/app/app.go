// Package app wires the configured collaborators into a catalog.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/agenthands/bibalign/internal/config"
	"github.com/agenthands/bibalign/internal/core"
	"github.com/agenthands/bibalign/internal/core/reduce"
	"github.com/agenthands/bibalign/internal/driver"
	"github.com/agenthands/bibalign/internal/metrics"
	"github.com/agenthands/bibalign/internal/openreview"
	"github.com/agenthands/bibalign/internal/sparql"
	"github.com/agenthands/bibalign/internal/stash"
)

type App struct {
	Config     *config.Config
	Catalog    *core.Catalog
	Metrics    *metrics.Metrics
	OpenReview *openreview.Client
	Sparql     *sparql.Client
	Logger     *slog.Logger

	stash  *stash.Stash
	driver driver.GraphDriver
}

type Options struct {
	// Graph connects to Memgraph. Without it export operations fail with
	// core.ErrNoGraph.
	Graph bool

	// NoStash disables the OpenReview response cache.
	NoStash bool
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*App, error) {
	a := &App{
		Config:  cfg,
		Metrics: metrics.New(),
		Logger:  logger,
	}

	// 1. Stash
	orOpts := []openreview.Option{
		openreview.WithMetrics(a.Metrics),
		openreview.WithLogger(logger.With("component", "openreview")),
	}
	if !opts.NoStash {
		s, err := stash.Open(stash.Config{
			Path:     cfg.Stash.Path,
			InMemory: cfg.Stash.InMemory,
			TTL:      time.Duration(cfg.Stash.TTLHours) * time.Hour,
			Logger:   logger.With("component", "stash"),
			Metrics:  a.Metrics,
		})
		if err != nil {
			return nil, err
		}
		a.stash = s
		orOpts = append(orOpts, openreview.WithStash(s))
	}

	// 2. Sources
	a.OpenReview = openreview.NewClient(cfg.OpenReview, orOpts...)
	a.Sparql = sparql.NewClient(cfg.Sparql.Endpoint, time.Duration(cfg.Sparql.TimeoutSecs)*time.Second)
	a.Sparql.Logger = logger.With("component", "sparql")

	// 3. Graph
	if opts.Graph {
		d, err := driver.NewMemgraphDriver(ctx, cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password)
		if err != nil {
			_ = a.Close(ctx)
			return nil, fmt.Errorf("failed to connect to memgraph: %w", err)
		}
		d.Logger = logger.With("component", "memgraph")
		a.driver = d
	}

	// 4. Catalog
	a.Catalog = &core.Catalog{
		Driver:   a.driver,
		Tuples:   a.Sparql,
		Notes:    a.OpenReview,
		Profiles: a.OpenReview,
		Reducer:  reduce.New(reduce.WithLogger(logger.With("component", "reduce"))),
		Metrics:  a.Metrics,
		Logger:   logger,
		Workers:  cfg.Concurrency.ReduceWorkers,
	}
	return a, nil
}

func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.driver != nil {
		errs = append(errs, a.driver.Close(ctx))
	}
	if a.stash != nil {
		errs = append(errs, a.stash.Close())
	}
	return errors.Join(errs...)
}
