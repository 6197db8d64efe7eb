// Package app assembles the scheduling core and its infrastructure from the
// configuration.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/campusgrid/timetable/config"
	"github.com/campusgrid/timetable/core/builder"
	"github.com/campusgrid/timetable/core/catalog"
	"github.com/campusgrid/timetable/core/conflict"
	"github.com/campusgrid/timetable/core/constraint"
	coremetrics "github.com/campusgrid/timetable/core/metrics"
	"github.com/campusgrid/timetable/core/storage"
	"github.com/campusgrid/timetable/core/workflow"
	"github.com/campusgrid/timetable/infra/logger"
	"github.com/campusgrid/timetable/infra/metrics"
	"github.com/campusgrid/timetable/infra/notify"
	"github.com/campusgrid/timetable/infra/storage/postgres"
	"github.com/campusgrid/timetable/internal/eventbus"
	"github.com/campusgrid/timetable/internal/keylock"
)

// Service owns the wired scheduling components and their lifecycles.
type Service struct {
	Catalog    *catalog.Catalog
	Avail      *catalog.AvailabilityRegistry
	Index      *conflict.Index
	Engine     *constraint.Engine
	Builder    *builder.Builder
	Controller *workflow.Controller
	Store      storage.Store

	cfg   *config.Config
	bus   *eventbus.Bus
	sink  coremetrics.Sink
	log   logger.Logger
	pub   notify.Publisher
	relay *notify.Relay
	pg    *postgres.Store
}

// New wires a Service from the configuration. The conflict index is hydrated
// from the committed schedules in storage, so workflow operations observe
// sessions committed by earlier runs.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	log := logger.New(cfg.Logging.Component, cfg.Logging.Level)

	cat, avail, err := cfg.Catalog.BuildCatalog()
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	var store storage.Store
	var pg *postgres.Store
	switch cfg.Storage.Backend {
	case "postgres":
		pg, err = postgres.New(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
		if cfg.Storage.Migrate {
			mig, err := postgres.NewMigrator(pg.Pool())
			if err != nil {
				pg.Close()
				return nil, err
			}
			err = mig.Run(ctx)
			if cerr := mig.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				pg.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		store = pg
	default:
		store = storage.NewMemory()
	}

	index := conflict.NewIndex()
	records, err := store.Schedules(ctx)
	if err != nil {
		return nil, fmt.Errorf("hydrate index: %w", err)
	}
	for _, rec := range records {
		if err := index.Add(rec.Schedule, rec.GroupKeys); err != nil {
			return nil, fmt.Errorf("hydrate schedule %s: %w", rec.Schedule.ID, err)
		}
	}

	eng, err := constraint.New(cat, avail, index, constraint.StaticSource(cfg.Constraints),
		constraint.WithPrerequisites(cfg.Prerequisites),
		constraint.WithLogger(log))
	if err != nil {
		return nil, err
	}

	locks := keylock.New(time.Duration(cfg.Locking.WaitMS) * time.Millisecond)
	bus := eventbus.New()

	sink, err := metrics.NewSink(cfg.Metrics)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	bld, err := builder.New(cat, avail, index, eng, locks,
		builder.WithBus(bus), builder.WithSink(sink), builder.WithLogger(log))
	if err != nil {
		return nil, err
	}
	ctl, err := workflow.New(store, index, avail, eng, locks,
		workflow.WithBus(bus), workflow.WithSink(sink), workflow.WithLogger(log))
	if err != nil {
		return nil, err
	}

	svc := &Service{
		Catalog: cat, Avail: avail, Index: index, Engine: eng,
		Builder: bld, Controller: ctl, Store: store,
		cfg: cfg, bus: bus, log: log, sink: sink, pg: pg,
	}

	if cfg.Notify.Enabled {
		pub, err := notify.NewPahoPublisher(cfg.Notify)
		if err != nil {
			svc.Close()
			return nil, fmt.Errorf("notify: %w", err)
		}
		svc.pub = pub
		svc.relay = notify.NewRelay(bus, pub, cfg.Notify.TopicPrefix, log)
		svc.relay.Start()
	}
	return svc, nil
}

// Sink exposes the configured metrics sink; a NopSink when nothing is
// enabled.
func (s *Service) Sink() coremetrics.Sink { return s.sink }

// Run serves the Prometheus endpoint, when enabled, until the context is
// canceled.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	<-ctx.Done()
	return nil
}

// Close releases the notifier, the bus and the storage backend.
func (s *Service) Close() error {
	if s.relay != nil {
		s.relay.Stop()
	}
	if s.pub != nil {
		s.pub.Close()
	}
	s.bus.Close()
	if s.pg != nil {
		s.pg.Close()
	}
	return nil
}
