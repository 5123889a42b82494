package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jask/extracta/internal/config"
	"github.com/jask/extracta/internal/database"
	"github.com/jask/extracta/internal/ingest"
	"github.com/jask/extracta/internal/logger"
	"github.com/jask/extracta/internal/mapping"
	"github.com/jask/extracta/internal/observability"
	"github.com/jask/extracta/internal/service"
)

// app bundles what every command needs once config is loaded.
type app struct {
	cfg     config.Config
	log     zerolog.Logger
	db      *sql.DB
	sink    observability.Sink
	metrics *observability.Metrics
	events  *observability.LogSink
	out     io.Writer
}

func openApp(ctx context.Context, out io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})

	if err := migrateDatabase(cfg.Database.Path); err != nil {
		return nil, err
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	if err := database.SeedDefaults(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	a := &app{cfg: cfg, log: log, db: db, metrics: observability.NewMetrics(), out: out}
	sinks := []observability.Sink{a.metrics}
	if cfg.Log.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0o755); err != nil {
			log.Warn().Err(err).Msg("event log disabled")
		} else {
			a.events = observability.NewFileLogSink(logger.EventFile(cfg.Log.File, cfg.Log.MaxSizeMB))
			sinks = append(sinks, a.events)
		}
	}
	a.sink = observability.Multi(sinks...)
	return a, nil
}

// migrateDatabase creates the database directory on first use and applies
// pending migrations.
func migrateDatabase(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir db dir: %w", err)
	}
	return database.RunMigrations(path)
}

func (a *app) Close() error {
	var errs *multierror.Error
	if a.cfg.Metrics.Textfile != "" {
		if err := a.metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	if err := a.db.Close(); err != nil {
		errs = multierror.Append(errs, err)
	}
	return errs.ErrorOrNil()
}

func (a *app) mapping() (*mapping.Config, error) {
	if a.cfg.Mapping.Path == "" {
		return mapping.Default(), nil
	}
	return mapping.Load(a.cfg.Mapping.Path)
}

func (a *app) derivation() *service.DerivationService {
	return &service.DerivationService{DB: a.db, Sink: a.sink, PassThrough: a.cfg.Normalization.RefinePassThrough}
}

func (a *app) ingester() (*service.IngestService, error) {
	m, err := a.mapping()
	if err != nil {
		return nil, err
	}
	return &service.IngestService{
		DB:           a.db,
		Pipeline:     ingest.NewPipeline(a.sink),
		Mapping:      m,
		LogicVersion: a.cfg.Normalization.LogicVersion,
		Sink:         a.sink,
	}, nil
}

// run opens the app for the duration of fn.
func run(fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()
		a, err := openApp(ctx, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer func() {
			if cerr := a.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		ctx = logger.WithContext(ctx, a.log)
		return fn(ctx, a, args)
	}
}
