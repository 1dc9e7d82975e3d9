package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"osaka-mansion/models"
	"osaka-mansion/server"
	"osaka-mansion/services"
	"osaka-mansion/snapshot"
	"osaka-mansion/storage"
	"osaka-mansion/utils"
)

func (f *criteriaFlags) criteria() models.Criteria {
	return models.Criteria{
		Wards:    f.wards,
		Area:     models.Range{Min: f.areaMin, Max: f.areaMax},
		Age:      models.Range{Min: f.ageMin, Max: f.ageMax},
		Distance: models.Range{Min: f.distMin, Max: f.distMax},
	}
}

func (a *app) retry() *utils.RetryConfig {
	return &utils.RetryConfig{
		MaxAttempts: a.cfg.MaxRetries,
		BaseDelay:   2 * time.Second,
		Logger:      a.logger,
	}
}

// loadDataset reads the dataset from the configured source. Failure is
// fatal for every command that needs it.
func (a *app) loadDataset(ctx context.Context) (*models.Dataset, error) {
	var ds *models.Dataset
	err := a.logger.Timed("load-dataset", func() error {
		var err error
		ds, err = a.readDataset(ctx)
		return err
	})
	return ds, err
}

func (a *app) readDataset(ctx context.Context) (*models.Dataset, error) {
	loader := services.NewLoader(a.logger)

	switch strings.ToLower(a.cfg.DatasetSource) {
	case "", "csv":
		a.logger.Info("[loader] Reading %s (%s)", a.cfg.DatasetPath, a.cfg.DatasetEncoding)
		return loader.LoadRaw(ctx, storage.NewCSVReader(a.cfg.DatasetPath, a.cfg.DatasetEncoding))
	case "postgres":
		store, err := storage.NewPostgresStore(ctx, a.cfg.DSN(), a.retry())
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return loader.LoadRecords(ctx, store)
	default:
		return nil, fmt.Errorf("unknown dataset source %q", a.cfg.DatasetSource)
	}
}

func (a *app) runServe(ctx context.Context) error {
	ds, err := a.loadDataset(ctx)
	if err != nil {
		return err
	}

	sim := services.NewSimulator(a.cfg.Simulator)
	srv := server.New(ds, sim, a.logger, a.cfg.ExportPrefix, a.cfg.HTTPPort)
	return srv.Start(ctx)
}

func (a *app) runSummary(ctx context.Context, out io.Writer, c models.Criteria, asJSON bool) error {
	ds, err := a.loadDataset(ctx)
	if err != nil {
		return err
	}

	insights := services.NewInsightService(a.logger)
	report := insights.Generate(ds, c, services.NewSimulator(a.cfg.Simulator))

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	insights.Print(out, report)
	return nil
}

func (a *app) runSimulate(out io.Writer, price, rent, cost float64) error {
	sim := services.NewSimulator(a.cfg.Simulator)

	in, err := sim.Input(price, rent, cost)
	if err != nil {
		return err
	}
	res, err := sim.Simulate(in)
	if err != nil {
		return err
	}

	services.NewInsightService(a.logger).PrintSimulation(out, in, res)
	return nil
}

func (a *app) runExport(ctx context.Context, c models.Criteria) error {
	ds, err := a.loadDataset(ctx)
	if err != nil {
		return err
	}

	view := services.Filter(ds, c)
	path, err := storage.Export(a.cfg.ExportDir, a.cfg.ExportPrefix, view)
	if err != nil {
		return err
	}

	a.logger.Info("[export] Wrote %d records to %s", view.Len(), path)
	return nil
}

func (a *app) runSnapshot(ctx context.Context, c models.Criteria, perWard bool) error {
	ds, err := a.loadDataset(ctx)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("snapshot: listen: %w", err)
	}

	sim := services.NewSimulator(a.cfg.Simulator)
	httpSrv := &http.Server{
		Handler:           server.New(ds, sim, a.logger, a.cfg.ExportPrefix, 0).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("[snapshot] Dashboard server: %v", err)
		}
	}()
	defer httpSrv.Close()

	baseURL := "http://" + ln.Addr().String()
	targets := snapshot.Targets(baseURL, c, ds.Wards(), perWard)

	paths, err := snapshot.New(a.cfg, a.logger).Capture(ctx, targets)
	a.logger.Info("[snapshot] Captured %d of %d pages into %s", len(paths), len(targets), a.cfg.SnapshotDir)
	return err
}

func (a *app) runImportDB(ctx context.Context) error {
	loader := services.NewLoader(a.logger)
	ds, err := loader.LoadRaw(ctx, storage.NewCSVReader(a.cfg.DatasetPath, a.cfg.DatasetEncoding))
	if err != nil {
		return err
	}

	store, err := storage.NewPostgresStore(ctx, a.cfg.DSN(), a.retry())
	if err != nil {
		a.logger.Error("Make sure PostgreSQL is running and POSTGRES_* is set")
		return err
	}
	defer store.Close()

	if err := store.WriteContext(ctx, ds.Records()); err != nil {
		return err
	}

	a.logger.Info("[import] Stored %d records in PostgreSQL (table: transactions)", ds.Len())
	return nil
}
