package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"airbnb-insights/config"
	"airbnb-insights/engine"
	"airbnb-insights/services"
	"airbnb-insights/storage"
	"airbnb-insights/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLogger(cfg.LogDebug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("=== Airbnb Insights starting ===")
	logger.Info("Config: source %s | concurrency %d", cfg.DatasetSource, cfg.MaxConcurrency)

	src, err := openSource(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open dataset source: %v", err)
		os.Exit(1)
	}
	defer src.Close()

	t0 := time.Now()
	ds, err := engine.Load(ctx, src)
	if err != nil {
		logger.Error("[loader] %v", err)
		os.Exit(1)
	}
	logger.Info("[loader] Loaded %d listings in %v", ds.Len(), time.Since(t0))

	panels, err := services.LoadPanels(cfg.PanelsPath)
	if err != nil {
		logger.Error("Failed to load panels: %v", err)
		os.Exit(1)
	}

	sel := services.Selections{
		Countries:     cfg.FilterCountries,
		PropertyTypes: cfg.FilterPropertyTypes,
		RoomTypes:     cfg.FilterRoomTypes,
		PriceMin:      cfg.FilterPriceMin,
		PriceMax:      cfg.FilterPriceMax,
	}

	dashboard := services.NewDashboard(logger, ds, panels, cfg.MaxConcurrency)
	report, err := dashboard.Run(ctx, sel)
	if err != nil {
		logger.Error("Dashboard failed: %v", err)
		os.Exit(1)
	}
	dashboard.Print(os.Stdout, report)

	if cfg.ExportPath != "" {
		if err := exportSubset(ctx, cfg.ExportPath, dashboard, sel); err != nil {
			logger.Error("Export failed: %v", err)
		} else {
			logger.Info("Filtered listings saved to %s", cfg.ExportPath)
		}
	}

	fmt.Printf("  Done. %d of %d listings matched the selection.\n\n", report.MatchedRows, report.TotalRows)
}

// openSource returns the configured listing reader. SQL sources are seeded
// from the CSV file first when SEED_FROM_CSV is set.
func openSource(ctx context.Context, cfg *config.Config, logger *utils.Logger) (storage.ListingReader, error) {
	if cfg.DatasetSource == config.SourceCSV {
		r, err := storage.NewCSVReader(cfg.CSVPath)
		if err != nil {
			return nil, err
		}
		return r, nil
	}

	dialect, err := storage.DialectFor(cfg.DatasetSource)
	if err != nil {
		return nil, err
	}
	dsn := cfg.SQLitePath
	if dialect.Name == storage.DialectPostgres.Name {
		dsn = cfg.DSN()
	}

	retry := &utils.RetryConfig{MaxAttempts: cfg.MaxRetries, BaseDelay: 2 * time.Second, Logger: logger}
	store, err := storage.NewSQLStore(ctx, dialect, dsn, cfg.ListingsTable, retry)
	if err != nil {
		return nil, err
	}

	if cfg.SeedFromCSV {
		if err := seed(ctx, store, cfg.CSVPath, logger); err != nil {
			_ = store.Close()
			return nil, err
		}
	}
	return store, nil
}

func seed(ctx context.Context, store storage.ListingWriter, csvPath string, logger *utils.Logger) error {
	r, err := storage.NewCSVReader(csvPath)
	if err != nil {
		return err
	}
	defer r.Close()

	listings, err := r.Read(ctx)
	if err != nil {
		return err
	}
	if err := store.Write(ctx, listings); err != nil {
		return err
	}
	logger.Info("[store] Seeded %d listings from %s", len(listings), csvPath)
	return nil
}

func exportSubset(ctx context.Context, path string, dashboard *services.Dashboard, sel services.Selections) error {
	sub, err := dashboard.Filter(sel)
	if err != nil {
		return err
	}

	w, err := storage.NewCSVWriter(path)
	if err != nil {
		return err
	}
	if err := w.Write(ctx, sub.Rows()); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
