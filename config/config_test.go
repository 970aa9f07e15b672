package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATASET_SOURCE", "")
	t.Setenv("FILTER_COUNTRIES", "")
	t.Setenv("FILTER_PRICE_MIN", "")

	cfg := Load()
	if cfg.DatasetSource != SourceCSV {
		t.Errorf("DatasetSource: got %q, want %q", cfg.DatasetSource, SourceCSV)
	}
	if cfg.ListingsTable != "listings" {
		t.Errorf("ListingsTable: got %q, want listings", cfg.ListingsTable)
	}
	if cfg.FilterCountries != nil {
		t.Errorf("FilterCountries: got %v, want nil", cfg.FilterCountries)
	}
	if cfg.FilterPriceMin != nil {
		t.Errorf("FilterPriceMin: got %v, want nil", *cfg.FilterPriceMin)
	}
}

func TestLoadSelections(t *testing.T) {
	t.Setenv("DATASET_SOURCE", "SQLite")
	t.Setenv("FILTER_COUNTRIES", "Spain, Portugal ,,")
	t.Setenv("FILTER_PRICE_MIN", "25.5")
	t.Setenv("FILTER_PRICE_MAX", "cheap")
	t.Setenv("MAX_CONCURRENCY", "8")
	t.Setenv("LOG_DEBUG", "true")

	cfg := Load()
	if cfg.DatasetSource != SourceSQLite {
		t.Errorf("DatasetSource: got %q, want %q", cfg.DatasetSource, SourceSQLite)
	}
	if len(cfg.FilterCountries) != 2 || cfg.FilterCountries[0] != "Spain" || cfg.FilterCountries[1] != "Portugal" {
		t.Errorf("FilterCountries: got %v", cfg.FilterCountries)
	}
	if cfg.FilterPriceMin == nil || *cfg.FilterPriceMin != 25.5 {
		t.Errorf("FilterPriceMin: got %v, want 25.5", cfg.FilterPriceMin)
	}
	if cfg.FilterPriceMax != nil {
		t.Errorf("FilterPriceMax: invalid value should be ignored, got %v", *cfg.FilterPriceMax)
	}
	if cfg.MaxConcurrency != 8 || !cfg.LogDebug {
		t.Errorf("MaxConcurrency/LogDebug: got %d/%v", cfg.MaxConcurrency, cfg.LogDebug)
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		PostgresHost: "db", PostgresPort: "5432", PostgresUser: "u",
		PostgresPassword: "p", PostgresDB: "rental_db", PostgresSSLMode: "disable",
	}
	want := "host=db port=5432 user=u password=p dbname=rental_db sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN: got %q, want %q", got, want)
	}
}
