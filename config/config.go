package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Dataset source kinds.
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
	SourceSQLite   = "sqlite"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DatasetSource string
	CSVPath       string
	SQLitePath    string
	ListingsTable string
	SeedFromCSV   bool

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	PanelsPath string
	ExportPath string

	FilterCountries     []string
	FilterPropertyTypes []string
	FilterRoomTypes     []string
	FilterPriceMin      *float64
	FilterPriceMax      *float64

	MaxConcurrency int
	MaxRetries     int
	LogDebug       bool
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		DatasetSource: strings.ToLower(getEnv("DATASET_SOURCE", SourceCSV)),
		CSVPath:       getEnv("CSV_PATH", "./data/airbnb.csv"),
		SQLitePath:    getEnv("SQLITE_PATH", "./data/airbnb.db"),
		ListingsTable: getEnv("LISTINGS_TABLE", "listings"),
		SeedFromCSV:   getEnvBool("SEED_FROM_CSV", false),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "airbnb"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "airbnb123"),
		PostgresDB:       getEnv("POSTGRES_DB", "rental_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		PanelsPath: getEnv("PANELS_PATH", ""),
		ExportPath: getEnv("EXPORT_PATH", ""),

		FilterCountries:     getEnvList("FILTER_COUNTRIES"),
		FilterPropertyTypes: getEnvList("FILTER_PROPERTY_TYPES"),
		FilterRoomTypes:     getEnvList("FILTER_ROOM_TYPES"),
		FilterPriceMin:      getEnvFloat("FILTER_PRICE_MIN"),
		FilterPriceMax:      getEnvFloat("FILTER_PRICE_MAX"),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 4),
		MaxRetries:     getEnvInt("MAX_RETRIES", 5),
		LogDebug:       getEnvBool("LOG_DEBUG", false),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

// getEnvFloat returns nil when the variable is unset or not a number.
func getEnvFloat(key string) *float64 {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil {
		log.Printf("[config] Ignoring %s=%q: %v", key, val, err)
		return nil
	}
	return &f
}

// getEnvList splits a comma-separated variable, dropping blank items.
func getEnvList(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
