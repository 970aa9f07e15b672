package storage

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"airbnb-insights/models"
	"airbnb-insights/utils"
)

// Dialect captures the SQL differences between supported databases.
type Dialect struct {
	Name        string
	driver      string
	primaryKey  string
	placeholder func(n int) string
}

var (
	DialectPostgres = Dialect{
		Name:        "postgres",
		driver:      "postgres",
		primaryKey:  "SERIAL PRIMARY KEY",
		placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	}
	DialectSQLite = Dialect{
		Name:        "sqlite",
		driver:      "sqlite",
		primaryKey:  "INTEGER PRIMARY KEY AUTOINCREMENT",
		placeholder: func(int) string { return "?" },
	}
)

// DialectFor returns the dialect registered under name.
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case DialectPostgres.Name:
		return DialectPostgres, nil
	case DialectSQLite.Name:
		return DialectSQLite, nil
	default:
		return Dialect{}, fmt.Errorf("store: unsupported dialect %q", name)
	}
}

var identRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLStore persists listings in a relational table and serves them back as a
// dataset source.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	table   string
}

// NewSQLStore opens a connection, waits for the database to answer a ping,
// runs schema migrations, and returns a ready-to-use SQLStore.
func NewSQLStore(ctx context.Context, dialect Dialect, dsn, table string, retry *utils.RetryConfig) (*SQLStore, error) {
	if !identRegexp.MatchString(table) {
		return nil, fmt.Errorf("store: invalid table name %q", table)
	}

	db, err := sql.Open(dialect.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if dialect.Name == DialectSQLite.Name {
		db.SetMaxOpenConns(1)
	}

	if retry == nil {
		retry = &utils.RetryConfig{MaxAttempts: 1}
	}
	err = retry.Do(ctx, dialect.Name+"-ping", func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return db.PingContext(pingCtx)
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	s := &SQLStore{db: db, dialect: dialect, table: table}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id               %s,
			name             TEXT          NOT NULL,
			host_name        TEXT          NOT NULL,
			country          TEXT          NOT NULL,
			property_type    TEXT          NOT NULL,
			room_type        TEXT          NOT NULL,
			price            NUMERIC(10,2) NOT NULL DEFAULT 0,
			availability_365 INTEGER       NOT NULL DEFAULT 0
		)`, s.table, s.dialect.primaryKey),
	}
	for _, col := range []string{"country", "property_type", "room_type", "price"} {
		stmts = append(stmts, fmt.Sprintf(
			"CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s(%s)", s.table, col, s.table, col))
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Clear deletes all existing listings from the table.
func (s *SQLStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM "+s.table); err != nil {
		return fmt.Errorf("store: clear: %w", err)
	}
	return nil
}

// Write replaces the table contents with listings in one transaction.
func (s *SQLStore) Write(ctx context.Context, listings []models.Listing) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+s.table); err != nil {
		return fmt.Errorf("store: clear: %w", err)
	}

	const batchSize = 50
	for i := 0; i < len(listings); i += batchSize {
		end := i + batchSize
		if end > len(listings) {
			end = len(listings)
		}
		if err := s.insertBatch(ctx, tx, listings[i:end]); err != nil {
			return fmt.Errorf("store: insert rows %d-%d: %w", i+1, end, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

func (s *SQLStore) insertBatch(ctx context.Context, tx *sql.Tx, batch []models.Listing) error {
	const cols = 7
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	for idx, l := range batch {
		ph := make([]string, cols)
		for c := range ph {
			ph[c] = s.dialect.placeholder(idx*cols + c + 1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")
		valueArgs = append(valueArgs,
			l.Name, l.HostName, l.Country, l.PropertyType, l.RoomType, l.Price, l.Availability365)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES %s
	`, s.table, strings.Join(Header, ", "), strings.Join(valueStrings, ","))

	_, err := tx.ExecContext(ctx, query, valueArgs...)
	return err
}

// Read retrieves all stored listings in insertion order.
func (s *SQLStore) Read(ctx context.Context) ([]models.Listing, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY id", strings.Join(Header, ", "), s.table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: fetch all: %w", err)
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		var l models.Listing
		if err := rows.Scan(
			&l.Name, &l.HostName, &l.Country, &l.PropertyType, &l.RoomType,
			&l.Price, &l.Availability365,
		); err != nil {
			return nil, fmt.Errorf("store: scan row: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate rows: %w", err)
	}
	return listings, nil
}

// Close closes the database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
