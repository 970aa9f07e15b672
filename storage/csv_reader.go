package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"airbnb-insights/models"
)

// CSVReader reads cleaned listings from a CSV file with a header row.
// Columns are matched by name; columns outside the schema are ignored.
type CSVReader struct {
	src    io.Reader
	closer io.Closer
	name   string
}

// NewCSVReader opens the CSV file at path.
func NewCSVReader(path string) (*CSVReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open file %q: %w", path, err)
	}
	return &CSVReader{src: f, closer: f, name: path}, nil
}

// NewCSVReaderFrom reads CSV data from r. Close is a no-op.
func NewCSVReaderFrom(r io.Reader) *CSVReader {
	return &CSVReader{src: r, name: "<stream>"}
}

// Read parses every data row. The first malformed row aborts the read.
func (c *CSVReader) Read(ctx context.Context) ([]models.Listing, error) {
	r := csv.NewReader(c.src)
	r.ReuseRecord = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("csv: %s: empty file, header row required", c.name)
	}
	if err != nil {
		return nil, fmt.Errorf("csv: %s: read header: %w", c.name, err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	idx := make([]int, len(Header))
	for i, name := range Header {
		pos, ok := cols[name]
		if !ok {
			return nil, fmt.Errorf("csv: %s: missing required column %q", c.name, name)
		}
		idx[i] = pos
	}

	var listings []models.Listing
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: %s: %w", c.name, err)
		}

		l, err := parseRecord(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("csv: %s: line %d: %w", c.name, line, err)
		}
		listings = append(listings, l)
	}
	return listings, nil
}

// parseRecord maps a record onto a Listing; idx follows Header order.
func parseRecord(rec []string, idx []int) (models.Listing, error) {
	field := func(i int) string { return strings.TrimSpace(rec[idx[i]]) }

	price, err := strconv.ParseFloat(field(5), 64)
	if err != nil {
		return models.Listing{}, fmt.Errorf("column %q: %w", Header[5], err)
	}
	avail, err := parseWholeNumber(field(6))
	if err != nil {
		return models.Listing{}, fmt.Errorf("column %q: %w", Header[6], err)
	}

	return models.Listing{
		Name:            field(0),
		HostName:        field(1),
		Country:         field(2),
		PropertyType:    field(3),
		RoomType:        field(4),
		Price:           price,
		Availability365: avail,
	}, nil
}

// parseWholeNumber accepts "42" as well as "42.0", as written by dataframe exports.
func parseWholeNumber(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	return int(f), nil
}

// Close closes the underlying file, if any.
func (c *CSVReader) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}
