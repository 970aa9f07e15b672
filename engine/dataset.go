package engine

import (
	"context"
	"fmt"
	"math"
	"sort"

	"airbnb-insights/models"
)

// Source is anything the dataset can be loaded from once at startup.
type Source interface {
	Read(ctx context.Context) ([]models.Listing, error)
}

// Range is an inclusive numeric interval.
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether v lies within the inclusive bounds.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Dataset is an immutable, in-memory table of listings. Column domains and
// numeric bounds are computed once when the dataset is built.
type Dataset struct {
	rows    []models.Listing
	domains map[string][]string
	bounds  map[string]Range
}

// Load reads every listing from src and builds a Dataset. Any failure is
// reported as ErrLoad.
func Load(ctx context.Context, src Source) (*Dataset, error) {
	rows, err := src.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return New(rows)
}

// New validates rows and builds a Dataset from a private copy of them.
func New(rows []models.Listing) (*Dataset, error) {
	for i := range rows {
		if err := validateRow(&rows[i]); err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrLoad, i+1, err)
		}
	}

	d := &Dataset{
		rows:    make([]models.Listing, len(rows)),
		domains: make(map[string][]string),
		bounds:  make(map[string]Range),
	}
	copy(d.rows, rows)

	for _, name := range columnOrder {
		c := schema[name]
		if c.kind == Numeric {
			if len(d.rows) > 0 {
				d.bounds[name] = d.observedRange(c)
			}
			continue
		}
		d.domains[name] = d.distinct(c)
	}
	return d, nil
}

func validateRow(l *models.Listing) error {
	for _, name := range columnOrder {
		c := schema[name]
		if c.kind != Numeric && c.str(l) == "" {
			return fmt.Errorf("%s is empty", name)
		}
	}
	if math.IsNaN(l.Price) || math.IsInf(l.Price, 0) || l.Price < 0 {
		return fmt.Errorf("%s %v is not a non-negative number", ColPrice, l.Price)
	}
	if l.Availability365 < 0 || l.Availability365 > 365 {
		return fmt.Errorf("%s %d is outside 0-365", ColAvailability365, l.Availability365)
	}
	return nil
}

func (d *Dataset) observedRange(c column) Range {
	r := Range{Min: math.Inf(1), Max: math.Inf(-1)}
	for i := range d.rows {
		v := c.num(&d.rows[i])
		r.Min = math.Min(r.Min, v)
		r.Max = math.Max(r.Max, v)
	}
	return r
}

func (d *Dataset) distinct(c column) []string {
	seen := make(map[string]struct{})
	var out []string
	for i := range d.rows {
		v := c.str(&d.rows[i])
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.rows)
}

// All returns a subset covering every row in dataset order.
func (d *Dataset) All() Subset {
	idx := make([]int, len(d.rows))
	for i := range idx {
		idx[i] = i
	}
	return Subset{ds: d, idx: idx}
}

// Domain returns the sorted distinct values of a string column.
func (d *Dataset) Domain(name string) ([]string, error) {
	if _, err := lookupString(name); err != nil {
		return nil, err
	}
	vals := d.domains[name]
	out := make([]string, len(vals))
	copy(out, vals)
	return out, nil
}

// Bounds returns the load-time min and max of a numeric column. ok is false
// for an empty dataset.
func (d *Dataset) Bounds(name string) (r Range, ok bool, err error) {
	if _, err := lookupNumeric(name); err != nil {
		return Range{}, false, err
	}
	r, ok = d.bounds[name]
	return r, ok, nil
}

// Subset is a stable selection of dataset rows. It holds row indices into the
// parent dataset and never copies listings until asked to.
type Subset struct {
	ds  *Dataset
	idx []int
}

// Len returns the number of rows in the subset.
func (s Subset) Len() int {
	return len(s.idx)
}

// Row returns a copy of the i-th row of the subset.
func (s Subset) Row(i int) models.Listing {
	return s.ds.rows[s.idx[i]]
}

func (s Subset) row(i int) *models.Listing {
	return &s.ds.rows[s.idx[i]]
}

// Rows returns copies of the subset's rows in dataset order.
func (s Subset) Rows() []models.Listing {
	out := make([]models.Listing, len(s.idx))
	for i, j := range s.idx {
		out[i] = s.ds.rows[j]
	}
	return out
}

// Indices returns the dataset positions of the subset's rows.
func (s Subset) Indices() []int {
	out := make([]int, len(s.idx))
	copy(out, s.idx)
	return out
}

// Dataset returns the dataset the subset was drawn from.
func (s Subset) Dataset() *Dataset {
	return s.ds
}

// Values returns the subset's values of a numeric column in row order.
func (s Subset) Values(name string) ([]float64, error) {
	c, err := lookupNumeric(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(s.idx))
	for i := range s.idx {
		out[i] = c.num(s.row(i))
	}
	return out, nil
}
