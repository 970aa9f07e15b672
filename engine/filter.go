package engine

import (
	"fmt"
	"math"
	"sort"

	"airbnb-insights/models"
)

// FilterSpec is a declarative inclusion predicate. Constraints are combined
// with AND; a column without a constraint is unrestricted.
//
// A categorical key present with an empty value list matches no rows.
type FilterSpec struct {
	Categorical map[string][]string
	Ranges      map[string]Range
}

// NewFilterSpec returns an empty spec that matches every row.
func NewFilterSpec() *FilterSpec {
	return &FilterSpec{
		Categorical: make(map[string][]string),
		Ranges:      make(map[string]Range),
	}
}

// In restricts column to the given values.
func (f *FilterSpec) In(column string, values ...string) *FilterSpec {
	if f.Categorical == nil {
		f.Categorical = make(map[string][]string)
	}
	f.Categorical[column] = append([]string{}, values...)
	return f
}

// Between restricts column to the inclusive range [lo, hi].
func (f *FilterSpec) Between(column string, lo, hi float64) *FilterSpec {
	if f.Ranges == nil {
		f.Ranges = make(map[string]Range)
	}
	f.Ranges[column] = Range{Min: lo, Max: hi}
	return f
}

type setConstraint struct {
	col     column
	allowed map[string]struct{}
}

type rangeConstraint struct {
	col column
	r   Range
}

// predicate is a FilterSpec resolved against the schema.
type predicate struct {
	sets   []setConstraint
	ranges []rangeConstraint
}

func (p *predicate) match(l *models.Listing) bool {
	for _, c := range p.sets {
		if _, ok := c.allowed[c.col.str(l)]; !ok {
			return false
		}
	}
	for _, c := range p.ranges {
		if !c.r.Contains(c.col.num(l)) {
			return false
		}
	}
	return true
}

// Validate checks spec against the schema and the dataset's load-time bounds
// without scanning any rows.
func (d *Dataset) Validate(spec FilterSpec) error {
	_, err := d.compile(spec)
	return err
}

func (d *Dataset) compile(spec FilterSpec) (*predicate, error) {
	p := &predicate{}

	for _, name := range sortedKeys(spec.Categorical) {
		c, err := lookupString(name)
		if err != nil {
			return nil, err
		}
		allowed := make(map[string]struct{}, len(spec.Categorical[name]))
		for _, v := range spec.Categorical[name] {
			allowed[v] = struct{}{}
		}
		p.sets = append(p.sets, setConstraint{col: c, allowed: allowed})
	}

	for _, name := range sortedKeys(spec.Ranges) {
		c, err := lookupNumeric(name)
		if err != nil {
			return nil, err
		}
		r := spec.Ranges[name]
		if math.IsNaN(r.Min) || math.IsNaN(r.Max) {
			return nil, fmt.Errorf("%w: %s bounds must be numbers", ErrInvalidRange, name)
		}
		if r.Min > r.Max {
			return nil, fmt.Errorf("%w: %s min %v > max %v", ErrInvalidRange, name, r.Min, r.Max)
		}
		if b, ok := d.bounds[name]; ok && (r.Max < b.Min || r.Min > b.Max) {
			return nil, fmt.Errorf("%w: %s [%v, %v] lies outside observed [%v, %v]",
				ErrInvalidRange, name, r.Min, r.Max, b.Min, b.Max)
		}
		p.ranges = append(p.ranges, rangeConstraint{col: c, r: r})
	}

	return p, nil
}

// Apply filters every row of the dataset with spec.
func Apply(d *Dataset, spec FilterSpec) (Subset, error) {
	return d.All().Apply(spec)
}

// Apply filters the subset with spec, keeping row order.
func (s Subset) Apply(spec FilterSpec) (Subset, error) {
	if s.ds == nil {
		return s, nil
	}
	p, err := s.ds.compile(spec)
	if err != nil {
		return Subset{}, err
	}
	if len(p.sets) == 0 && len(p.ranges) == 0 {
		return s, nil
	}

	idx := make([]int, 0, len(s.idx))
	for _, j := range s.idx {
		if p.match(&s.ds.rows[j]) {
			idx = append(idx, j)
		}
	}
	return Subset{ds: s.ds, idx: idx}, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
