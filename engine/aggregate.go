package engine

import (
	"fmt"
	"sort"
	"strings"

	"airbnb-insights/models"
)

// ReduceOp is the reduction applied to each group.
type ReduceOp string

const (
	Count ReduceOp = "count"
	Mean  ReduceOp = "mean"
)

// ParseReduceOp converts a case-insensitive name into a ReduceOp.
func ParseReduceOp(s string) (ReduceOp, error) {
	switch op := ReduceOp(strings.ToLower(strings.TrimSpace(s))); op {
	case Count, Mean:
		return op, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidReduceOp, s)
	}
}

// SortDirection orders a result table by reduced value.
type SortDirection int

const (
	Ascending SortDirection = iota
	Descending
)

// ParseSortDirection accepts "asc", "desc" or "" (ascending).
func ParseSortDirection(s string) (SortDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	default:
		return Ascending, fmt.Errorf("%w: %q", ErrInvalidSort, s)
	}
}

func (d SortDirection) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// AggregationRequest groups rows by GroupBy and reduces Reduce with Op.
// TopK of zero keeps every group.
type AggregationRequest struct {
	GroupBy   string
	Reduce    string
	Op        ReduceOp
	TopK      int
	Direction SortDirection
}

type resolvedRequest struct {
	group  column
	reduce column
}

func (r AggregationRequest) resolve() (resolvedRequest, error) {
	var rr resolvedRequest

	g, err := lookup(r.GroupBy)
	if err != nil {
		return rr, fmt.Errorf("group_by: %w", err)
	}
	rr.group = g

	switch r.Op {
	case Count:
		rr.reduce, err = lookup(r.Reduce)
	case Mean:
		rr.reduce, err = lookupNumeric(r.Reduce)
	default:
		return rr, fmt.Errorf("%w: %q", ErrInvalidReduceOp, r.Op)
	}
	if err != nil {
		return rr, fmt.Errorf("reduce: %w", err)
	}

	if r.TopK < 0 {
		return rr, fmt.Errorf("%w: %d", ErrInvalidTopK, r.TopK)
	}
	if r.Direction != Ascending && r.Direction != Descending {
		return rr, fmt.Errorf("%w: %d", ErrInvalidSort, r.Direction)
	}
	return rr, nil
}

// Validate checks the request against the schema without touching any rows.
func (r AggregationRequest) Validate() error {
	_, err := r.resolve()
	return err
}

// Aggregate groups the subset and reduces each group. Groups are sorted by
// value in the requested direction; ties keep first-encountered order.
func Aggregate(s Subset, req AggregationRequest) ([]models.GroupValue, error) {
	rr, err := req.resolve()
	if err != nil {
		return nil, err
	}

	pos := make(map[string]int)
	var keys []string
	var counts []int
	var sums []float64

	for i := 0; i < s.Len(); i++ {
		l := s.row(i)
		key := rr.group.key(l)
		p, ok := pos[key]
		if !ok {
			p = len(keys)
			pos[key] = p
			keys = append(keys, key)
			counts = append(counts, 0)
			sums = append(sums, 0)
		}
		counts[p]++
		if req.Op == Mean {
			sums[p] += rr.reduce.num(l)
		}
	}

	out := make([]models.GroupValue, len(keys))
	for p, key := range keys {
		gv := models.GroupValue{Key: key, Count: counts[p]}
		switch req.Op {
		case Count:
			gv.Value = float64(counts[p])
		case Mean:
			if counts[p] == 0 {
				return nil, fmt.Errorf("%w: %s=%q", ErrEmptyGroup, req.GroupBy, key)
			}
			gv.Value = sums[p] / float64(counts[p])
		}
		out[p] = gv
	}

	sortGroups(out, req.Direction)

	if req.TopK > 0 && len(out) > req.TopK {
		out = out[:req.TopK]
	}
	return out, nil
}

func sortGroups(groups []models.GroupValue, dir SortDirection) {
	if dir == Descending {
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Value > groups[j].Value })
		return
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Value < groups[j].Value })
}
