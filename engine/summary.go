package engine

import (
	"fmt"
	"math"
	"sort"

	"airbnb-insights/models"
)

// Summarize computes a five-number summary of a numeric column for each group
// of the subset. Groups keep first-encountered order. Quartiles use linear
// interpolation between closest ranks.
func Summarize(s Subset, groupBy, column string) ([]models.BoxStats, error) {
	g, err := lookup(groupBy)
	if err != nil {
		return nil, fmt.Errorf("group_by: %w", err)
	}
	c, err := lookupNumeric(column)
	if err != nil {
		return nil, fmt.Errorf("column: %w", err)
	}

	pos := make(map[string]int)
	var keys []string
	var values [][]float64
	for i := 0; i < s.Len(); i++ {
		l := s.row(i)
		key := g.key(l)
		p, ok := pos[key]
		if !ok {
			p = len(keys)
			pos[key] = p
			keys = append(keys, key)
			values = append(values, nil)
		}
		values[p] = append(values[p], c.num(l))
	}

	out := make([]models.BoxStats, len(keys))
	for p, key := range keys {
		vs := values[p]
		if len(vs) == 0 {
			return nil, fmt.Errorf("%w: %s=%q", ErrEmptyGroup, groupBy, key)
		}
		sort.Float64s(vs)
		out[p] = models.BoxStats{
			Key:    key,
			Count:  len(vs),
			Min:    vs[0],
			Q1:     quantile(vs, 0.25),
			Median: quantile(vs, 0.5),
			Q3:     quantile(vs, 0.75),
			Max:    vs[len(vs)-1],
		}
	}
	return out, nil
}

// quantile expects sorted, non-empty input.
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}
