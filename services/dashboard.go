package services

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"airbnb-insights/engine"
	"airbnb-insights/models"
	"airbnb-insights/utils"
)

// Selections are the user's sidebar choices. Empty lists select the whole
// domain and unset price bounds fall back to the dataset bounds.
type Selections struct {
	Countries     []string
	PropertyTypes []string
	RoomTypes     []string
	PriceMin      *float64
	PriceMax      *float64
}

// FilterSpec builds the engine filter for these selections.
func (s Selections) FilterSpec(ds *engine.Dataset) (engine.FilterSpec, error) {
	spec := engine.NewFilterSpec()
	if len(s.Countries) > 0 {
		spec.In(engine.ColCountry, s.Countries...)
	}
	if len(s.PropertyTypes) > 0 {
		spec.In(engine.ColPropertyType, s.PropertyTypes...)
	}
	if len(s.RoomTypes) > 0 {
		spec.In(engine.ColRoomType, s.RoomTypes...)
	}

	if s.PriceMin != nil || s.PriceMax != nil {
		bounds, ok, err := ds.Bounds(engine.ColPrice)
		if err != nil {
			return engine.FilterSpec{}, err
		}
		if !ok {
			bounds = engine.Range{Min: math.Inf(-1), Max: math.Inf(1)}
		}
		if s.PriceMin != nil {
			bounds.Min = *s.PriceMin
		}
		if s.PriceMax != nil {
			bounds.Max = *s.PriceMax
		}
		spec.Between(engine.ColPrice, bounds.Min, bounds.Max)
	}

	if err := ds.Validate(*spec); err != nil {
		return engine.FilterSpec{}, err
	}
	return *spec, nil
}

// Dashboard evaluates a fixed set of panels against one dataset.
type Dashboard struct {
	logger      *utils.Logger
	dataset     *engine.Dataset
	panels      []Panel
	concurrency int
}

// NewDashboard creates a Dashboard. concurrency bounds how many panels are
// computed at once; values below one mean one.
func NewDashboard(logger *utils.Logger, ds *engine.Dataset, panels []Panel, concurrency int) *Dashboard {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Dashboard{logger: logger, dataset: ds, panels: panels, concurrency: concurrency}
}

// Filter applies the selections to the dataset.
func (d *Dashboard) Filter(sel Selections) (engine.Subset, error) {
	spec, err := sel.FilterSpec(d.dataset)
	if err != nil {
		return engine.Subset{}, err
	}
	return engine.Apply(d.dataset, spec)
}

// Run filters the dataset once and computes every panel over the result.
func (d *Dashboard) Run(ctx context.Context, sel Selections) (*models.DashboardReport, error) {
	sub, err := d.Filter(sel)
	if err != nil {
		return nil, fmt.Errorf("dashboard: filter: %w", err)
	}

	report, err := d.Report(ctx, sub)
	if err != nil {
		return nil, err
	}
	if b, ok, _ := d.dataset.Bounds(engine.ColPrice); ok {
		report.PriceMin, report.PriceMax = b.Min, b.Max
		if sel.PriceMin != nil {
			report.PriceMin = *sel.PriceMin
		}
		if sel.PriceMax != nil {
			report.PriceMax = *sel.PriceMax
		}
	}
	return report, nil
}

// Report computes every panel over an already filtered subset. Panels run
// concurrently; the report keeps definition order.
func (d *Dashboard) Report(ctx context.Context, sub engine.Subset) (*models.DashboardReport, error) {
	report := &models.DashboardReport{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now(),
		TotalRows:   d.dataset.Len(),
		MatchedRows: sub.Len(),
		Panels:      make([]models.PanelResult, len(d.panels)),
	}

	d.logger.Info("[dashboard] Run %s: %d of %d listings match, computing %d panels",
		report.ID, report.MatchedRows, report.TotalRows, len(d.panels))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	for i, p := range d.panels {
		i, p := i, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			res, err := evaluate(p, sub)
			if err != nil {
				return fmt.Errorf("dashboard: panel %q: %w", p.Title, err)
			}
			report.Panels[i] = res
			d.logger.Debug("[dashboard] Panel %q done in %v", p.Title, time.Since(start))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}

func evaluate(p Panel, sub engine.Subset) (models.PanelResult, error) {
	res := models.PanelResult{
		Title:   p.Title,
		Page:    p.Page,
		GroupBy: p.GroupBy,
		Reduce:  p.Reduce,
		Op:      p.Op,
	}

	if p.Kind == KindSummary {
		boxes, err := engine.Summarize(sub, p.GroupBy, p.Reduce)
		if err != nil {
			return res, err
		}
		res.Op = KindSummary
		res.Boxes = boxes
		return res, nil
	}

	req, err := p.Request()
	if err != nil {
		return res, err
	}
	groups, err := engine.Aggregate(sub, req)
	if err != nil {
		return res, err
	}
	if p.Integer {
		for i := range groups {
			groups[i].Value = math.Trunc(groups[i].Value)
		}
	}
	res.Groups = groups
	return res, nil
}

const barWidth = 30

// Print renders the report as a terminal dashboard.
func (d *Dashboard) Print(w io.Writer, r *models.DashboardReport) {
	pr := message.NewPrinter(language.English)
	sep := strings.Repeat("═", 60)
	thin := strings.Repeat("─", 60)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  AIRBNB DATA VISUALIZATION\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Selection\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Listings matched : \033[1m%s\033[0m of %s\n",
		pr.Sprintf("%d", r.MatchedRows), pr.Sprintf("%d", r.TotalRows))
	if r.PriceMax > 0 {
		fmt.Fprintf(w, "  Price range      : %s to %s\n",
			pr.Sprintf("$%.2f", r.PriceMin), pr.Sprintf("$%.2f", r.PriceMax))
	}
	fmt.Fprintln(w)

	page := ""
	for _, p := range r.Panels {
		if p.Page != page {
			page = p.Page
			fmt.Fprintf(w, "\033[1;36m  ▌%s\033[0m\n\n", strings.ToUpper(page))
		}
		fmt.Fprintf(w, "\033[1;33m  %s\033[0m\n", p.Title)
		fmt.Fprintf(w, "  %s\n", thin)

		switch {
		case len(p.Boxes) > 0:
			fmt.Fprintf(w, "  %-28s %8s %8s %8s %8s %8s\n", label(p.GroupBy), "min", "q1", "median", "q3", "max")
			for _, b := range p.Boxes {
				fmt.Fprintf(w, "  %-28s %8.1f %8.1f %8.1f %8.1f %8.1f\n",
					truncate(b.Key, 28), b.Min, b.Q1, b.Median, b.Q3, b.Max)
			}
		case len(p.Groups) > 0:
			top := 0.0
			for _, g := range p.Groups {
				top = math.Max(top, g.Value)
			}
			for _, g := range p.Groups {
				n := 0
				if top > 0 {
					n = int(g.Value / top * barWidth)
				}
				fmt.Fprintf(w, "  %-28s %-*s %s\n",
					truncate(g.Key, 28), barWidth, strings.Repeat("█", n), formatValue(pr, p.Op, g.Value))
			}
		default:
			fmt.Fprintf(w, "  No listings match the selection\n")
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "  run %s\n\n", r.ID)
}

func formatValue(pr *message.Printer, op string, v float64) string {
	if op == string(engine.Count) || v == math.Trunc(v) {
		return pr.Sprintf("%d", int64(v))
	}
	return pr.Sprintf("%.2f", v)
}

// label turns a column name such as "property_type" into "Property Type".
func label(column string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(column, "_", " "))
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
