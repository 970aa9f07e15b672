package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"airbnb-insights/engine"
	"airbnb-insights/models"
	"airbnb-insights/utils"
)

func sampleListings() []models.Listing {
	return []models.Listing{
		{Name: "Villa A", HostName: "Ana", Country: "Portugal", PropertyType: "Villa", RoomType: "Entire home/apt", Price: 200, Availability365: 300},
		{Name: "Studio B", HostName: "Ana", Country: "Portugal", PropertyType: "Apartment", RoomType: "Entire home/apt", Price: 50, Availability365: 100},
		{Name: "Loft C", HostName: "Ken", Country: "Australia", PropertyType: "Apartment", RoomType: "Private room", Price: 120, Availability365: 10},
		{Name: "Cabin D", HostName: "Luis", Country: "Spain", PropertyType: "Cabin", RoomType: "Entire home/apt", Price: 300, Availability365: 365},
		{Name: "Flat E", HostName: "Ken", Country: "Australia", PropertyType: "Apartment", RoomType: "Private room", Price: 80, Availability365: 45},
	}
}

func newTestDashboard(t *testing.T) *Dashboard {
	t.Helper()
	ds, err := engine.New(sampleListings())
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	panels, err := LoadPanels("")
	if err != nil {
		t.Fatalf("LoadPanels: %v", err)
	}
	return NewDashboard(utils.Discard(), ds, panels, 3)
}

func floatPtr(f float64) *float64 { return &f }

func panelByTitle(t *testing.T, r *models.DashboardReport, title string) models.PanelResult {
	t.Helper()
	for _, p := range r.Panels {
		if p.Title == title {
			return p
		}
	}
	t.Fatalf("panel %q missing", title)
	return models.PanelResult{}
}

func TestDashboardRunAllSelected(t *testing.T) {
	d := newTestDashboard(t)
	r, err := d.Run(context.Background(), Selections{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if r.TotalRows != 5 || r.MatchedRows != 5 {
		t.Errorf("rows: got %d/%d, want 5/5", r.MatchedRows, r.TotalRows)
	}
	if r.PriceMin != 50 || r.PriceMax != 300 {
		t.Errorf("price range: got %.0f-%.0f, want 50-300", r.PriceMin, r.PriceMax)
	}
	if len(r.Panels) != 8 {
		t.Fatalf("panels: got %d, want 8", len(r.Panels))
	}
	if r.Panels[0].Title != "Top 10 Property Types" {
		t.Errorf("panel order changed: first is %q", r.Panels[0].Title)
	}
	if r.ID == "" {
		t.Error("report ID should be set")
	}

	top := panelByTitle(t, r, "Top 10 Property Types")
	if top.Groups[0].Key != "Apartment" || top.Groups[0].Value != 3 {
		t.Errorf("top property type: got %+v, want Apartment=3", top.Groups[0])
	}

	hosts := panelByTitle(t, r, "Top 10 Hosts with Highest number of Listings")
	if hosts.Groups[0].Key != "Ana" || hosts.Groups[1].Key != "Ken" {
		t.Errorf("top hosts: got %+v", hosts.Groups)
	}

	avg := panelByTitle(t, r, "Avg Price in each Room Type")
	if avg.Groups[0].Key != "Private room" || avg.Groups[0].Value != 100 {
		t.Errorf("avg price first group: got %+v, want Private room=100", avg.Groups[0])
	}

	box := panelByTitle(t, r, "Availability by Room Type")
	if len(box.Boxes) != 2 || box.Boxes[0].Median != 300 {
		t.Errorf("availability boxes: got %+v", box.Boxes)
	}
}

func TestDashboardIntegerPanelTruncates(t *testing.T) {
	d := newTestDashboard(t)
	r, err := d.Run(context.Background(), Selections{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Portugal availability mean is (300+100)/2 = 200, Australia (10+45)/2 = 27.5.
	p := panelByTitle(t, r, "Avg Availability in each Country")
	for _, g := range p.Groups {
		if g.Key == "Australia" && g.Value != 27 {
			t.Errorf("Australia: got %v, want 27", g.Value)
		}
	}
}

func TestDashboardRunWithSelections(t *testing.T) {
	d := newTestDashboard(t)
	r, err := d.Run(context.Background(), Selections{
		Countries: []string{"Portugal", "Australia"},
		RoomTypes: []string{"Private room"},
		PriceMax:  floatPtr(100),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if r.MatchedRows != 1 {
		t.Fatalf("MatchedRows: got %d, want 1", r.MatchedRows)
	}
	if r.PriceMin != 50 || r.PriceMax != 100 {
		t.Errorf("price range: got %.0f-%.0f, want 50-100", r.PriceMin, r.PriceMax)
	}

	country := panelByTitle(t, r, "Total Listings in each Country")
	if len(country.Groups) != 1 || country.Groups[0].Key != "Australia" {
		t.Errorf("country groups: got %+v", country.Groups)
	}
}

func TestDashboardRejectsBadPriceRange(t *testing.T) {
	d := newTestDashboard(t)
	_, err := d.Run(context.Background(), Selections{PriceMin: floatPtr(250), PriceMax: floatPtr(100)})
	if !errors.Is(err, engine.ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange, got %v", err)
	}
}

func TestDashboardFilterReturnsSubset(t *testing.T) {
	d := newTestDashboard(t)
	sub, err := d.Filter(Selections{PropertyTypes: []string{"Apartment"}})
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if sub.Len() != 3 {
		t.Errorf("Len: got %d, want 3", sub.Len())
	}
}

func TestDashboardRunCancelled(t *testing.T) {
	d := newTestDashboard(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := d.Run(ctx, Selections{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestDashboardPrint(t *testing.T) {
	d := newTestDashboard(t)
	r, err := d.Run(context.Background(), Selections{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var buf bytes.Buffer
	d.Print(&buf, r)
	out := buf.String()

	for _, want := range []string{"Top 10 Property Types", "OVERVIEW", "EXPLORE", "Room Type", "$300.00", r.ID} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestDashboardPrintEmptySelection(t *testing.T) {
	d := newTestDashboard(t)
	r, err := d.Run(context.Background(), Selections{Countries: []string{"Iceland"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if r.MatchedRows != 0 {
		t.Fatalf("MatchedRows: got %d, want 0", r.MatchedRows)
	}

	var buf bytes.Buffer
	d.Print(&buf, r)
	if !strings.Contains(buf.String(), "No listings match the selection") {
		t.Error("expected empty-selection message")
	}
}

func TestLabelAndTruncate(t *testing.T) {
	if got := label("property_type"); got != "Property Type" {
		t.Errorf("label: got %q", got)
	}
	if got := truncate("Apartamento Lisboa Centro Histórico", 12); got != "Apartamen..." {
		t.Errorf("truncate: got %q", got)
	}
	if got := truncate("short", 12); got != "short" {
		t.Errorf("truncate short: got %q", got)
	}
}
