package engine

import (
	"errors"
	"math"
	"testing"

	"airbnb-insights/models"
)

func threeRooms() []models.Listing {
	return []models.Listing{
		{Name: "A", HostName: "h1", Country: "Spain", PropertyType: "House", RoomType: "Entire home", Price: 100, Availability365: 10},
		{Name: "B", HostName: "h2", Country: "Spain", PropertyType: "House", RoomType: "Private room", Price: 40, Availability365: 20},
		{Name: "C", HostName: "h3", Country: "Spain", PropertyType: "House", RoomType: "Private room", Price: 60, Availability365: 30},
	}
}

func equalIndices(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestApplyRoomTypeAndPrice(t *testing.T) {
	d := mustDataset(t, threeRooms())
	spec := NewFilterSpec().In(ColRoomType, "Private room").Between(ColPrice, 0, 50)

	sub, err := Apply(d, *spec)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if sub.Len() != 1 {
		t.Fatalf("Len: got %d, want 1", sub.Len())
	}
	if sub.Row(0).Price != 40 {
		t.Errorf("Row(0).Price: got %.2f, want 40", sub.Row(0).Price)
	}
}

func TestApplyPreservesOrder(t *testing.T) {
	d := mustDataset(t, sampleListings())
	sub, err := Apply(d, *NewFilterSpec().In(ColRoomType, "Entire home/apt"))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if want := []int{0, 2, 4}; !equalIndices(sub.Indices(), want) {
		t.Errorf("Indices: got %v, want %v", sub.Indices(), want)
	}
}

func TestFullDomainIsNoOp(t *testing.T) {
	d := mustDataset(t, sampleListings())

	for _, col := range []string{ColCountry, ColPropertyType, ColRoomType, ColHostName} {
		domain, _ := d.Domain(col)
		base := NewFilterSpec().Between(ColPrice, 30, 200)
		withAll := NewFilterSpec().Between(ColPrice, 30, 200).In(col, domain...)

		a, err := Apply(d, *base)
		if err != nil {
			t.Fatalf("Apply base: %v", err)
		}
		b, err := Apply(d, *withAll)
		if err != nil {
			t.Fatalf("Apply full domain: %v", err)
		}
		if !equalIndices(a.Indices(), b.Indices()) {
			t.Errorf("%s: full domain changed result: %v vs %v", col, a.Indices(), b.Indices())
		}
	}
}

func TestEmptySetMatchesNothing(t *testing.T) {
	d := mustDataset(t, sampleListings())
	sub, err := Apply(d, *NewFilterSpec().In(ColCountry))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if sub.Len() != 0 {
		t.Errorf("Len: got %d, want 0", sub.Len())
	}
}

func TestApplyNeverAddsRowsAndIsIdempotent(t *testing.T) {
	d := mustDataset(t, sampleListings())
	specs := []*FilterSpec{
		NewFilterSpec(),
		NewFilterSpec().In(ColCountry, "Spain", "Portugal"),
		NewFilterSpec().In(ColPropertyType, "Apartment").Between(ColAvailability365, 0, 100),
		NewFilterSpec().Between(ColPrice, 50, 500),
		NewFilterSpec().In(ColRoomType, "Nope"),
	}

	for i, spec := range specs {
		once, err := Apply(d, *spec)
		if err != nil {
			t.Fatalf("spec %d: %v", i, err)
		}
		if once.Len() > d.Len() {
			t.Errorf("spec %d: filter added rows (%d > %d)", i, once.Len(), d.Len())
		}
		twice, err := once.Apply(*spec)
		if err != nil {
			t.Fatalf("spec %d: reapply: %v", i, err)
		}
		if !equalIndices(once.Indices(), twice.Indices()) {
			t.Errorf("spec %d: not idempotent: %v vs %v", i, once.Indices(), twice.Indices())
		}
	}
}

func TestApplyValueMatchIsCaseSensitive(t *testing.T) {
	d := mustDataset(t, sampleListings())
	sub, _ := Apply(d, *NewFilterSpec().In(ColCountry, "spain"))
	if sub.Len() != 0 {
		t.Errorf("Len: got %d, want 0", sub.Len())
	}
}

func TestApplyRejectsInvalidSpecs(t *testing.T) {
	d := mustDataset(t, sampleListings())

	tests := []struct {
		name string
		spec *FilterSpec
		want error
	}{
		{"unknown categorical column", NewFilterSpec().In("neighbourhood", "x"), ErrInvalidColumn},
		{"unknown range column", NewFilterSpec().Between("rating", 1, 2), ErrInvalidColumn},
		{"categorical on numeric column", NewFilterSpec().In(ColPrice, "100"), ErrInvalidColumn},
		{"range on string column", NewFilterSpec().Between(ColCountry, 1, 2), ErrInvalidColumn},
		{"min above max", NewFilterSpec().Between(ColPrice, 200, 100), ErrInvalidRange},
		{"nan bound", NewFilterSpec().Between(ColPrice, math.NaN(), 100), ErrInvalidRange},
		{"outside observed domain", NewFilterSpec().Between(ColPrice, 1000, 2000), ErrInvalidRange},
	}

	for _, tt := range tests {
		if _, err := Apply(d, *tt.spec); !errors.Is(err, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, err, tt.want)
		}
		if err := d.Validate(*tt.spec); !errors.Is(err, tt.want) {
			t.Errorf("%s: Validate got %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestApplyAcceptsRangeOverlappingDomain(t *testing.T) {
	d := mustDataset(t, sampleListings())
	sub, err := Apply(d, *NewFilterSpec().Between(ColPrice, 0, 25))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if sub.Len() != 1 || sub.Row(0).Name != "Shared Dorm" {
		t.Errorf("got %v", sub.Rows())
	}
}

func TestApplyInclusiveBounds(t *testing.T) {
	d := mustDataset(t, sampleListings())
	sub, err := Apply(d, *NewFilterSpec().Between(ColPrice, 45, 120))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if want := []int{0, 1, 5}; !equalIndices(sub.Indices(), want) {
		t.Errorf("Indices: got %v, want %v", sub.Indices(), want)
	}
}
