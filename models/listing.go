package models

import "time"

// Listing is one cleaned rental listing row as loaded into the engine.
type Listing struct {
	Name            string
	HostName        string
	Country         string
	PropertyType    string
	RoomType        string
	Price           float64
	Availability365 int
}

// GroupValue is a single (group key, reduced value) pair of a result table.
type GroupValue struct {
	Key   string
	Value float64
	Count int
}

// BoxStats is the five-number summary of one group, used for box plots.
type BoxStats struct {
	Key    string
	Count  int
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
}

// PanelResult holds the computed data behind one dashboard chart.
type PanelResult struct {
	Title   string
	Page    string
	GroupBy string
	Reduce  string
	Op      string
	Groups  []GroupValue
	Boxes   []BoxStats
}

// DashboardReport holds every panel computed for one set of selections.
type DashboardReport struct {
	ID          string
	GeneratedAt time.Time
	TotalRows   int
	MatchedRows int
	PriceMin    float64
	PriceMax    float64
	Panels      []PanelResult
}
