package storage

import (
	"context"

	"airbnb-insights/models"
)

// ListingReader is the interface any dataset source must satisfy.
type ListingReader interface {
	Read(ctx context.Context) ([]models.Listing, error)
	Close() error
}

// ListingWriter is the interface any listing sink must satisfy.
type ListingWriter interface {
	Write(ctx context.Context, listings []models.Listing) error
	Close() error
}

// Header is the canonical column order of the listings table.
var Header = []string{
	"name", "host_name", "country", "property_type", "room_type", "price", "availability_365",
}
