package storage

import (
	"context"
	"time"
)

// ConversionRepository defines the interface for conversion history operations.
type ConversionRepository interface {
	SaveConversion(ctx context.Context, c *Conversion) error
	GetConversion(ctx context.Context, id string) (*Conversion, error)
	ListConversions(ctx context.Context, limit int) ([]Conversion, error)
	DeleteConversionsBefore(ctx context.Context, cutoff time.Time) (int64, error)
	CountConversions(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
}

// Compile-time interface satisfaction check
var _ ConversionRepository = (*DB)(nil)
