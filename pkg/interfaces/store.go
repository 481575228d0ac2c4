package interfaces

import (
	"context"
	"time"
)

// ProcessedStore records which content files already triggered a
// notification. Keys are bare filenames (e.g. "hello-world.md").
type ProcessedStore interface {
	Has(ctx context.Context, filename string) (bool, error)
	Mark(ctx context.Context, filename string, at time.Time) error
	Forget(ctx context.Context, filename string) error
	List(ctx context.Context) ([]ProcessedFile, error)
}

// ProcessedFile is a single entry of a ProcessedStore.
type ProcessedFile struct {
	Filename    string    `json:"filename"`
	ProcessedAt time.Time `json:"processed_at"`
}
