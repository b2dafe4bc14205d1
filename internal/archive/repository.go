package archive

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Repository persists render records.
type Repository interface {
	// Save inserts rec or replaces the record with the same ID.
	Save(ctx context.Context, rec *Record) (*Record, error)
	Get(ctx context.Context, path, format string) (*Record, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	List(ctx context.Context) ([]*Record, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// NotFoundError is returned when no record matches.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return "render record not found"
	}
	return fmt.Sprintf("render record %q not found", e.Key)
}
