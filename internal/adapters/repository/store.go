// Package repository defines the restaurant store interface and its
// in-memory and SQL implementations.
package repository

import (
	"context"

	"github.com/okian/bistro/internal/domain/model"
)

// Store provides read/write access to restaurant records.
type Store interface {
	// FindAll returns every restaurant ordered by id ascending.
	FindAll(ctx context.Context) ([]model.Restaurant, error)

	// FindByID returns the restaurant with id.
	// Returns ErrNotFound if no such record exists.
	FindByID(ctx context.Context, id int64) (model.Restaurant, error)

	// Create persists a new restaurant and returns it with its assigned id.
	// Omitted fields are stored as "".
	Create(ctx context.Context, fields model.Fields) (model.Restaurant, error)

	// Update merges fields into the record with id and returns the result.
	// With partial unset the record is fully replaced.
	// Returns ErrNotFound if no such record exists.
	Update(ctx context.Context, id int64, fields model.Fields, partial bool) (model.Restaurant, error)

	// Delete removes the record with id.
	// Returns ErrNotFound if no such record exists.
	Delete(ctx context.Context, id int64) error

	// Count returns the number of stored restaurants.
	Count(ctx context.Context) (int, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}
