// Package store persists books in SQLite (default) or PostgreSQL.
package store

import (
	"context"

	"github.com/starford/shelf/internal/models"
)

// Store defines the record store operations used by the catalog.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with fakes.
type Store interface {
	// Insert assigns a new id and timestamps to b and persists it.
	Insert(ctx context.Context, b models.Book) (models.Book, error)
	// Get returns the book with id or apperr.ErrNotFound.
	Get(ctx context.Context, id string) (models.Book, error)
	// Update replaces every field of the stored book with b's, keeping id and created_at.
	Update(ctx context.Context, b models.Book) (models.Book, error)
	// Delete removes the book with id or returns apperr.ErrNotFound.
	Delete(ctx context.Context, id string) error
	// List returns books in insertion order. A non-empty filter keeps books whose
	// title, author or isbn contain it, ignoring case.
	List(ctx context.Context, filter string) ([]models.Book, error)
	Ping(ctx context.Context) error
	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)
