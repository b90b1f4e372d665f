package books

import (
	"context"
	"errors"

	"github.com/Aidin1998/bookshelf/pkg/models"
)

// ErrNotFound is returned when no book has the requested id
var ErrNotFound = errors.New("book not found")

// Repository is the storage port of the books collection.
// Implementations allocate ids atomically: the first id of an empty
// collection is 1 and ids are never reused.
type Repository interface {
	// List returns every book ordered by ascending id
	List(ctx context.Context) ([]models.Book, error)
	// Get returns the book with the given id or ErrNotFound
	Get(ctx context.Context, id int64) (models.Book, error)
	// Create stores a new book with the next id
	Create(ctx context.Context, title string) (models.Book, error)
	// Update replaces the title of an existing book or returns ErrNotFound
	Update(ctx context.Context, id int64, title string) (models.Book, error)
	// Delete removes the book or returns ErrNotFound
	Delete(ctx context.Context, id int64) error
	// Ping reports whether the store is reachable
	Ping(ctx context.Context) error
	// Close releases the underlying connection
	Close(ctx context.Context) error
}
