package database

import (
	"context"
	"sync"

	"github.com/Aidin1998/bookshelf/internal/books"
	"github.com/Aidin1998/bookshelf/pkg/models"
	"github.com/tidwall/btree"
)

// MemoryRepository keeps books in an id-ordered B-tree. It backs tests and
// local runs with driver "memory"; nothing survives a restart.
type MemoryRepository struct {
	mu    sync.RWMutex
	books *btree.Map[int64, models.Book]
	seq   int64
}

// NewMemoryRepository creates an empty in-memory store
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{books: btree.NewMap[int64, models.Book](0)}
}

// List returns every book ordered by id
func (r *MemoryRepository) List(ctx context.Context) ([]models.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]models.Book, 0, r.books.Len())
	r.books.Scan(func(_ int64, book models.Book) bool {
		result = append(result, book)
		return true
	})
	return result, nil
}

// Get returns the book with the given id
func (r *MemoryRepository) Get(ctx context.Context, id int64) (models.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	book, ok := r.books.Get(id)
	if !ok {
		return models.Book{}, books.ErrNotFound
	}
	return book, nil
}

// Create stores a new book with the next id
func (r *MemoryRepository) Create(ctx context.Context, title string) (models.Book, error) {
	if err := ctx.Err(); err != nil {
		return models.Book{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	book := models.Book{ID: r.seq, Title: title}
	r.books.Set(book.ID, book)
	return book, nil
}

// Update replaces the title of an existing book
func (r *MemoryRepository) Update(ctx context.Context, id int64, title string) (models.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books.Get(id); !ok {
		return models.Book{}, books.ErrNotFound
	}
	book := models.Book{ID: id, Title: title}
	r.books.Set(id, book)
	return book, nil
}

// Delete removes an existing book
func (r *MemoryRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books.Delete(id); !ok {
		return books.ErrNotFound
	}
	return nil
}

// Ping always succeeds
func (r *MemoryRepository) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op
func (r *MemoryRepository) Close(ctx context.Context) error {
	return nil
}
