package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/Aidin1998/bookshelf/internal/books"
	"github.com/Aidin1998/bookshelf/pkg/models"
	"github.com/dgraph-io/badger/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const (
	// sequenceBandwidth is how many ids a Badger sequence leases at once
	sequenceBandwidth = 100
	// maxTxnAttempts bounds retries of read-modify-write transactions on conflict
	maxTxnAttempts = 5
)

// BadgerRepository persists books in an embedded BadgerDB. Each book is a
// BSON document under <collection>/books/<big-endian id>.
type BadgerRepository struct {
	db     *badger.DB
	seq    *badger.Sequence
	prefix []byte
	logger *zap.Logger
}

// NewBadgerRepository opens (or creates) a Badger store at path
func NewBadgerRepository(path, collection string, logger *zap.Logger) (*BadgerRepository, error) {
	return openBadger(badger.DefaultOptions(path), collection, logger)
}

// NewInMemoryBadgerRepository opens a Badger store that lives only in memory
func NewInMemoryBadgerRepository(collection string, logger *zap.Logger) (*BadgerRepository, error) {
	return openBadger(badger.DefaultOptions("").WithInMemory(true), collection, logger)
}

func openBadger(opts badger.Options, collection string, logger *zap.Logger) (*BadgerRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := badger.Open(opts.WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}
	seq, err := db.GetSequence([]byte(collection+"/seq"), sequenceBandwidth)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open id sequence: %w", err)
	}
	r := &BadgerRepository{
		db:     db,
		seq:    seq,
		prefix: []byte(collection + "/books/"),
		logger: logger.Named("badger"),
	}
	r.logger.Info("Opened Badger store", zap.String("dir", opts.Dir), zap.Bool("in_memory", opts.InMemory))
	return r, nil
}

// List returns every book ordered by id
func (r *BadgerRepository) List(ctx context.Context) ([]models.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result := []models.Book{}
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: true, PrefetchSize: 100, Prefix: r.prefix})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var book models.Book
			if err := it.Item().Value(func(v []byte) error {
				return bson.Unmarshal(v, &book)
			}); err != nil {
				return err
			}
			result = append(result, book)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan books: %w", err)
	}
	return result, nil
}

// Get returns the book with the given id
func (r *BadgerRepository) Get(ctx context.Context, id int64) (models.Book, error) {
	if err := ctx.Err(); err != nil {
		return models.Book{}, err
	}
	var book models.Book
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(idKey(r.prefix, id))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			return bson.Unmarshal(v, &book)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return models.Book{}, books.ErrNotFound
	}
	if err != nil {
		return models.Book{}, fmt.Errorf("failed to read book: %w", err)
	}
	return book, nil
}

// Create stores a new book under the next sequence value
func (r *BadgerRepository) Create(ctx context.Context, title string) (models.Book, error) {
	if err := ctx.Err(); err != nil {
		return models.Book{}, err
	}
	next, err := r.seq.Next()
	if err != nil {
		return models.Book{}, fmt.Errorf("failed to allocate book id: %w", err)
	}
	// Sequences start at 0; book ids start at 1
	book := models.Book{ID: int64(next) + 1, Title: title}
	value, err := bson.Marshal(book)
	if err != nil {
		return models.Book{}, fmt.Errorf("failed to encode book: %w", err)
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(idKey(r.prefix, book.ID), value)
	})
	if err != nil {
		return models.Book{}, fmt.Errorf("failed to write book: %w", err)
	}
	return book, nil
}

// Update replaces the title of an existing book
func (r *BadgerRepository) Update(ctx context.Context, id int64, title string) (models.Book, error) {
	book := models.Book{ID: id, Title: title}
	value, err := bson.Marshal(book)
	if err != nil {
		return models.Book{}, fmt.Errorf("failed to encode book: %w", err)
	}
	err = r.updateExisting(ctx, id, func(txn *badger.Txn, key []byte) error {
		return txn.Set(key, value)
	})
	if err != nil {
		return models.Book{}, err
	}
	return book, nil
}

// Delete removes an existing book
func (r *BadgerRepository) Delete(ctx context.Context, id int64) error {
	return r.updateExisting(ctx, id, func(txn *badger.Txn, key []byte) error {
		return txn.Delete(key)
	})
}

// updateExisting runs fn in a read-write transaction after checking the key
// exists, retrying when a concurrent transaction wins the conflict.
func (r *BadgerRepository) updateExisting(ctx context.Context, id int64, fn func(*badger.Txn, []byte) error) error {
	key := idKey(r.prefix, id)
	var err error
	for attempt := 0; attempt < maxTxnAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err = r.db.Update(func(txn *badger.Txn) error {
			if _, err := txn.Get(key); err != nil {
				return err
			}
			return fn(txn, key)
		})
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}
	switch {
	case err == nil:
		return nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return books.ErrNotFound
	default:
		return fmt.Errorf("failed to write book %d: %w", id, err)
	}
}

// Ping reports an error once the store has been closed
func (r *BadgerRepository) Ping(ctx context.Context) error {
	if r.db.IsClosed() {
		return errors.New("badger store is closed")
	}
	return nil
}

// Close releases leased ids and closes the store
func (r *BadgerRepository) Close(ctx context.Context) error {
	return errors.Join(r.seq.Release(), r.db.Close())
}
