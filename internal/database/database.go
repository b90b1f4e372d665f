// Package database provides the book store adapters: MongoDB, Badger and an
// in-memory store, all implementing books.Repository.
package database

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/Aidin1998/bookshelf/internal/books"
	"github.com/Aidin1998/bookshelf/internal/config"
	"go.uber.org/zap"
)

var (
	_ books.Repository = (*MongoRepository)(nil)
	_ books.Repository = (*BadgerRepository)(nil)
	_ books.Repository = (*MemoryRepository)(nil)
)

// Open connects the store selected by cfg.Driver. The returned repository
// has been pinged; an error means the service must not start.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (books.Repository, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		repo, err := NewMongoRepository(ctx, MongoOptions{
			URI:            cfg.URI,
			Database:       cfg.Name,
			Collection:     cfg.Collection,
			ConnectTimeout: cfg.ConnectTimeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case config.DriverBadger:
		repo, err := NewBadgerRepository(cfg.BadgerPath, cfg.Collection, logger)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case config.DriverMemory:
		return NewMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// idKey appends the big-endian id to prefix so byte order matches id order
func idKey(prefix []byte, id int64) []byte {
	key := make([]byte, len(prefix)+8)
	copy(key, prefix)
	binary.BigEndian.PutUint64(key[len(prefix):], uint64(id))
	return key
}
