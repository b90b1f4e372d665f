package database

import (
	"context"
	"testing"

	"github.com/Aidin1998/bookshelf/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpen_SelectsDriver(t *testing.T) {
	ctx := context.Background()

	repo, err := Open(ctx, config.DatabaseConfig{Driver: config.DriverMemory, Collection: "books"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &MemoryRepository{}, repo)

	repo, err = Open(ctx, config.DatabaseConfig{
		Driver:     config.DriverBadger,
		Collection: "books",
		BadgerPath: t.TempDir(),
	}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &BadgerRepository{}, repo)
	require.NoError(t, repo.Close(ctx))
}

func TestOpen_UnknownDriver(t *testing.T) {
	repo, err := Open(context.Background(), config.DatabaseConfig{Driver: "cassandra"}, zap.NewNop())
	assert.Error(t, err)
	assert.Nil(t, repo)
}

func TestIDKeyOrdering(t *testing.T) {
	prefix := []byte("books/")
	assert.Less(t, string(idKey(prefix, 9)), string(idKey(prefix, 10)))
	assert.Less(t, string(idKey(prefix, 255)), string(idKey(prefix, 256)))
	assert.Len(t, idKey(prefix, 1), len(prefix)+8)
}
