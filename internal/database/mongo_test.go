package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Aidin1998/bookshelf/internal/books"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// startMongo runs a disposable MongoDB container and returns its URI
func startMongo(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	return uri
}

func TestMongoRepository(t *testing.T) {
	uri := startMongo(t)

	var n int
	runRepositoryTests(t, func(t *testing.T) books.Repository {
		n++
		repo, err := NewMongoRepository(context.Background(), MongoOptions{
			URI:            uri,
			Database:       fmt.Sprintf("bookshelf_test_%d", n),
			Collection:     "books",
			ConnectTimeout: 10 * time.Second,
		}, zap.NewNop())
		require.NoError(t, err)
		t.Cleanup(func() { _ = repo.Close(context.Background()) })
		return repo
	})
}

func TestMongoRepository_SeedsCounterFromExistingData(t *testing.T) {
	uri := startMongo(t)
	ctx := context.Background()
	opts := MongoOptions{URI: uri, Database: "bookshelf_seed", Collection: "books", ConnectTimeout: 10 * time.Second}

	repo, err := NewMongoRepository(ctx, opts, zap.NewNop())
	require.NoError(t, err)
	// Documents written by an older deployment, without a counter
	_, err = repo.books.InsertOne(ctx, bson.M{"id": 41, "title": "legacy"})
	require.NoError(t, err)
	_, err = repo.counters.DeleteMany(ctx, bson.M{})
	require.NoError(t, err)
	require.NoError(t, repo.Close(ctx))

	repo, err = NewMongoRepository(ctx, opts, zap.NewNop())
	require.NoError(t, err)
	defer repo.Close(ctx)

	book, err := repo.Create(ctx, "next")
	require.NoError(t, err)
	assert.Equal(t, int64(42), book.ID)

	legacy, err := repo.Get(ctx, 41)
	require.NoError(t, err)
	assert.Equal(t, "legacy", legacy.Title)
}

func TestMongoRepository_ConnectFailure(t *testing.T) {
	_, err := NewMongoRepository(context.Background(), MongoOptions{
		URI:            "mongodb://127.0.0.1:1",
		Database:       "bookshelf",
		Collection:     "books",
		ConnectTimeout: 200 * time.Millisecond,
	}, zap.NewNop())
	assert.Error(t, err)
}
