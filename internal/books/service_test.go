package books

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Aidin1998/bookshelf/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubRepository returns canned results and records the last call
type stubRepository struct {
	books    []models.Book
	err      error
	lastID   int64
	lastName string
	deadline bool
}

func (r *stubRepository) List(ctx context.Context) ([]models.Book, error) {
	return r.books, r.err
}

func (r *stubRepository) Get(ctx context.Context, id int64) (models.Book, error) {
	r.lastID = id
	if r.err != nil {
		return models.Book{}, r.err
	}
	for _, b := range r.books {
		if b.ID == id {
			return b, nil
		}
	}
	return models.Book{}, ErrNotFound
}

func (r *stubRepository) Create(ctx context.Context, title string) (models.Book, error) {
	_, r.deadline = ctx.Deadline()
	r.lastName = title
	if r.err != nil {
		return models.Book{}, r.err
	}
	b := models.Book{ID: int64(len(r.books) + 1), Title: title}
	r.books = append(r.books, b)
	return b, nil
}

func (r *stubRepository) Update(ctx context.Context, id int64, title string) (models.Book, error) {
	r.lastID, r.lastName = id, title
	return models.Book{ID: id, Title: title}, r.err
}

func (r *stubRepository) Delete(ctx context.Context, id int64) error {
	r.lastID = id
	return r.err
}

func (r *stubRepository) Ping(ctx context.Context) error  { return r.err }
func (r *stubRepository) Close(ctx context.Context) error { return nil }

func newTestService(t *testing.T, repo Repository, opts ...Option) *Service {
	t.Helper()
	svc, err := NewService(zap.NewNop(), repo, opts...)
	require.NoError(t, err)
	return svc
}

func TestNewService_NilRepository(t *testing.T) {
	_, err := NewService(zap.NewNop(), nil)
	assert.Error(t, err)
}

func TestListBooks_NeverNil(t *testing.T) {
	svc := newTestService(t, &stubRepository{})

	books, err := svc.ListBooks(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, books)
	assert.Empty(t, books)
}

func TestGetBook_NotFoundIsWrapped(t *testing.T) {
	svc := newTestService(t, &stubRepository{})

	_, err := svc.GetBook(context.Background(), 42)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateBook_PassesTitle(t *testing.T) {
	repo := &stubRepository{}
	svc := newTestService(t, repo)

	book, err := svc.CreateBook(context.Background(), "Dune")
	require.NoError(t, err)
	assert.Equal(t, models.Book{ID: 1, Title: "Dune"}, book)
	assert.Equal(t, "Dune", repo.lastName)
}

func TestOperationTimeoutAppliesDeadline(t *testing.T) {
	repo := &stubRepository{}
	svc := newTestService(t, repo, WithOperationTimeout(time.Second))

	_, err := svc.CreateBook(context.Background(), "Dune")
	require.NoError(t, err)
	assert.True(t, repo.deadline)

	repo = &stubRepository{}
	svc = newTestService(t, repo)
	_, err = svc.CreateBook(context.Background(), "Dune")
	require.NoError(t, err)
	assert.False(t, repo.deadline)
}

func TestStorageErrorsPropagate(t *testing.T) {
	boom := errors.New("connection reset")
	svc := newTestService(t, &stubRepository{err: boom})
	ctx := context.Background()

	_, err := svc.ListBooks(ctx)
	assert.ErrorIs(t, err, boom)
	_, err = svc.GetBook(ctx, 1)
	assert.ErrorIs(t, err, boom)
	_, err = svc.CreateBook(ctx, "x")
	assert.ErrorIs(t, err, boom)
	_, err = svc.UpdateBook(ctx, 1, "x")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, svc.DeleteBook(ctx, 1), boom)
	assert.ErrorIs(t, svc.Ping(ctx), boom)
}

func TestUpdateAndDeleteForwardID(t *testing.T) {
	repo := &stubRepository{}
	svc := newTestService(t, repo)

	book, err := svc.UpdateBook(context.Background(), 7, "Dune Messiah")
	require.NoError(t, err)
	assert.Equal(t, int64(7), book.ID)
	assert.Equal(t, "Dune Messiah", repo.lastName)

	require.NoError(t, svc.DeleteBook(context.Background(), 9))
	assert.Equal(t, int64(9), repo.lastID)
}
