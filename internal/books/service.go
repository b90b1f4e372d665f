package books

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Aidin1998/bookshelf/pkg/metrics"
	"github.com/Aidin1998/bookshelf/pkg/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/Aidin1998/bookshelf/internal/books"

// BookService defines the operations of the books collection
type BookService interface {
	ListBooks(ctx context.Context) ([]models.Book, error)
	GetBook(ctx context.Context, id int64) (models.Book, error)
	CreateBook(ctx context.Context, title string) (models.Book, error)
	UpdateBook(ctx context.Context, id int64, title string) (models.Book, error)
	DeleteBook(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}

// Service implements BookService on top of a Repository
type Service struct {
	logger  *zap.Logger
	repo    Repository
	tracer  trace.Tracer
	ops     metric.Int64Counter
	timeout time.Duration
}

// Option configures a Service
type Option func(*Service)

// WithOperationTimeout bounds every repository call. Zero disables the bound.
func WithOperationTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.timeout = d
	}
}

// NewService creates a new BookService
func NewService(logger *zap.Logger, repo Repository, opts ...Option) (*Service, error) {
	if repo == nil {
		return nil, errors.New("books: nil repository")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &Service{
		logger: logger.Named("books"),
		repo:   repo,
		tracer: otel.Tracer(tracerName),
	}
	ops, err := otel.Meter(tracerName).Int64Counter("bookshelf.book.operations",
		metric.WithDescription("Book store operations by outcome"))
	if err != nil {
		return nil, fmt.Errorf("books: failed to create operations counter: %w", err)
	}
	svc.ops = ops
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// ListBooks returns every book in the collection
func (s *Service) ListBooks(ctx context.Context) ([]models.Book, error) {
	var books []models.Book
	err := s.observe(ctx, "list", func(ctx context.Context) error {
		var err error
		books, err = s.repo.List(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	if books == nil {
		books = []models.Book{}
	}
	return books, nil
}

// GetBook returns a single book or ErrNotFound
func (s *Service) GetBook(ctx context.Context, id int64) (models.Book, error) {
	var book models.Book
	err := s.observe(ctx, "get", func(ctx context.Context) error {
		var err error
		book, err = s.repo.Get(ctx, id)
		return err
	}, attribute.Int64("book.id", id))
	if err != nil {
		return models.Book{}, fmt.Errorf("failed to get book %d: %w", id, err)
	}
	return book, nil
}

// CreateBook stores a new book and returns it with its allocated id
func (s *Service) CreateBook(ctx context.Context, title string) (models.Book, error) {
	var book models.Book
	err := s.observe(ctx, "create", func(ctx context.Context) error {
		var err error
		book, err = s.repo.Create(ctx, title)
		return err
	})
	if err != nil {
		return models.Book{}, fmt.Errorf("failed to create book: %w", err)
	}
	s.logger.Debug("Book created", zap.Int64("id", book.ID))
	return book, nil
}

// UpdateBook replaces the title of an existing book
func (s *Service) UpdateBook(ctx context.Context, id int64, title string) (models.Book, error) {
	var book models.Book
	err := s.observe(ctx, "update", func(ctx context.Context) error {
		var err error
		book, err = s.repo.Update(ctx, id, title)
		return err
	}, attribute.Int64("book.id", id))
	if err != nil {
		return models.Book{}, fmt.Errorf("failed to update book %d: %w", id, err)
	}
	return book, nil
}

// DeleteBook removes a book
func (s *Service) DeleteBook(ctx context.Context, id int64) error {
	err := s.observe(ctx, "delete", func(ctx context.Context) error {
		return s.repo.Delete(ctx, id)
	}, attribute.Int64("book.id", id))
	if err != nil {
		return fmt.Errorf("failed to delete book %d: %w", id, err)
	}
	return nil
}

// Ping checks that the store answers
func (s *Service) Ping(ctx context.Context) error {
	return s.observe(ctx, "ping", s.repo.Ping)
}

// observe runs fn inside a span, under the operation timeout, and records
// the outcome. Not-found is an expected outcome and is not logged as a failure.
func (s *Service) observe(ctx context.Context, op string, fn func(context.Context) error, attrs ...attribute.KeyValue) error {
	ctx, span := s.tracer.Start(ctx, "books."+op, trace.WithAttributes(attrs...))
	defer span.End()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	err := fn(ctx)
	metrics.BookOperationLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())

	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		result = "not_found"
		span.SetAttributes(attribute.Bool("book.found", false))
	default:
		result = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error("Book store operation failed", zap.String("op", op), zap.Error(err))
	}
	metrics.BookOperations.WithLabelValues(op, result).Inc()
	s.ops.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("result", result)))
	return err
}
