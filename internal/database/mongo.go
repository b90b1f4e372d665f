package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Aidin1998/bookshelf/internal/books"
	"github.com/Aidin1998/bookshelf/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const (
	countersCollection = "counters"
	idIndexName        = "id_unique"
	// maxCreateAttempts bounds id reallocation when an insert hits a
	// duplicate id written outside this service
	maxCreateAttempts = 3
)

// MongoOptions configures the MongoDB store
type MongoOptions struct {
	URI            string
	Database       string
	Collection     string
	ConnectTimeout time.Duration
}

// MongoRepository stores books as {id, title} documents. Ids come from a
// per-collection counter document advanced with $inc.
type MongoRepository struct {
	client   *mongo.Client
	books    *mongo.Collection
	counters *mongo.Collection
	seqKey   string
	logger   *zap.Logger
}

// NewMongoRepository connects to MongoDB, pings the primary, ensures the
// unique id index and seeds the id counter from the highest stored id.
func NewMongoRepository(ctx context.Context, opts MongoOptions, logger *zap.Logger) (*MongoRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 10 * time.Second
	}

	connectCtx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(opts.URI).
		SetAppName("bookshelf").
		SetConnectTimeout(opts.ConnectTimeout).
		SetServerSelectionTimeout(opts.ConnectTimeout)

	client, err := mongo.Connect(connectCtx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(opts.Database)
	r := &MongoRepository{
		client:   client,
		books:    db.Collection(opts.Collection),
		counters: db.Collection(countersCollection),
		seqKey:   opts.Collection,
		logger:   logger.Named("mongo"),
	}
	if err := r.init(connectCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	r.logger.Info("Connected to MongoDB",
		zap.String("database", opts.Database),
		zap.String("collection", opts.Collection))
	return r, nil
}

func (r *MongoRepository) init(ctx context.Context) error {
	_, err := r.books.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName(idIndexName),
	})
	switch {
	case mongo.IsDuplicateKeyError(err):
		// Older data may already hold duplicate ids; new ids stay unique
		// through the counter, so keep serving.
		r.logger.Warn("Collection contains duplicate ids, unique index not created", zap.Error(err))
	case err != nil:
		return fmt.Errorf("failed to ensure id index: %w", err)
	}

	maxID, err := r.maxID(ctx)
	if err != nil {
		return err
	}
	_, err = r.counters.UpdateOne(ctx,
		bson.M{"_id": r.seqKey},
		bson.M{"$max": bson.M{"seq": maxID}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to seed id counter: %w", err)
	}
	return nil
}

func (r *MongoRepository) maxID(ctx context.Context) (int64, error) {
	var top models.Book
	err := r.books.FindOne(ctx, bson.D{},
		options.FindOne().SetSort(bson.D{{Key: "id", Value: -1}}),
	).Decode(&top)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read highest book id: %w", err)
	}
	return top.ID, nil
}

func (r *MongoRepository) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": r.seqKey},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate book id: %w", err)
	}
	return counter.Seq, nil
}

// List returns every book ordered by id
func (r *MongoRepository) List(ctx context.Context) ([]models.Book, error) {
	cursor, err := r.books.Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	result := []models.Book{}
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("failed to decode books: %w", err)
	}
	return result, nil
}

// Get returns the book with the given id
func (r *MongoRepository) Get(ctx context.Context, id int64) (models.Book, error) {
	var book models.Book
	err := r.books.FindOne(ctx, bson.M{"id": id}).Decode(&book)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Book{}, books.ErrNotFound
	}
	if err != nil {
		return models.Book{}, fmt.Errorf("failed to find book: %w", err)
	}
	return book, nil
}

// Create inserts a new book under the next counter value
func (r *MongoRepository) Create(ctx context.Context, title string) (models.Book, error) {
	var lastErr error
	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		id, err := r.nextID(ctx)
		if err != nil {
			return models.Book{}, err
		}
		book := models.Book{ID: id, Title: title}
		_, err = r.books.InsertOne(ctx, book)
		if err == nil {
			return book, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return models.Book{}, fmt.Errorf("failed to insert book: %w", err)
		}
		r.logger.Warn("Book id already taken, allocating another", zap.Int64("id", id))
		lastErr = err
	}
	return models.Book{}, fmt.Errorf("failed to insert book after %d attempts: %w", maxCreateAttempts, lastErr)
}

// Update sets the title of the matching book
func (r *MongoRepository) Update(ctx context.Context, id int64, title string) (models.Book, error) {
	res, err := r.books.UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{"title": title}},
	)
	if err != nil {
		return models.Book{}, fmt.Errorf("failed to update book: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.Book{}, books.ErrNotFound
	}
	return models.Book{ID: id, Title: title}, nil
}

// Delete removes the matching book
func (r *MongoRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.books.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	if res.DeletedCount == 0 {
		return books.ErrNotFound
	}
	return nil
}

// Ping checks the primary is reachable
func (r *MongoRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client
func (r *MongoRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
