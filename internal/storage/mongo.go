package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/IshaanNene/newsgoat/internal/config"
	"github.com/IshaanNene/newsgoat/internal/types"
)

// mongoDoc is the stored form of a headline. Times are kept as RFC3339Nano
// strings because BSON dates only hold milliseconds.
type mongoDoc struct {
	Position    int    `bson:"position"`
	Title       string `bson:"title"`
	Source      string `bson:"source"`
	PublishedAt string `bson:"published_at,omitempty"`
	URL         string `bson:"url,omitempty"`
	Summary     string `bson:"summary,omitempty"`
	FetchedAt   string `bson:"fetched_at"`
}

// MongoStore keeps the dataset in a MongoDB collection.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	timeout    time.Duration
	logger     *slog.Logger
}

// NewMongoStore connects to MongoDB and ensures the position index.
func NewMongoStore(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (*MongoStore, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, storageErr("mongodb", "connect", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, storageErr("mongodb", "ping", err)
	}

	collection := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "position", Value: 1}},
	})
	if err != nil {
		client.Disconnect(context.Background())
		return nil, storageErr("mongodb", "index", err)
	}

	return &MongoStore{
		client:     client,
		collection: collection,
		timeout:    timeout,
		logger:     logger.With("component", "mongo_store"),
	}, nil
}

func (s *MongoStore) Name() string { return "mongodb" }

// Save deletes every document and inserts records with their positions.
func (s *MongoStore) Save(ctx context.Context, records []types.Headline) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.collection.DeleteMany(ctx, bson.D{}); err != nil {
		return storageErr("mongodb", "save", err)
	}
	if len(records) == 0 {
		return nil
	}

	docs := make([]any, len(records))
	for i, h := range records {
		doc := mongoDoc{
			Position:  i,
			Title:     h.Title,
			Source:    h.Source,
			URL:       h.URL,
			Summary:   h.Summary,
			FetchedAt: h.FetchedAt.UTC().Format(time.RFC3339Nano),
		}
		if h.PublishedAt != nil {
			doc.PublishedAt = h.PublishedAt.UTC().Format(time.RFC3339Nano)
		}
		docs[i] = doc
	}

	if _, err := s.collection.InsertMany(ctx, docs); err != nil {
		return storageErr("mongodb", "save", err)
	}

	s.logger.Debug("dataset saved", "records", len(records))
	return nil
}

func (s *MongoStore) Load(ctx context.Context) ([]types.Headline, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cursor, err := s.collection.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "position", Value: 1}}))
	if err != nil {
		return nil, storageErr("mongodb", "load", err)
	}
	defer cursor.Close(ctx)

	records := []types.Headline{}
	for cursor.Next(ctx) {
		var doc mongoDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, storageErr("mongodb", "load", err)
		}
		h := types.Headline{
			Title:   doc.Title,
			Source:  doc.Source,
			URL:     doc.URL,
			Summary: doc.Summary,
		}
		if doc.PublishedAt != "" {
			t, err := time.Parse(time.RFC3339Nano, doc.PublishedAt)
			if err != nil {
				return nil, storageErr("mongodb", "load", fmt.Errorf("published_at: %w", err))
			}
			h.SetPublished(t)
		}
		t, err := time.Parse(time.RFC3339Nano, doc.FetchedAt)
		if err != nil {
			return nil, storageErr("mongodb", "load", fmt.Errorf("fetched_at: %w", err))
		}
		h.FetchedAt = t.UTC()
		records = append(records, h)
	}
	if err := cursor.Err(); err != nil {
		return nil, storageErr("mongodb", "load", err)
	}
	return records, nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
