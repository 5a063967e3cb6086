// Path: internal/storage/session_storage.go
package storage

import (
	"context"
	"errors"
	"time"

	"catalog-viewer/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSessionStorage is the MongoDB implementation of the SessionStorage interface.
type MongoSessionStorage struct {
	collection *mongo.Collection
}

// NewMongoSessionStorage creates a new storage adapter for viewer sessions.
func NewMongoSessionStorage(db *mongo.Database, collectionName string) *MongoSessionStorage {
	return &MongoSessionStorage{
		collection: db.Collection(collectionName),
	}
}

// Load implements the SessionStorage interface.
func (s *MongoSessionStorage) Load(ctx context.Context, id string) (*domain.SessionDocument, error) {
	var doc domain.SessionDocument
	filter := bson.M{"_id": id}
	err := s.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		// A session that was never saved starts fresh.
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

// Save implements the SessionStorage interface.
func (s *MongoSessionStorage) Save(ctx context.Context, doc domain.SessionDocument) error {
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = time.Now().UTC()
	}
	opts := options.Replace().SetUpsert(true)
	filter := bson.M{"_id": doc.ID}
	_, err := s.collection.ReplaceOne(ctx, filter, doc, opts)
	return err
}
