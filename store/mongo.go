package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-dispensary/models"
)

// MongoStore persists session snapshots in a MongoDB collection, one
// document per session keyed by session id.
type MongoStore struct {
	Collection *mongo.Collection
}

// NewMongoStore creates a snapshot store on the "sessions" collection.
func NewMongoStore(client *mongo.Client) *MongoStore {
	return &MongoStore{
		Collection: client.Database("dispensary").Collection("sessions"),
	}
}

func (s *MongoStore) Load(ctx context.Context, sessionID string) (*models.SessionSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var snapshot models.SessionSnapshot
	err := s.Collection.FindOne(ctx, bson.M{"session.session_id": sessionID}).Decode(&snapshot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("load session snapshot: %w", err)
	}
	return &snapshot, nil
}

func (s *MongoStore) Save(ctx context.Context, snapshot *models.SessionSnapshot) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	snapshot.UpdatedAt = time.Now().UTC()
	_, err := s.Collection.ReplaceOne(
		ctx,
		bson.M{"session.session_id": snapshot.Session.SessionID},
		snapshot,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("save session snapshot: %w", err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, sessionID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := s.Collection.DeleteOne(ctx, bson.M{"session.session_id": sessionID})
	if err != nil {
		return fmt.Errorf("delete session snapshot: %w", err)
	}
	return nil
}
