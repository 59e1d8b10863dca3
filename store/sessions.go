package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type sessionDoc struct {
	Token  string    `bson:"_id"`
	Data   []byte    `bson:"data"`
	Expiry time.Time `bson:"expiry"`
}

// Sessions is an scs.Store keeping session data in a mongo collection.
// Expired documents are removed by a TTL index; Find also ignores them in
// case the TTL monitor has not run yet.
type Sessions struct {
	Collection *mongo.Collection
	Timeout    time.Duration
}

// NewSessions returns a session store over the sessions collection of db.
func NewSessions(db *mongo.Database, timeout time.Duration) *Sessions {
	return &Sessions{Collection: db.Collection(SessionsCollection), Timeout: timeout}
}

// EnsureIndexes creates the TTL index on expiry.
func (s *Sessions) EnsureIndexes(ctx context.Context) error {
	_, err := s.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expiry", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return fmt.Errorf("create session indexes: %w", err)
	}
	return nil
}

// Find returns the data for a live session token.
func (s *Sessions) Find(token string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()

	var doc sessionDoc
	filter := bson.M{"_id": token, "expiry": bson.M{"$gt": time.Now()}}
	err := s.Collection.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("find session: %w", err)
	}
	return doc.Data, true, nil
}

// Commit upserts the session data for token.
func (s *Sessions) Commit(token string, b []byte, expiry time.Time) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()

	doc := sessionDoc{Token: token, Data: b, Expiry: expiry}
	_, err := s.Collection.ReplaceOne(ctx, bson.M{"_id": token}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("commit session: %w", err)
	}
	return nil
}

// Delete removes token; deleting a missing token is not an error.
func (s *Sessions) Delete(token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()

	if _, err := s.Collection.DeleteOne(ctx, bson.M{"_id": token}); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
