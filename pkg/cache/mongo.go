package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCache stores entries as documents of one collection. A TTL index
// on the expiry field lets the server drop expired entries; Get also
// checks expiry since the TTL monitor runs only once a minute.
type MongoCache struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoEntry struct {
	Key     string    `bson:"_id"`
	Data    []byte    `bson:"data"`
	Expires time.Time `bson:"expires_at,omitempty"`
}

// NewMongoCache connects to uri and uses collection coll of database db.
func NewMongoCache(ctx context.Context, uri, db, coll string) (*MongoCache, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: mongo connect: %w", ErrNetwork, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%w: mongo ping: %w", ErrNetwork, err)
	}

	c := &MongoCache{client: client, coll: client.Database(db).Collection(coll)}
	_, err = c.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ttl index: %w", err)
	}
	return c, nil
}

// Get implements [Cache].
func (c *MongoCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var e mongoEntry
	err := RetryWithBackoff(ctx, func() error {
		return mongoError(c.coll.FindOne(ctx, bson.D{{Key: "_id", Value: key}}).Decode(&e))
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if !e.Expires.IsZero() && time.Now().After(e.Expires) {
		return nil, false, nil
	}
	return e.Data, true, nil
}

// Set implements [Cache].
func (c *MongoCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	e := mongoEntry{Key: key, Data: data}
	if ttl > 0 {
		e.Expires = time.Now().Add(ttl).UTC()
	}
	return RetryWithBackoff(ctx, func() error {
		_, err := c.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: key}}, e, options.Replace().SetUpsert(true))
		return mongoError(err)
	})
}

// Delete implements [Cache].
func (c *MongoCache) Delete(ctx context.Context, key string) error {
	return RetryWithBackoff(ctx, func() error {
		_, err := c.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: key}})
		return mongoError(err)
	})
}

// Close implements [Cache].
func (c *MongoCache) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.client.Disconnect(ctx)
}

func mongoError(err error) error {
	switch {
	case err == nil, errors.Is(err, mongo.ErrNoDocuments):
		return err
	case errors.Is(err, mongo.ErrClientDisconnected):
		return ErrClosed
	case mongo.IsNetworkError(err), mongo.IsTimeout(err):
		return Retryable(fmt.Errorf("%w: %w", ErrNetwork, err))
	}
	return err
}

var _ Cache = (*MongoCache)(nil)
