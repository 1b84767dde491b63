// Package mongo implements store.Store on MongoDB via the official
// mongo-driver v2.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/cameronfrazier/bottle-cork/store"
)

// Config describes one MongoDB database. URI, when set, wins over the
// host/port/credential fields.
type Config struct {
	URI      string
	Host     string
	Port     int
	Database string
	Username string
	Password string

	// ConnectTimeout bounds the initial dial + ping. 0 means 10s.
	ConnectTimeout time.Duration
}

func (c Config) uri() string {
	if c.URI != "" {
		return c.URI
	}
	host := c.Host
	if host == "" {
		host = "localhost"
	}
	port := c.Port
	if port == 0 {
		port = 27017
	}
	if c.Username != "" && c.Password != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%d/%s?authSource=admin",
			url.QueryEscape(c.Username), url.QueryEscape(c.Password), host, port, c.Database)
	}
	return fmt.Sprintf("mongodb://%s:%d/%s", host, port, c.Database)
}

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ store.Store = (*Store)(nil)

// Connect dials MongoDB and verifies the connection with a primary ping.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Database == "" {
		return nil, errors.New("mongo: database name is required")
	}

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.uri()))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}

	timeout := cfg.ConnectTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}

	return &Store{client: client, db: client.Database(cfg.Database)}, nil
}

func (s *Store) Collection(name string) store.Collection {
	return &collection{coll: s.db.Collection(name)}
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type collection struct {
	coll *mongo.Collection
}

var _ store.Collection = (*collection)(nil)

func (c *collection) FindOne(ctx context.Context, field string, value any) (store.Record, bool, error) {
	var doc bson.M
	err := c.coll.FindOne(ctx, bson.M{field: value}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return store.Record(doc), true, nil
}

func (c *collection) Find(ctx context.Context) (store.Cursor, error) {
	cur, err := c.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	return &cursor{cur: cur}, nil
}

func (c *collection) Count(ctx context.Context) (int64, error) {
	return c.coll.CountDocuments(ctx, bson.D{})
}

func (c *collection) Upsert(ctx context.Context, field string, value any, doc store.Record) error {
	_, err := c.coll.ReplaceOne(ctx, bson.M{field: value}, bson.M(doc),
		options.Replace().SetUpsert(true))
	return err
}

func (c *collection) Delete(ctx context.Context, field string, value any) error {
	_, err := c.coll.DeleteOne(ctx, bson.M{field: value})
	return err
}

func (c *collection) EnsureUniqueIndex(ctx context.Context, field string, dropDuplicates bool) error {
	if dropDuplicates {
		if err := c.sweepDuplicates(ctx, field); err != nil {
			return err
		}
	}
	_, err := c.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// sweepDuplicates removes all but the first document per field value.
// Modern MongoDB dropped the dropDups index option, so the sweep is a scan.
func (c *collection) sweepDuplicates(ctx context.Context, field string) error {
	cur, err := c.coll.Find(ctx, bson.D{})
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	seen := make(map[string]bool)
	var extra []any
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return err
		}
		v := fmt.Sprint(doc[field])
		if seen[v] {
			extra = append(extra, doc["_id"])
			continue
		}
		seen[v] = true
	}
	if err := cur.Err(); err != nil {
		return err
	}
	if len(extra) == 0 {
		return nil
	}
	_, err = c.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": extra}})
	return err
}

type cursor struct {
	cur *mongo.Cursor
}

func (cu *cursor) Next(ctx context.Context) (store.Record, bool, error) {
	if !cu.cur.Next(ctx) {
		return nil, false, cu.cur.Err()
	}
	var doc bson.M
	if err := cu.cur.Decode(&doc); err != nil {
		return nil, false, err
	}
	return store.Record(doc), true, nil
}

func (cu *cursor) Close(ctx context.Context) error { return cu.cur.Close(ctx) }
