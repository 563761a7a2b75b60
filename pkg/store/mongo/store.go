// Package mongo stores trees in a MongoDB collection, one document per
// element record.
package mongo

import (
	"context"
	"fmt"
	"slices"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/pairtree/pkg/store"
)

// Defaults for [Options].
const (
	DefaultDatabase   = "pairtree"
	DefaultCollection = "tree_elements"
)

// Options configures [Open].
type Options struct {
	URI        string
	Database   string
	Collection string
}

// Store is a MongoDB-backed [store.Store].
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type document struct {
	Tree     string  `bson:"tree"`
	Element  string  `bson:"element"`
	ParentID *string `bson:"parent_id,omitempty"`
	Seq      int     `bson:"seq"`
	IDs      string  `bson:"ids,omitempty"`
}

// Open connects to MongoDB, pings the primary and ensures the (tree, seq)
// index exists.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.Database == "" {
		opts.Database = DefaultDatabase
	}
	if opts.Collection == "" {
		opts.Collection = DefaultCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(opts.Database).Collection(opts.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "tree", Value: 1}, {Key: "seq", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &Store{client: client, coll: coll}, nil
}

// Save replaces the documents of name. MongoDB transactions need a replica
// set, so the replace is a delete followed by an insert.
func (s *Store) Save(ctx context.Context, name string, records []store.Record) error {
	if _, err := s.coll.DeleteMany(ctx, bson.M{"tree": name}); err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	if len(records) == 0 {
		return nil
	}

	docs := make([]any, len(records))
	for i, r := range records {
		docs[i] = document{Tree: name, Element: r.Element, ParentID: r.ParentID, Seq: r.Seq, IDs: r.IDs}
	}
	if _, err := s.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert %s: %w", name, err)
	}
	return nil
}

// Load returns the records of name ordered by seq.
func (s *Store) Load(ctx context.Context, name string) ([]store.Record, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"tree": name},
		options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", name, err)
	}
	var docs []document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	if len(docs) == 0 {
		return nil, store.ErrNotFound
	}

	out := make([]store.Record, len(docs))
	for i, d := range docs {
		out[i] = store.Record{Element: d.Element, ParentID: d.ParentID, Seq: d.Seq, IDs: d.IDs}
	}
	return out, nil
}

// Delete removes all documents of name.
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.coll.DeleteMany(ctx, bson.M{"tree": name})
	if err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// List returns the distinct tree names.
func (s *Store) List(ctx context.Context) ([]string, error) {
	values, err := s.coll.Distinct(ctx, "tree", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list trees: %w", err)
	}
	names := make([]string, 0, len(values))
	for _, v := range values {
		if name, ok := v.(string); ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ store.Store = (*Store)(nil)
