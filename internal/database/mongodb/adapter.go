package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Lumos-Labs-HQ/autoseed/internal/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const keyIndexName = "seed_natural_key"

type Adapter struct {
	client   *mongo.Client
	database *mongo.Database
	dbName   string
}

func New() *Adapter {
	return &Adapter{}
}

func (a *Adapter) Provider() string { return "mongodb" }

func (a *Adapter) Connect(ctx context.Context, url string) error {
	clientOpts := options.Client().ApplyURI(url)
	if err := clientOpts.Validate(); err != nil {
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	a.client = client
	a.dbName = extractDBName(url, clientOpts)
	a.database = client.Database(a.dbName)
	return nil
}

// Database exposes the underlying handle for GridFS asset storage.
func (a *Adapter) Database() *mongo.Database {
	return a.database
}

func (a *Adapter) Close() error {
	if a.client == nil {
		return nil
	}
	client := a.client
	a.client = nil
	a.database = nil
	return client.Disconnect(context.Background())
}

func (a *Adapter) HealthCheck(ctx context.Context) types.Health {
	if a.client == nil {
		return types.Health{OK: false, Message: "not connected"}
	}
	if err := a.client.Ping(ctx, nil); err != nil {
		return types.Health{OK: false, Message: fmt.Sprintf("ping failed: %v", err)}
	}
	names, err := a.database.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return types.Health{OK: false, Message: fmt.Sprintf("failed to list collections: %v", err)}
	}
	return types.Health{OK: true, Message: fmt.Sprintf("connected to %s (%d collections)", a.dbName, len(names))}
}

func (a *Adapter) Collection(name string) types.Collection {
	return &collection{name: name, coll: a.database.Collection(name)}
}

type collection struct {
	name string
	coll *mongo.Collection
}

func (c *collection) Name() string { return c.name }

func (c *collection) FindOne(ctx context.Context, key types.Key) (types.Document, bool, error) {
	return c.findOne(ctx, keyFilter(key))
}

func (c *collection) FindByID(ctx context.Context, id string) (types.Document, bool, error) {
	return c.findOne(ctx, bson.D{{Key: types.IDField, Value: id}})
}

func (c *collection) findOne(ctx context.Context, filter bson.D) (types.Document, bool, error) {
	var doc bson.M
	err := c.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("find in %s: %w", c.name, err)
	}
	return toDocument(doc), true, nil
}

func (c *collection) Insert(ctx context.Context, key types.Key, doc types.Document) error {
	if _, err := c.coll.InsertOne(ctx, bson.M(withoutObjectID(doc))); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", types.ErrDuplicateKey, err)
		}
		return fmt.Errorf("insert into %s: %w", c.name, err)
	}
	return nil
}

func (c *collection) Replace(ctx context.Context, key types.Key, doc types.Document) error {
	res, err := c.coll.ReplaceOne(ctx, keyFilter(key), bson.M(withoutObjectID(doc)))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", types.ErrDuplicateKey, err)
		}
		return fmt.Errorf("replace in %s: %w", c.name, err)
	}
	if res.MatchedCount == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (c *collection) Count(ctx context.Context) (int64, error) {
	return c.coll.CountDocuments(ctx, bson.M{})
}

func (c *collection) CountMissing(ctx context.Context, field string) (int64, error) {
	if strings.HasPrefix(field, "$") {
		return 0, fmt.Errorf("invalid field name: %s", field)
	}
	filter := bson.M{"$or": bson.A{
		bson.M{field: bson.M{"$exists": false}},
		bson.M{field: nil},
		bson.M{field: ""},
	}}
	return c.coll.CountDocuments(ctx, filter)
}

func (c *collection) EnsureKeyIndex(ctx context.Context, fields []string) error {
	if len(fields) == 0 {
		return nil
	}
	keys := bson.D{}
	for _, f := range fields {
		keys = append(keys, bson.E{Key: f, Value: 1})
	}
	models := []mongo.IndexModel{
		{Keys: keys, Options: options.Index().SetName(keyIndexName).SetUnique(true)},
		{Keys: bson.D{{Key: types.IDField, Value: 1}}, Options: options.Index().SetName("seed_id")},
	}
	if _, err := c.coll.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("create indexes on %s: %w", c.name, err)
	}
	return nil
}

func (c *collection) Drop(ctx context.Context) error {
	return c.coll.Drop(ctx)
}
