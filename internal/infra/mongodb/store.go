package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dvloznov/finance-coach/internal/domain"
	"github.com/dvloznov/finance-coach/internal/store"
)

// ErrNoDocument is returned by DataStore.UpdateOne when the filter matched nothing.
var ErrNoDocument = errors.New("no document matched")

// DataStore is the subset of collection operations the store needs.
type DataStore interface {
	FindAll(ctx context.Context, filter bson.M) ([]bson.M, error)
	InsertOne(ctx context.Context, document interface{}) error
	UpdateOne(ctx context.Context, filter, update bson.M) (bson.M, error)
}

// CollectionProvider hands out collections by name.
type CollectionProvider interface {
	Collection(name string) DataStore
}

// MongoCollection adapts *mongo.Collection to DataStore.
type MongoCollection struct {
	*mongo.Collection
}

// FindAll decodes every document matching filter.
func (c *MongoCollection) FindAll(ctx context.Context, filter bson.M) ([]bson.M, error) {
	cur, err := c.Collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to perform Find: %w", err)
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}
	return docs, nil
}

// InsertOne inserts a single document.
func (c *MongoCollection) InsertOne(ctx context.Context, document interface{}) error {
	if _, err := c.Collection.InsertOne(ctx, document); err != nil {
		return fmt.Errorf("failed to perform InsertOne: %w", err)
	}
	return nil
}

// UpdateOne applies update to the first match and returns the new document.
func (c *MongoCollection) UpdateOne(ctx context.Context, filter, update bson.M) (bson.M, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc bson.M
	err := c.Collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("failed to perform FindOneAndUpdate: %w", err)
	}
	return doc, nil
}

// MongoProvider adapts a database handle to CollectionProvider.
type MongoProvider struct {
	db *mongo.Database
}

// NewMongoProvider creates a provider over database dbName.
func NewMongoProvider(client *mongo.Client, dbName string) *MongoProvider {
	return &MongoProvider{db: client.Database(dbName)}
}

// Collection returns a DataStore for the given collection name.
func (p *MongoProvider) Collection(name string) DataStore {
	return &MongoCollection{p.db.Collection(name)}
}

// Connect establishes and verifies a connection to MongoDB.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

// Store is the MongoDB backend. Each table is a collection of the same name.
type Store struct {
	provider CollectionProvider
	client   *mongo.Client
}

// New connects to uri and uses database dbName.
func New(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := Connect(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("mongodb.New: %w", err)
	}
	return &Store{provider: NewMongoProvider(client, dbName), client: client}, nil
}

// NewWithProvider builds a store over an arbitrary provider.
func NewWithProvider(provider CollectionProvider) *Store {
	return &Store{provider: provider}
}

// Close disconnects the client, if any.
func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(context.Background())
}

// ListTransactions implements store.TransactionStore.
func (s *Store) ListTransactions(ctx context.Context, userID string) ([]domain.Record, error) {
	return s.findByUser(ctx, domain.TableTransactions, userID)
}

// InsertTransaction implements store.TransactionStore.
func (s *Store) InsertTransaction(ctx context.Context, rec domain.Record) error {
	return s.insert(ctx, domain.TableTransactions, rec)
}

// ListGoals implements store.GoalStore.
func (s *Store) ListGoals(ctx context.Context, userID string) ([]domain.Record, error) {
	return s.findByUser(ctx, domain.TableGoals, userID)
}

// InsertGoal implements store.GoalStore.
func (s *Store) InsertGoal(ctx context.Context, rec domain.Record) error {
	return s.insert(ctx, domain.TableGoals, rec)
}

// UpdateGoal implements store.GoalStore.
func (s *Store) UpdateGoal(ctx context.Context, userID, goalID string, fields domain.Record) (domain.Record, error) {
	set := bson.M{}
	for k, v := range fields {
		if k == domain.FieldID || k == domain.FieldUserID {
			continue
		}
		set[k] = v
	}
	filter := bson.M{domain.FieldUserID: userID, domain.FieldID: goalID}

	doc, err := s.provider.Collection(domain.TableGoals).UpdateOne(ctx, filter, bson.M{"$set": set})
	if errors.Is(err, ErrNoDocument) {
		return nil, fmt.Errorf("UpdateGoal: goal %s: %w", goalID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("UpdateGoal: %w", err)
	}
	return toRecord(doc), nil
}

// CreateUser implements store.UserStore.
func (s *Store) CreateUser(ctx context.Context, rec domain.Record) error {
	return s.insert(ctx, domain.TableUsers, rec)
}

// ListUsers implements store.UserStore.
func (s *Store) ListUsers(ctx context.Context) ([]domain.Record, error) {
	docs, err := s.provider.Collection(domain.TableUsers).FindAll(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("ListUsers: %w", err)
	}
	return toRecords(docs), nil
}

func (s *Store) findByUser(ctx context.Context, collection, userID string) ([]domain.Record, error) {
	docs, err := s.provider.Collection(collection).FindAll(ctx, bson.M{domain.FieldUserID: userID})
	if err != nil {
		return nil, fmt.Errorf("findByUser: %s: %w", collection, err)
	}
	return toRecords(docs), nil
}

func (s *Store) insert(ctx context.Context, collection string, rec domain.Record) error {
	doc := bson.M{}
	for k, v := range rec {
		doc[k] = v
	}
	if err := s.provider.Collection(collection).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert: %s: %w", collection, err)
	}
	return nil
}

func toRecords(docs []bson.M) []domain.Record {
	out := make([]domain.Record, 0, len(docs))
	for _, d := range docs {
		out = append(out, toRecord(d))
	}
	return out
}

// toRecord converts BSON driver values into plain Go values. The generated
// _id is dropped when the document carries its own id.
func toRecord(doc bson.M) domain.Record {
	rec := make(domain.Record, len(doc))
	for k, v := range doc {
		rec[k] = plain(v)
	}
	if _, ok := rec[domain.FieldID]; ok {
		delete(rec, "_id")
	}
	return rec
}

func plain(v any) any {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.Decimal128:
		f, err := strconv.ParseFloat(t.String(), 64)
		if err != nil {
			return nil
		}
		return f
	case bson.M:
		return map[string]any(toRecord(t))
	case bson.D:
		m := make(bson.M, len(t))
		for _, e := range t {
			m[e.Key] = e.Value
		}
		return map[string]any(toRecord(m))
	default:
		return v
	}
}

var _ store.Store = (*Store)(nil)
