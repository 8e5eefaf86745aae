package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo maps collections onto MongoDB collections.  Documents use a
// string _id so ids stay interchangeable with the other backends.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongo(client *mongo.Client, database string) *Mongo {
	return &Mongo{client: client, db: client.Database(database)}
}

type mongoSnapshot struct {
	id  string
	raw bson.Raw
}

func (s mongoSnapshot) ID() string { return s.id }

func (s mongoSnapshot) DataTo(dst any) error { return bson.Unmarshal(s.raw, dst) }

func (m *Mongo) Save(ctx context.Context, collection, id string, doc any) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	b, err := bson.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode %s document: %w", collection, err)
	}
	var fields bson.D
	if err := bson.Unmarshal(b, &fields); err != nil {
		return "", err
	}
	fields = append(bson.D{{Key: "_id", Value: id}}, fields...)
	_, err = m.db.Collection(collection).ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: id}}, fields, options.Replace().SetUpsert(true))
	if err != nil {
		return "", fmt.Errorf("mongo replace %s/%s: %w", collection, id, err)
	}
	return id, nil
}

func (m *Mongo) Get(ctx context.Context, collection, id string) (Snapshot, error) {
	var raw bson.Raw
	err := m.db.Collection(collection).FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mongo find %s/%s: %w", collection, id, err)
	}
	return mongoSnapshot{id: id, raw: raw}, nil
}

func (m *Mongo) GetAll(ctx context.Context, collection string) ([]Snapshot, error) {
	return m.find(ctx, collection, bson.D{})
}

func (m *Mongo) QueryEqual(ctx context.Context, collection, field string, value any) ([]Snapshot, error) {
	return m.find(ctx, collection, bson.D{{Key: field, Value: value}})
}

func (m *Mongo) find(ctx context.Context, collection string, filter bson.D) ([]Snapshot, error) {
	cur, err := m.db.Collection(collection).Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("mongo find %s: %w", collection, err)
	}
	defer cur.Close(ctx)
	out := make([]Snapshot, 0)
	for cur.Next(ctx) {
		raw := make(bson.Raw, len(cur.Current))
		copy(raw, cur.Current)
		id, _ := raw.Lookup("_id").StringValueOK()
		out = append(out, mongoSnapshot{id: id, raw: raw})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("mongo cursor %s: %w", collection, err)
	}
	return out, nil
}

func (m *Mongo) Delete(ctx context.Context, collection, id string) error {
	if _, err := m.db.Collection(collection).DeleteOne(ctx, bson.D{{Key: "_id", Value: id}}); err != nil {
		return fmt.Errorf("mongo delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (m *Mongo) Exists(ctx context.Context, collection, id string) (bool, error) {
	n, err := m.db.Collection(collection).CountDocuments(ctx, bson.D{{Key: "_id", Value: id}}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("mongo count %s/%s: %w", collection, id, err)
	}
	return n > 0, nil
}

func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	return m.client.Disconnect(ctx)
}
