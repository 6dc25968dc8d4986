package docstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// mongoStore keeps one mongo collection per entity collection. Document ids
// are stored as _id and JSON bodies round-trip through relaxed extended JSON.
type mongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongo(ctx context.Context, uri, database string) (Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &mongoStore{client: client, db: client.Database(database)}, nil
}

func toBSON(id string, body []byte) (bson.M, error) {
	var doc bson.M
	if err := bson.UnmarshalExtJSON(body, false, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	doc["_id"] = id
	return doc, nil
}

func fromBSON(doc bson.M) ([]byte, error) {
	delete(doc, "_id")
	body, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return body, nil
}

// mongoFilter pushes the whole filter down. Zero values use $in with null so
// documents missing the field match too.
func mongoFilter(norm map[string]any) bson.M {
	q := bson.M{}
	for k, v := range norm {
		if isZero(v) {
			q[k] = bson.M{"$in": bson.A{v, nil}}
			continue
		}
		q[k] = v
	}
	return q
}

func (s *mongoStore) Get(ctx context.Context, collection, id string) ([]byte, error) {
	var doc bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return fromBSON(doc)
}

func (s *mongoStore) Find(ctx context.Context, collection string, f Filter) ([][]byte, error) {
	norm, err := normalize(f)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.db.Collection(collection).Find(ctx, mongoFilter(norm), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	bodies := make([][]byte, 0, len(docs))
	for _, d := range docs {
		body, err := fromBSON(d)
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, body)
	}
	return bodies, nil
}

func (s *mongoStore) Create(ctx context.Context, collection, id string, body []byte) error {
	doc, err := toBSON(id, body)
	if err != nil {
		return err
	}
	_, err = s.db.Collection(collection).InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return ErrConflict
	}
	return err
}

func (s *mongoStore) Put(ctx context.Context, collection, id string, body []byte) error {
	doc, err := toBSON(id, body)
	if err != nil {
		return err
	}
	res, err := s.db.Collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoStore) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *mongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}
