package board

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tertulia-im/tertulia/internal/models"
)

var ErrNotFound = errors.New("message not found")

// Repository defines persistence operations for the message board.
// VisibleTo returns messages the viewer may read in insertion order (oldest
// first); limit <= 0 means no cap.
type Repository interface {
	Insert(ctx context.Context, m *models.Message) error
	VisibleTo(ctx context.Context, viewer string, limit int) ([]*models.Message, error)
	Get(ctx context.Context, id string) (*models.Message, error)
	UpdateText(ctx context.Context, id, text string) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// MongoRepository implements Repository using MongoDB.
type MongoRepository struct {
	col *mongo.Collection
}

// NewMongoRepository creates a repository for the given collection and
// ensures the unique index on the message id.
func NewMongoRepository(ctx context.Context, col *mongo.Collection) (*MongoRepository, error) {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)}
	if _, err := col.Indexes().CreateOne(ctx, idx); err != nil {
		return nil, fmt.Errorf("messages id index: %w", err)
	}
	return &MongoRepository{col: col}, nil
}

func (r *MongoRepository) Insert(ctx context.Context, m *models.Message) error {
	_, err := r.col.InsertOne(ctx, m)
	return err
}

// VisibleTo issues the query equivalent of models.Message.VisibleTo.
func (r *MongoRepository) VisibleTo(ctx context.Context, viewer string, limit int) ([]*models.Message, error) {
	filter := bson.M{"$or": []bson.M{
		{"kind": bson.M{"$in": []string{models.KindStatus, models.KindMessage}}},
		{"from": models.Broadcast},
		{"from": viewer},
		{"to": viewer},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.Message{}
	for cur.Next(ctx) {
		var m models.Message
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, cur.Err()
}

func (r *MongoRepository) Get(ctx context.Context, id string) (*models.Message, error) {
	var m models.Message
	err := r.col.FindOne(ctx, bson.M{"id": id}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MongoRepository) UpdateText(ctx context.Context, id, text string) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"text": text}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}
