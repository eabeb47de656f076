package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tertulia-im/tertulia/internal/models"
)

var (
	ErrAlreadyJoined = errors.New("name already joined")
	ErrNotFound      = errors.New("participant not found")
)

// Repository defines persistence operations for the participant directory.
// Insert must be atomic with respect to duplicates: uniqueness comes from the
// backend (unique index, transaction, map under lock), never from a
// check-then-insert in application code.
type Repository interface {
	Insert(ctx context.Context, p *models.Participant) error
	Touch(ctx context.Context, name string, when time.Time) error
	List(ctx context.Context) ([]*models.Participant, error)
	Delete(ctx context.Context, name string) error
	StaleBefore(ctx context.Context, cutoff time.Time) ([]*models.Participant, error)
	Exists(ctx context.Context, name string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// MongoRepository implements Repository using MongoDB.
type MongoRepository struct {
	col *mongo.Collection
}

// NewMongoRepository creates a repository for the given collection and
// ensures the unique index on name that makes Insert race-safe.
func NewMongoRepository(ctx context.Context, col *mongo.Collection) (*MongoRepository, error) {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)}
	if _, err := col.Indexes().CreateOne(ctx, idx); err != nil {
		return nil, fmt.Errorf("participants name index: %w", err)
	}
	return &MongoRepository{col: col}, nil
}

func (r *MongoRepository) Insert(ctx context.Context, p *models.Participant) error {
	_, err := r.col.InsertOne(ctx, p)
	if mongo.IsDuplicateKeyError(err) {
		return ErrAlreadyJoined
	}
	return err
}

func (r *MongoRepository) Touch(ctx context.Context, name string, when time.Time) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"name": name}, bson.M{"$set": bson.M{"lastSeen": when}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) List(ctx context.Context) ([]*models.Participant, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoRepository) Delete(ctx context.Context, name string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"name": name})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) StaleBefore(ctx context.Context, cutoff time.Time) ([]*models.Participant, error) {
	return r.find(ctx, bson.M{"lastSeen": bson.M{"$lt": cutoff}})
}

func (r *MongoRepository) Exists(ctx context.Context, name string) (bool, error) {
	err := r.col.FindOne(ctx, bson.M{"name": name}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *MongoRepository) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}

func (r *MongoRepository) find(ctx context.Context, filter bson.M) ([]*models.Participant, error) {
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.Participant{}
	for cur.Next(ctx) {
		var p models.Participant
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, cur.Err()
}
