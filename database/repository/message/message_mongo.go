package messageRepo

import (
	"context"
	"fmt"
	"time"

	"vecindo/database"
	"vecindo/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoMessageRepo implements MessageRepository using MongoDB.
type MongoMessageRepo struct {
	coll *mongo.Collection
}

// NewMongoMessageRepo creates a new instance of MessageRepository using MongoDB.
func NewMongoMessageRepo() MessageRepository {
	repo := &MongoMessageRepo{coll: database.Collection("messages")}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// ensureIndexes creates indexes for fields frequently used in queries.
func (r *MongoMessageRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "recipientId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "senderId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Create inserts a new message document.
func (r *MongoMessageRepo) Create(m *models.Message) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}

	_, err := r.coll.InsertOne(ctx, m)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// FindBetween retrieves messages exchanged between two users, newest first.
func (r *MongoMessageRepo) FindBetween(userA, userB string, limit int64) ([]models.Message, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	query := bson.M{
		"$or": []bson.M{
			{"senderId": userA, "recipientId": userB},
			{"senderId": userB, "recipientId": userA},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return messages, nil
}
