package notificationRepo

import (
	"context"
	"fmt"
	"time"

	"vecindo/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoNotificationRepo implements NotificationRepository using MongoDB.
type MongoNotificationRepo struct {
	coll          *mongo.Collection
	confirmations *mongo.Collection
}

// NewMongoNotificationRepo creates a new instance of NotificationRepository using MongoDB.
func NewMongoNotificationRepo() NotificationRepository {
	repo := &MongoNotificationRepo{
		coll:          database.Collection("notifications"),
		confirmations: database.Collection("notification_confirmations"),
	}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// ensureIndexes creates indexes for fields frequently used in queries. The
// unique compound index on confirmations is what makes repeated confirmation
// calls idempotent.
func (r *MongoNotificationRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	notifIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "recipientId", Value: 1}, {Key: "read", Value: 1}}},
		{Keys: bson.D{{Key: "expiresAt", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, notifIndexes); err != nil {
		return fmt.Errorf("failed to create notification indexes: %w", err)
	}

	confirmIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "notificationId", Value: 1}, {Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := r.confirmations.Indexes().CreateMany(ctx, confirmIndexes); err != nil {
		return fmt.Errorf("failed to create confirmation indexes: %w", err)
	}
	return nil
}
