// File: database/repository/notification/notificationMongoCrud.go
package notificationRepo

import (
	"fmt"
	"time"

	"vecindo/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Create inserts a new notification document.
func (r *MongoNotificationRepo) Create(n *models.Notification) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	_, err := r.coll.InsertOne(ctx, n)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// FindUnreadByUser retrieves all unread notifications for a user, newest first.
func (r *MongoNotificationRepo) FindUnreadByUser(userID string) ([]models.Notification, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"recipientId": userID, "read": false}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unread notifications for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}
	return notifications, nil
}

// FindByUser retrieves a user's notifications with optional filters, newest first.
func (r *MongoNotificationRepo) FindByUser(userID string, filter models.NotificationFilter) ([]models.Notification, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	query := bson.M{"recipientId": userID}
	if filter.Read != nil {
		query["read"] = *filter.Read
	}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if filter.Priority != "" {
		query["priority"] = filter.Priority
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}
	return notifications, nil
}

// FindOwned retrieves a notification by ID only if it belongs to the user.
func (r *MongoNotificationRepo) FindOwned(id, userID string) (*models.Notification, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var n models.Notification
	err := r.coll.FindOne(ctx, bson.M{"id": id, "recipientId": userID}).Decode(&n)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch notification %s: %w", id, err)
	}
	return &n, nil
}

// FindByID retrieves a notification by ID regardless of owner.
func (r *MongoNotificationRepo) FindByID(id string) (*models.Notification, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var n models.Notification
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&n)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch notification %s: %w", id, err)
	}
	return &n, nil
}

// MarkRead sets the read flag and read time, returning the updated document.
func (r *MongoNotificationRepo) MarkRead(id string) (*models.Notification, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	update := bson.M{"$set": bson.M{"read": true, "readAt": now}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var n models.Notification
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, update, opts).Decode(&n)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to mark notification %s as read: %w", id, err)
	}
	return &n, nil
}

// MarkAllRead marks every unread notification of a user as read.
func (r *MongoNotificationRepo) MarkAllRead(userID string) (int64, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	result, err := r.coll.UpdateMany(ctx,
		bson.M{"recipientId": userID, "read": false},
		bson.M{"$set": bson.M{"read": true, "readAt": now}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications as read for user %s: %w", userID, err)
	}
	return result.ModifiedCount, nil
}

// CreateConfirmation inserts a confirmation row for a (notification, user) pair.
func (r *MongoNotificationRepo) CreateConfirmation(c *models.NotificationConfirmation) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if c.ConfirmedAt.IsZero() {
		c.ConfirmedAt = time.Now()
	}

	_, err := r.confirmations.InsertOne(ctx, c)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateConfirmation
		}
		return fmt.Errorf("failed to create confirmation for notification %s: %w", c.NotificationID, err)
	}
	return nil
}

// CountConfirmations counts confirmation rows for a notification.
func (r *MongoNotificationRepo) CountConfirmations(notificationID string) (int, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	count, err := r.confirmations.CountDocuments(ctx, bson.M{"notificationId": notificationID})
	if err != nil {
		return 0, fmt.Errorf("failed to count confirmations for notification %s: %w", notificationID, err)
	}
	return int(count), nil
}

// DeleteExpired removes notifications whose expiry is before the given time.
func (r *MongoNotificationRepo) DeleteExpired(before time.Time) (int64, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	result, err := r.coll.DeleteMany(ctx, bson.M{"expiresAt": bson.M{"$lt": before}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired notifications: %w", err)
	}
	return result.DeletedCount, nil
}
