package directoryRepo

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

// MongoUserDirectory implements UserDirectory using MongoDB.
type MongoUserDirectory struct {
	coll *mongo.Collection
}

// NewMongoUserDirectory creates a new instance of UserDirectory using MongoDB.
func NewMongoUserDirectory() UserDirectory {
	return &MongoUserDirectory{coll: database.Collection("users")}
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// GetByID retrieves a directory entry by user ID.
func (r *MongoUserDirectory) GetByID(id string) (*models.User, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var user models.User
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch user with id %s: %w", id, err)
	}
	return &user, nil
}

// idsForFilter runs a projected query and collects the matching user IDs.
func (r *MongoUserDirectory) idsForFilter(filter bson.M) ([]string, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{"id": 1})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve users: %w", err)
	}
	defer cursor.Close(ctx)

	var ids []string
	for cursor.Next(ctx) {
		var u models.User
		if err := cursor.Decode(&u); err != nil {
			return nil, fmt.Errorf("failed to decode user: %w", err)
		}
		ids = append(ids, u.ID)
	}
	return ids, nil
}

// UsersWithRole retrieves the IDs of every user holding the role.
func (r *MongoUserDirectory) UsersWithRole(role string) ([]string, error) {
	return r.idsForFilter(bson.M{"role": role})
}

// UsersInUnit retrieves the IDs of every user resident in the unit.
func (r *MongoUserDirectory) UsersInUnit(unitID string) ([]string, error) {
	return r.idsForFilter(bson.M{"unitId": unitID})
}

// AllUserIDs retrieves every user ID in the system.
func (r *MongoUserDirectory) AllUserIDs() ([]string, error) {
	return r.idsForFilter(bson.M{})
}

func (r *MongoUserDirectory) count(filter bson.M) (int, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	count, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return int(count), nil
}

// CountWithRole counts users currently holding the role.
func (r *MongoUserDirectory) CountWithRole(role string) (int, error) {
	return r.count(bson.M{"role": role})
}

// CountInUnit counts users currently resident in the unit.
func (r *MongoUserDirectory) CountInUnit(unitID string) (int, error) {
	return r.count(bson.M{"unitId": unitID})
}

// CountAll counts every user in the system.
func (r *MongoUserDirectory) CountAll() (int, error) {
	return r.count(bson.M{})
}
