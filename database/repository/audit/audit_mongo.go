package auditRepo

import (
	"context"
	"time"

	"vecindo/database"
	"vecindo/models"
	"vecindo/utils"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// AuditSink records audit trail events. Recording is fire-and-forget; a
// failed write never propagates to the caller.
type AuditSink interface {
	Record(event models.AuditEvent)
}

// MongoAuditSink implements AuditSink using MongoDB.
type MongoAuditSink struct {
	coll *mongo.Collection
}

// NewMongoAuditSink creates a new instance of AuditSink using MongoDB.
func NewMongoAuditSink() AuditSink {
	return &MongoAuditSink{coll: database.Collection("audit_events")}
}

// Record inserts the event asynchronously. Failures are logged only.
func (s *MongoAuditSink) Record(event models.AuditEvent) {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if _, err := s.coll.InsertOne(ctx, event); err != nil {
			utils.GetLogger().Warn("failed to record audit event",
				zap.String("action", event.Action),
				zap.String("userId", event.UserID),
				zap.Error(err))
		}
	}()
}
