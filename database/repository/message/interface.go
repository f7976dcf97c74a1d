package messageRepo

import "vecindo/models"

// MessageRepository defines methods for direct-message data access.
type MessageRepository interface {
	// Create inserts a new message record.
	Create(m *models.Message) error
	// FindBetween retrieves messages exchanged between two users, newest
	// first, limited to the given count when limit > 0.
	FindBetween(userA, userB string, limit int64) ([]models.Message, error)
}
