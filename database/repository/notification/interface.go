package notificationRepo

import (
	"errors"
	"time"

	"vecindo/models"
)

// ErrDuplicateConfirmation signals that a (notification, user) confirmation
// row already exists. The unique index enforces this at the database level.
var ErrDuplicateConfirmation = errors.New("confirmation already recorded")

// NotificationRepository defines methods for notification data access.
type NotificationRepository interface {
	// Create inserts a new notification record.
	Create(n *models.Notification) error
	// FindUnreadByUser retrieves all unread notifications for a user, newest first.
	FindUnreadByUser(userID string) ([]models.Notification, error)
	// FindByUser retrieves a user's notifications with optional filters, newest first.
	FindByUser(userID string, filter models.NotificationFilter) ([]models.Notification, error)
	// FindOwned retrieves a notification by ID only if it belongs to the user.
	// Returns (nil, nil) when no such notification exists.
	FindOwned(id, userID string) (*models.Notification, error)
	// FindByID retrieves a notification by ID regardless of owner.
	// Returns (nil, nil) when no such notification exists.
	FindByID(id string) (*models.Notification, error)
	// MarkRead sets the read flag and read time, returning the updated record.
	MarkRead(id string) (*models.Notification, error)
	// MarkAllRead marks every unread notification of a user as read and
	// returns the number of records updated.
	MarkAllRead(userID string) (int64, error)
	// CreateConfirmation inserts a confirmation row. Returns
	// ErrDuplicateConfirmation if the pair was already confirmed.
	CreateConfirmation(c *models.NotificationConfirmation) error
	// CountConfirmations counts confirmation rows for a notification.
	CountConfirmations(notificationID string) (int, error)
	// DeleteExpired removes notifications whose expiry is before the given
	// time and returns the number of records deleted.
	DeleteExpired(before time.Time) (int64, error)
}
