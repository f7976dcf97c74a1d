package realtime

import (
	"errors"
	"fmt"
	"math"

	directoryRepo "vecindo/database/repository/directory"
	notificationRepo "vecindo/database/repository/notification"
	"vecindo/models"

	"go.uber.org/zap"
)

// ConfirmationTracker marks notifications read, records explicit
// confirmations and computes confirmation coverage statistics.
type ConfirmationTracker interface {
	MarkRead(notificationID, userID string) (*models.Notification, error)
	MarkAllRead(userID string) (int64, error)
	Confirm(notificationID, userID string) (*models.Notification, error)
	// ConfirmationStats reports coverage for a confirmation-requiring
	// notification. With live=false the denominator is the audience size
	// frozen at dispatch; with live=true it is recomputed from the current
	// population of the original audience.
	ConfirmationStats(notificationID string, live bool) (*models.ConfirmationStats, error)
}

// DefaultConfirmationTracker is the production implementation.
type DefaultConfirmationTracker struct {
	Repo      notificationRepo.NotificationRepository
	Directory directoryRepo.UserDirectory
	Logger    *zap.Logger
}

// MarkRead sets the read flag on a notification owned by the user.
func (t *DefaultConfirmationTracker) MarkRead(notificationID, userID string) (*models.Notification, error) {
	n, err := t.Repo.FindOwned(notificationID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notification %s: %w", notificationID, err)
	}
	if n == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, notificationID)
	}

	updated, err := t.Repo.MarkRead(notificationID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark notification %s as read: %w", notificationID, err)
	}
	if updated == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, notificationID)
	}
	return updated, nil
}

// MarkAllRead marks every unread notification of the user as read and
// returns the number updated.
func (t *DefaultConfirmationTracker) MarkAllRead(userID string) (int64, error) {
	count, err := t.Repo.MarkAllRead(userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	return count, nil
}

// Confirm records an explicit acknowledgment and marks the notification
// read. Repeated confirmation is idempotent: the unique index on
// (notificationId, userId) rejects the duplicate row and the call succeeds
// as already-confirmed.
func (t *DefaultConfirmationTracker) Confirm(notificationID, userID string) (*models.Notification, error) {
	n, err := t.Repo.FindOwned(notificationID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notification %s: %w", notificationID, err)
	}
	if n == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, notificationID)
	}
	if !n.RequireConfirmation {
		return nil, fmt.Errorf("%w: %s", ErrInvalidState, notificationID)
	}

	err = t.Repo.CreateConfirmation(&models.NotificationConfirmation{
		NotificationID: notificationID,
		UserID:         userID,
	})
	if err != nil {
		if errors.Is(err, notificationRepo.ErrDuplicateConfirmation) {
			t.Logger.Debug("notification already confirmed",
				zap.String("notificationId", notificationID),
				zap.String("userId", userID))
		} else {
			return nil, fmt.Errorf("failed to record confirmation: %w", err)
		}
	}

	return t.MarkRead(notificationID, userID)
}

// ConfirmationStats computes confirmation coverage against the original
// audience size.
func (t *DefaultConfirmationTracker) ConfirmationStats(notificationID string, live bool) (*models.ConfirmationStats, error) {
	n, err := t.Repo.FindByID(notificationID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notification %s: %w", notificationID, err)
	}
	if n == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, notificationID)
	}
	if !n.RequireConfirmation {
		return nil, fmt.Errorf("%w: %s", ErrInvalidState, notificationID)
	}

	confirmed, err := t.Repo.CountConfirmations(notificationID)
	if err != nil {
		return nil, fmt.Errorf("failed to count confirmations: %w", err)
	}

	total := n.AudienceSize
	if live || total == 0 {
		total, err = t.liveAudienceSize(n)
		if err != nil {
			return nil, err
		}
	}
	if total < 1 {
		total = 1
	}

	return &models.ConfirmationStats{
		Total:      total,
		Confirmed:  confirmed,
		Percentage: int(math.Round(float64(confirmed) / float64(total) * 100)),
	}, nil
}

// liveAudienceSize recomputes the denominator from the audience discriminator
// stored on the notification. Users joining or leaving the audience after
// dispatch change the result; callers wanting the dispatch-time denominator
// use the frozen size instead.
func (t *DefaultConfirmationTracker) liveAudienceSize(n *models.Notification) (int, error) {
	switch n.AudienceKind {
	case models.AudienceRole:
		count, err := t.Directory.CountWithRole(n.AudienceRef)
		if err != nil {
			return 0, fmt.Errorf("failed to count role audience: %w", err)
		}
		return count, nil
	case models.AudienceUnit:
		count, err := t.Directory.CountInUnit(n.AudienceRef)
		if err != nil {
			return 0, fmt.Errorf("failed to count unit audience: %w", err)
		}
		return count, nil
	case models.AudienceAll:
		count, err := t.Directory.CountAll()
		if err != nil {
			return 0, fmt.Errorf("failed to count all users: %w", err)
		}
		return count, nil
	default:
		// Single-user and explicit-list audiences have no live population
		// to recount; fall back to the frozen size.
		if n.AudienceSize > 0 {
			return n.AudienceSize, nil
		}
		return 1, nil
	}
}
