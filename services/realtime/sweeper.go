package realtime

import (
	"fmt"
	"time"

	notificationRepo "vecindo/database/repository/notification"

	"go.uber.org/zap"
)

// ExpirySweeper removes notification records past their expiration time.
type ExpirySweeper interface {
	Sweep(now time.Time) (int64, error)
}

// DefaultExpirySweeper is the production implementation.
type DefaultExpirySweeper struct {
	Repo   notificationRepo.NotificationRepository
	Logger *zap.Logger
}

// Sweep deletes every notification with expiresAt before now and returns the
// count. Idempotent; safe on any interval. Confirmation rows are kept — they
// remain the record of who acknowledged the notification while it lived.
func (s *DefaultExpirySweeper) Sweep(now time.Time) (int64, error) {
	count, err := s.Repo.DeleteExpired(now)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired notifications: %w", err)
	}
	if count > 0 {
		s.Logger.Info("swept expired notifications", zap.Int64("deleted", count))
	}
	return count, nil
}
