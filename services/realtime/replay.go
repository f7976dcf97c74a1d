package realtime

import (
	notificationRepo "vecindo/database/repository/notification"

	"go.uber.org/zap"
)

// ReplayService re-delivers still-unread notifications to a newly opened
// session.
type ReplayService interface {
	ReplayPending(userID, sessionID string)
}

// DefaultReplayService is the production implementation.
type DefaultReplayService struct {
	Hub    *Hub
	Repo   notificationRepo.NotificationRepository
	Logger *zap.Logger
}

// ReplayPending pushes the user's unread backlog, newest first, to the new
// session only — the user's other sessions already received these live or
// will replay on their own reconnect. Fire-and-forget: failures are logged
// and never block the session open sequence.
func (r *DefaultReplayService) ReplayPending(userID, sessionID string) {
	notifications, err := r.Repo.FindUnreadByUser(userID)
	if err != nil {
		r.Logger.Error("failed to fetch pending notifications",
			zap.String("userId", userID), zap.Error(err))
		return
	}

	for i := range notifications {
		r.Hub.Push(sessionID, EventNotification, formatNotification(&notifications[i]))
	}
}
