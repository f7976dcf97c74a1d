package realtime

import (
	"context"
	"fmt"
	"time"

	directoryRepo "vecindo/database/repository/directory"
	notificationRepo "vecindo/database/repository/notification"
	"vecindo/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationDispatcher resolves an audience, persists one durable
// notification per recipient and pushes it to every open session of each
// recipient.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, audience models.Audience, data models.NotificationData) (*models.DispatchResult, error)
}

// DefaultNotificationDispatcher is the production implementation.
type DefaultNotificationDispatcher struct {
	Hub       *Hub
	Repo      notificationRepo.NotificationRepository
	Directory directoryRepo.UserDirectory
	Publisher EventPublisher // optional cross-instance fan-out
	Logger    *zap.Logger
}

// Dispatch notifies every member of the audience. Per-recipient failures
// (unknown user, persistence error) are logged and collected but never abort
// delivery to the remaining recipients: a campaign to everyone must not fail
// wholesale because of one bad row. Push failures do not even count as
// recipient failures; the record is persisted and survives for replay.
func (d *DefaultNotificationDispatcher) Dispatch(ctx context.Context, audience models.Audience, data models.NotificationData) (*models.DispatchResult, error) {
	if data.Type == "" || data.Title == "" || data.Message == "" {
		return nil, fmt.Errorf("%w: type, title and message are required", ErrInvalidInput)
	}

	priority := data.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	switch priority {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
	default:
		return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, priority)
	}

	recipients, audienceRef, err := d.resolveAudience(audience)
	if err != nil {
		return nil, err
	}

	result := &models.DispatchResult{Requested: len(recipients)}

	for _, userID := range recipients {
		user, err := d.Directory.GetByID(userID)
		if err != nil {
			d.Logger.Error("failed to look up notification recipient",
				zap.String("userId", userID), zap.Error(err))
			result.Failures = append(result.Failures, models.DispatchFailure{UserID: userID, Reason: err.Error()})
			continue
		}
		if user == nil {
			// Unknown recipients are skipped with a warning, not a hard error.
			d.Logger.Warn("skipping unknown notification recipient", zap.String("userId", userID))
			result.Failures = append(result.Failures, models.DispatchFailure{UserID: userID, Reason: "unknown recipient"})
			continue
		}

		n := &models.Notification{
			ID:                  uuid.NewString(),
			RecipientID:         userID,
			Type:                data.Type,
			Title:               data.Title,
			Message:             data.Message,
			Link:                data.Link,
			RequireConfirmation: data.RequireConfirmation,
			Priority:            priority,
			ExpiresAt:           data.ExpiresAt,
			Data:                data.Data,
			AudienceKind:        audience.Kind,
			AudienceRef:         audienceRef,
			AudienceSize:        len(recipients),
			Read:                false,
			CreatedAt:           time.Now(),
		}

		if err := d.Repo.Create(n); err != nil {
			d.Logger.Error("failed to persist notification",
				zap.String("userId", userID), zap.Error(err))
			result.Failures = append(result.Failures, models.DispatchFailure{UserID: userID, Reason: err.Error()})
			continue
		}

		d.push(ctx, userID, n)
		result.Notifications = append(result.Notifications, n)
	}

	return result, nil
}

// push delivers the persisted notification to the recipient's live sessions
// here and, when a backplane is configured, on peer instances. Best-effort;
// offline recipients pick it up through reconnect replay.
func (d *DefaultNotificationDispatcher) push(ctx context.Context, userID string, n *models.Notification) {
	payload := formatNotification(n)
	d.Hub.PushToUser(userID, EventNotification, payload)
	if d.Publisher != nil {
		if err := d.Publisher.PublishToUser(ctx, userID, EventNotification, payload); err != nil {
			d.Logger.Warn("failed to publish notification to backplane",
				zap.String("userId", userID), zap.Error(err))
		}
	}
}

// resolveAudience expands the audience selector into a de-duplicated list of
// recipient IDs. Role, unit and all are resolved fresh at dispatch time.
func (d *DefaultNotificationDispatcher) resolveAudience(audience models.Audience) ([]string, string, error) {
	switch audience.Kind {
	case models.AudienceUser:
		if audience.UserID == "" {
			return nil, "", fmt.Errorf("%w: userId is required for a user audience", ErrInvalidInput)
		}
		return []string{audience.UserID}, audience.UserID, nil

	case models.AudienceUsers:
		if len(audience.UserIDs) == 0 {
			return nil, "", fmt.Errorf("%w: userIds are required for a users audience", ErrInvalidInput)
		}
		seen := make(map[string]bool, len(audience.UserIDs))
		ids := make([]string, 0, len(audience.UserIDs))
		for _, id := range audience.UserIDs {
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
		return ids, "", nil

	case models.AudienceRole:
		if audience.Role == "" {
			return nil, "", fmt.Errorf("%w: role is required for a role audience", ErrInvalidInput)
		}
		ids, err := d.Directory.UsersWithRole(audience.Role)
		if err != nil {
			return nil, "", fmt.Errorf("failed to resolve role audience %q: %w", audience.Role, err)
		}
		return ids, audience.Role, nil

	case models.AudienceUnit:
		if audience.UnitID == "" {
			return nil, "", fmt.Errorf("%w: unitId is required for a unit audience", ErrInvalidInput)
		}
		ids, err := d.Directory.UsersInUnit(audience.UnitID)
		if err != nil {
			return nil, "", fmt.Errorf("failed to resolve unit audience %q: %w", audience.UnitID, err)
		}
		return ids, audience.UnitID, nil

	case models.AudienceAll:
		ids, err := d.Directory.AllUserIDs()
		if err != nil {
			return nil, "", fmt.Errorf("failed to resolve all-users audience: %w", err)
		}
		return ids, "", nil

	default:
		return nil, "", fmt.Errorf("%w: unknown audience kind %q", ErrInvalidInput, audience.Kind)
	}
}
