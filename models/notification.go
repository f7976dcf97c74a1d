package models

import "time"

// Notification priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Audience kinds recorded on dispatched notifications so that confirmation
// statistics can reconstruct the original audience later.
const (
	AudienceUser  = "user"
	AudienceUsers = "users"
	AudienceRole  = "role"
	AudienceUnit  = "unit"
	AudienceAll   = "all"
)

// Notification is a durable notification addressed to a single recipient.
type Notification struct {
	ID                  string         `bson:"id" json:"id"`
	RecipientID         string         `bson:"recipientId" json:"recipientId"`
	Type                string         `bson:"type" json:"type"` // info | success | warning | error
	Title               string         `bson:"title" json:"title"`
	Message             string         `bson:"message" json:"message"`
	Link                string         `bson:"link,omitempty" json:"link,omitempty"`
	RequireConfirmation bool           `bson:"requireConfirmation" json:"requireConfirmation"`
	Priority            string         `bson:"priority" json:"priority"`
	ExpiresAt           *time.Time     `bson:"expiresAt,omitempty" json:"expiresAt,omitempty"`
	Data                map[string]any `bson:"data,omitempty" json:"data,omitempty"`
	AudienceKind        string         `bson:"audienceKind,omitempty" json:"audienceKind,omitempty"`
	AudienceRef         string         `bson:"audienceRef,omitempty" json:"audienceRef,omitempty"` // role name or unit id
	AudienceSize        int            `bson:"audienceSize,omitempty" json:"audienceSize,omitempty"`
	Read                bool           `bson:"read" json:"read"`
	ReadAt              *time.Time     `bson:"readAt,omitempty" json:"readAt,omitempty"`
	CreatedAt           time.Time      `bson:"createdAt" json:"createdAt"`
}

// NotificationConfirmation records an explicit acknowledgment of a
// notification that requires confirmation. One row per (notification, user).
type NotificationConfirmation struct {
	NotificationID string    `bson:"notificationId" json:"notificationId"`
	UserID         string    `bson:"userId" json:"userId"`
	ConfirmedAt    time.Time `bson:"confirmedAt" json:"confirmedAt"`
}

// NotificationData carries the caller-supplied fields of a notification to
// dispatch. Recipient and audience bookkeeping are filled in by the dispatcher.
type NotificationData struct {
	Type                string         `json:"type" binding:"required"`
	Title               string         `json:"title" binding:"required"`
	Message             string         `json:"message" binding:"required"`
	Link                string         `json:"link,omitempty"`
	RequireConfirmation bool           `json:"requireConfirmation,omitempty"`
	Priority            string         `json:"priority,omitempty"`
	ExpiresAt           *time.Time     `json:"expiresAt,omitempty"`
	Data                map[string]any `json:"data,omitempty"`
}

// NotificationFilter narrows notification list queries.
type NotificationFilter struct {
	Read     *bool  `form:"read"`
	Type     string `form:"type"`
	Priority string `form:"priority"`
	Limit    int64  `form:"limit"`
}

// ConfirmationStats reports confirmation coverage for one notification.
type ConfirmationStats struct {
	Total      int `json:"total"`
	Confirmed  int `json:"confirmed"`
	Percentage int `json:"percentage"`
}
