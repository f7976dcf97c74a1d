package models

import "time"

// Audit actions and statuses recorded by this service.
const (
	AuditActionConnect    = "SESSION_CONNECT"
	AuditActionDisconnect = "SESSION_DISCONNECT"

	AuditStatusSuccess = "SUCCESS"
	AuditStatusFailure = "FAILURE"
)

// AuditEvent is a fire-and-forget audit trail entry.
type AuditEvent struct {
	Action    string    `bson:"action" json:"action"`
	Details   string    `bson:"details" json:"details"`
	UserID    string    `bson:"userId" json:"userId"`
	UserName  string    `bson:"userName" json:"userName"`
	Status    string    `bson:"status" json:"status"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
