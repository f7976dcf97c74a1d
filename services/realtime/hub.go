package realtime

import (
	"fmt"
	"sync"
	"time"

	auditRepo "vecindo/database/repository/audit"
	"vecindo/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionPusher delivers one event to the transport connection backing a
// session. Implementations must not block the caller; slow consumers drop.
type SessionPusher interface {
	Push(event string, payload any) error
}

// Session is one live transport connection belonging to a user. It is owned
// by the Hub for its lifetime and destroyed on disconnect.
type Session struct {
	ID       string
	UserID   string
	Identity models.UserIdentity
	OpenedAt time.Time

	pusher SessionPusher
}

// NewSession creates a session for a verified identity.
func NewSession(identity models.UserIdentity, pusher SessionPusher) *Session {
	return &Session{
		ID:       uuid.NewString(),
		UserID:   identity.ID,
		Identity: identity,
		OpenedAt: time.Now(),
		pusher:   pusher,
	}
}

// Hub is the session registry: the mapping from user IDs to their currently
// open sessions. It is the only shared mutable state in the realtime core;
// all access serializes on its lock and mutation sections hold no I/O.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[string]*Session // userID -> sessionID -> session
	byID     map[string]*Session

	Audit  auditRepo.AuditSink // optional
	Logger *zap.Logger
}

// NewHub creates an empty session registry.
func NewHub(audit auditRepo.AuditSink, logger *zap.Logger) *Hub {
	return &Hub{
		sessions: make(map[string]map[string]*Session),
		byID:     make(map[string]*Session),
		Audit:    audit,
		Logger:   logger,
	}
}

// Register admits an authenticated session. Idempotent for an already
// registered session. Every registration triggers a presence broadcast.
func (h *Hub) Register(s *Session) {
	h.mu.Lock()
	userSessions, ok := h.sessions[s.UserID]
	if !ok {
		userSessions = make(map[string]*Session)
		h.sessions[s.UserID] = userSessions
	}
	userSessions[s.ID] = s
	h.byID[s.ID] = s
	h.mu.Unlock()

	if h.Audit != nil {
		h.Audit.Record(models.AuditEvent{
			Action:   models.AuditActionConnect,
			Details:  fmt.Sprintf("session %s opened for user %s", s.ID, s.Identity.Name),
			UserID:   s.UserID,
			UserName: s.Identity.Name,
			Status:   models.AuditStatusSuccess,
		})
	}

	h.BroadcastOnlineUsers()
}

// Unregister removes a session. When the user's last session closes the user
// entry is removed entirely, so OnlineUsers reflects only users with at
// least one live session. Every removal triggers a presence broadcast.
func (h *Hub) Unregister(userID, sessionID string) {
	h.mu.Lock()
	var closed *Session
	if userSessions, ok := h.sessions[userID]; ok {
		closed = userSessions[sessionID]
		delete(userSessions, sessionID)
		if len(userSessions) == 0 {
			delete(h.sessions, userID)
		}
	}
	delete(h.byID, sessionID)
	h.mu.Unlock()

	if closed == nil {
		return
	}

	if h.Audit != nil {
		h.Audit.Record(models.AuditEvent{
			Action:   models.AuditActionDisconnect,
			Details:  fmt.Sprintf("session %s closed for user %s", sessionID, closed.Identity.Name),
			UserID:   userID,
			UserName: closed.Identity.Name,
			Status:   models.AuditStatusSuccess,
		})
	}

	h.BroadcastOnlineUsers()
}

// SessionsOf returns the IDs of a user's currently open sessions.
func (h *Hub) SessionsOf(userID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.sessions[userID]))
	for id := range h.sessions[userID] {
		ids = append(ids, id)
	}
	return ids
}

// OnlineUsers returns a snapshot of every user with at least one live session.
func (h *Hub) OnlineUsers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users := make([]string, 0, len(h.sessions))
	for userID := range h.sessions {
		users = append(users, userID)
	}
	return users
}

// Push delivers one event to a single session. Best-effort: a failed push is
// logged and the session is left to self-heal through its own disconnect
// detection.
func (h *Hub) Push(sessionID, event string, payload any) bool {
	h.mu.RLock()
	s := h.byID[sessionID]
	h.mu.RUnlock()

	if s == nil {
		return false
	}
	if err := s.pusher.Push(event, payload); err != nil {
		h.Logger.Warn("failed to push event to session",
			zap.String("sessionId", sessionID),
			zap.String("event", event),
			zap.Error(err))
		return false
	}
	return true
}

// PushToUser delivers one event to every open session of a user and returns
// the number of sessions that accepted it. Zero sessions is not an error.
func (h *Hub) PushToUser(userID, event string, payload any) int {
	h.mu.RLock()
	targets := make([]*Session, 0, len(h.sessions[userID]))
	for _, s := range h.sessions[userID] {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, s := range targets {
		if err := s.pusher.Push(event, payload); err != nil {
			h.Logger.Warn("failed to push event to session",
				zap.String("sessionId", s.ID),
				zap.String("event", event),
				zap.Error(err))
			continue
		}
		delivered++
	}
	return delivered
}

// BroadcastOnlineUsers pushes the current online-user roster to every open
// session. The roster is a consistent-at-broadcast-time snapshot; pushes
// happen outside the lock and are best-effort.
func (h *Hub) BroadcastOnlineUsers() {
	h.mu.RLock()
	roster := make([]string, 0, len(h.sessions))
	targets := make([]*Session, 0, len(h.byID))
	for userID, userSessions := range h.sessions {
		roster = append(roster, userID)
		for _, s := range userSessions {
			targets = append(targets, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range targets {
		if err := s.pusher.Push(EventOnlineUsers, roster); err != nil {
			h.Logger.Warn("failed to broadcast online users",
				zap.String("sessionId", s.ID),
				zap.Error(err))
		}
	}
}
