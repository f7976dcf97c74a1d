package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"vecindo/config"
	"vecindo/models"
	"vecindo/services/auth"
	"vecindo/services/realtime"
	"vecindo/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBufferSize = 64
)

// wsFrame is the JSON envelope exchanged on the socket, both directions.
type wsFrame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// outFrame is the outbound variant carrying an arbitrary payload.
type outFrame struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// wsPusher buffers outbound frames for one socket. Push never blocks: a full
// buffer drops the frame, the session self-heals via disconnect detection.
type wsPusher struct {
	mu     sync.Mutex
	closed bool
	send   chan outFrame
}

func newWSPusher() *wsPusher {
	return &wsPusher{send: make(chan outFrame, sendBufferSize)}
}

func (p *wsPusher) Push(event string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return errors.New("session closed")
	}
	select {
	case p.send <- outFrame{Event: event, Payload: payload}:
		return nil
	default:
		return errors.New("session send buffer full")
	}
}

func (p *wsPusher) close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.closed {
		p.closed = true
		close(p.send)
	}
}

// WSHandler upgrades HTTP requests to websocket sessions and drives their
// read/write loops.
type WSHandler struct {
	Gate   auth.Gate
	Hub    *realtime.Hub
	Replay realtime.ReplayService
	Relay  realtime.MessageRelay
	Logger *zap.Logger

	upgrader websocket.Upgrader
}

// NewWSHandler creates a websocket handler wired to the realtime core.
func NewWSHandler(gate auth.Gate, hub *realtime.Hub, replay realtime.ReplayService, relay realtime.MessageRelay, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		Gate:   gate,
		Hub:    hub,
		Replay: replay,
		Relay:  relay,
		Logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || !config.IsProduction() {
					return true
				}
				return origin == config.AppConfig.FrontendURL
			},
		},
	}
}

// HandleWS authenticates the credential, admits the session to the registry,
// replays the unread backlog and then serves the socket until disconnect.
func (h *WSHandler) HandleWS(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	}

	identity, err := h.Gate.Authenticate(token)
	if err != nil {
		// Refused sessions never reach the registry.
		h.Logger.Warn("websocket authentication failed", zap.Error(err))
		utils.JSONError(c, http.StatusUnauthorized, "Authentication error", "invalid or missing token")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	pusher := newWSPusher()
	session := realtime.NewSession(*identity, pusher)

	h.Hub.Register(session)
	go h.writePump(conn, pusher)

	// New sessions get the unread backlog; the user's other sessions already
	// received it live.
	h.Replay.ReplayPending(identity.ID, session.ID)

	h.readPump(c, conn, session, pusher)
}

// readPump consumes inbound frames until the socket closes, then tears the
// session down.
func (h *WSHandler) readPump(c *gin.Context, conn *websocket.Conn, session *realtime.Session, pusher *wsPusher) {
	defer func() {
		h.Hub.Unregister(session.UserID, session.ID)
		pusher.close()
		_ = conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var frame wsFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.Logger.Debug("websocket closed unexpectedly",
					zap.String("sessionId", session.ID), zap.Error(err))
			}
			return
		}

		switch frame.Event {
		case "send_message":
			h.handleSendMessage(c, session, pusher, frame.Payload)
		case "typing":
			h.handleTyping(c, session, frame.Payload)
		default:
			h.Logger.Debug("ignoring unknown websocket event",
				zap.String("event", frame.Event),
				zap.String("sessionId", session.ID))
		}
	}
}

// writePump drains the session buffer onto the socket with ping keepalive.
func (h *WSHandler) writePump(conn *websocket.Conn, pusher *wsPusher) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case frame, ok := <-pusher.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type sendMessagePayload struct {
	RecipientID string              `json:"recipientId"`
	Content     string              `json:"content"`
	Attachments []models.Attachment `json:"attachments,omitempty"`
}

func (h *WSHandler) handleSendMessage(c *gin.Context, session *realtime.Session, pusher *wsPusher, raw json.RawMessage) {
	var payload sendMessagePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		_ = pusher.Push("error", gin.H{"error": "invalid message data"})
		return
	}

	message, err := h.Relay.Send(c.Request.Context(), session.Identity, payload.RecipientID, payload.Content, payload.Attachments)
	if err != nil {
		if errors.Is(err, realtime.ErrInvalidInput) {
			_ = pusher.Push("error", gin.H{"error": "invalid message data"})
		} else {
			h.Logger.Error("failed to send message",
				zap.String("senderId", session.UserID), zap.Error(err))
			_ = pusher.Push("error", gin.H{"error": "failed to send message"})
		}
		return
	}

	// Acknowledge to the sender with the persisted message.
	_ = pusher.Push("message_sent", message)
}

type typingPayload struct {
	RecipientID    string `json:"recipientId"`
	ConversationID string `json:"conversationId"`
	IsTyping       bool   `json:"isTyping"`
}

func (h *WSHandler) handleTyping(c *gin.Context, session *realtime.Session, raw json.RawMessage) {
	var payload typingPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return
	}
	h.Relay.Typing(c.Request.Context(), session.UserID, payload.RecipientID, payload.ConversationID, payload.IsTyping)
}
