package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	notificationRepo "vecindo/database/repository/notification"
	"vecindo/models"
	"vecindo/services/realtime"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// asUser injects the identity normally set by the auth middleware.
func asUser(userID, name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Set("userName", name)
		c.Next()
	}
}

type stubDispatcher struct {
	result   *models.DispatchResult
	err      error
	audience models.Audience
	data     models.NotificationData
}

func (d *stubDispatcher) Dispatch(_ context.Context, audience models.Audience, data models.NotificationData) (*models.DispatchResult, error) {
	d.audience = audience
	d.data = data
	if d.err != nil {
		return nil, d.err
	}
	return d.result, nil
}

type stubTracker struct {
	notification *models.Notification
	stats        *models.ConfirmationStats
	markAllCount int64
	err          error
	lastLive     bool
}

func (t *stubTracker) MarkRead(notificationID, userID string) (*models.Notification, error) {
	return t.notification, t.err
}

func (t *stubTracker) MarkAllRead(userID string) (int64, error) {
	return t.markAllCount, t.err
}

func (t *stubTracker) Confirm(notificationID, userID string) (*models.Notification, error) {
	return t.notification, t.err
}

func (t *stubTracker) ConfirmationStats(notificationID string, live bool) (*models.ConfirmationStats, error) {
	t.lastLive = live
	if t.err != nil {
		return nil, t.err
	}
	return t.stats, nil
}

type stubNotificationRepo struct {
	notificationRepo.NotificationRepository
	listed     []models.Notification
	lastFilter models.NotificationFilter
}

func (r *stubNotificationRepo) FindByUser(userID string, filter models.NotificationFilter) ([]models.Notification, error) {
	r.lastFilter = filter
	return r.listed, nil
}

func notificationRouter(h *NotificationHandler) *gin.Engine {
	r := gin.New()
	r.Use(asUser("alice", "Alice"))
	r.GET("/api/notifications", h.ListHandler)
	r.PUT("/api/notifications/read-all", h.MarkAllReadHandler)
	r.PUT("/api/notifications/:id/read", h.MarkReadHandler)
	r.POST("/api/notifications/:id/confirm", h.ConfirmHandler)
	r.POST("/api/notifications/dispatch", h.DispatchHandler)
	r.GET("/api/notifications/:id/confirmations", h.ConfirmationStatsHandler)
	return r
}

func TestDispatchHandlerSuccess(t *testing.T) {
	dispatcher := &stubDispatcher{result: &models.DispatchResult{Requested: 2}}
	h := NewNotificationHandler(dispatcher, &stubTracker{}, &stubNotificationRepo{}, zap.NewNop())
	r := notificationRouter(h)

	body := `{"audience":{"kind":"role","role":"RESIDENT"},"notification":{"type":"maintenance","title":"Water shutoff","message":"9-11am"}}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/notifications/dispatch", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", w.Code, w.Body.String())
	}
	if dispatcher.audience.Kind != models.AudienceRole || dispatcher.audience.Role != models.RoleResident {
		t.Errorf("dispatcher saw audience %+v, want role RESIDENT", dispatcher.audience)
	}
	var result models.DispatchResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("response is not a DispatchResult: %v", err)
	}
	if result.Requested != 2 {
		t.Errorf("requested = %d, want 2", result.Requested)
	}
}

func TestDispatchHandlerInvalidInput(t *testing.T) {
	dispatcher := &stubDispatcher{err: fmt.Errorf("%w: unknown audience kind", realtime.ErrInvalidInput)}
	h := NewNotificationHandler(dispatcher, &stubTracker{}, &stubNotificationRepo{}, zap.NewNop())
	r := notificationRouter(h)

	body := `{"audience":{"kind":"building"},"notification":{"type":"x","title":"y","message":"z"}}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/notifications/dispatch", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestDispatchHandlerRejectsMalformedBody(t *testing.T) {
	h := NewNotificationHandler(&stubDispatcher{}, &stubTracker{}, &stubNotificationRepo{}, zap.NewNop())
	r := notificationRouter(h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/notifications/dispatch", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestListHandlerPassesFilters(t *testing.T) {
	repo := &stubNotificationRepo{listed: []models.Notification{{ID: "n1", RecipientID: "alice", CreatedAt: time.Now()}}}
	h := NewNotificationHandler(&stubDispatcher{}, &stubTracker{}, repo, zap.NewNop())
	r := notificationRouter(h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/notifications?read=false&type=maintenance&limit=10", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", w.Code, w.Body.String())
	}
	if repo.lastFilter.Read == nil || *repo.lastFilter.Read {
		t.Error("read filter not bound to false")
	}
	if repo.lastFilter.Type != "maintenance" || repo.lastFilter.Limit != 10 {
		t.Errorf("filter = %+v, want type=maintenance limit=10", repo.lastFilter)
	}
}

func TestMarkReadHandlerNotFound(t *testing.T) {
	tracker := &stubTracker{err: fmt.Errorf("%w: n1", realtime.ErrNotFound)}
	h := NewNotificationHandler(&stubDispatcher{}, tracker, &stubNotificationRepo{}, zap.NewNop())
	r := notificationRouter(h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/notifications/n1/read", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestMarkAllReadHandler(t *testing.T) {
	tracker := &stubTracker{markAllCount: 7}
	h := NewNotificationHandler(&stubDispatcher{}, tracker, &stubNotificationRepo{}, zap.NewNop())
	r := notificationRouter(h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/notifications/read-all", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp map[string]int64
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp["updated"] != 7 {
		t.Errorf("updated = %d, want 7", resp["updated"])
	}
}

func TestConfirmHandlerConflictWhenNotConfirmable(t *testing.T) {
	tracker := &stubTracker{err: fmt.Errorf("%w: n1", realtime.ErrInvalidState)}
	h := NewNotificationHandler(&stubDispatcher{}, tracker, &stubNotificationRepo{}, zap.NewNop())
	r := notificationRouter(h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/notifications/n1/confirm", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestConfirmHandlerSuccess(t *testing.T) {
	tracker := &stubTracker{notification: &models.Notification{ID: "n1", RecipientID: "alice", Read: true}}
	h := NewNotificationHandler(&stubDispatcher{}, tracker, &stubNotificationRepo{}, zap.NewNop())
	r := notificationRouter(h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/notifications/n1/confirm", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", w.Code, w.Body.String())
	}
}

func TestConfirmationStatsHandlerLiveFlag(t *testing.T) {
	tracker := &stubTracker{stats: &models.ConfirmationStats{Total: 4, Confirmed: 2, Percentage: 50}}
	h := NewNotificationHandler(&stubDispatcher{}, tracker, &stubNotificationRepo{}, zap.NewNop())
	r := notificationRouter(h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/notifications/n1/confirmations?live=true", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !tracker.lastLive {
		t.Error("live query parameter was not forwarded to the tracker")
	}

	var stats models.ConfirmationStats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if stats.Percentage != 50 {
		t.Errorf("percentage = %d, want 50", stats.Percentage)
	}
}
