package handlers

import (
	"errors"
	"net/http"

	notificationRepo "vecindo/database/repository/notification"
	"vecindo/models"
	"vecindo/services/realtime"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NotificationHandler exposes the dispatch, listing and read/confirmation
// tracking endpoints.
type NotificationHandler struct {
	Dispatcher realtime.NotificationDispatcher
	Tracker    realtime.ConfirmationTracker
	Repo       notificationRepo.NotificationRepository
	Logger     *zap.Logger
}

// NewNotificationHandler creates a NotificationHandler.
func NewNotificationHandler(dispatcher realtime.NotificationDispatcher, tracker realtime.ConfirmationTracker, repo notificationRepo.NotificationRepository, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		Dispatcher: dispatcher,
		Tracker:    tracker,
		Repo:       repo,
		Logger:     logger,
	}
}

type dispatchRequest struct {
	Audience     models.Audience         `json:"audience" binding:"required"`
	Notification models.NotificationData `json:"notification" binding:"required"`
}

// DispatchHandler resolves an audience and notifies every member. The
// response reports partial failures; the request only fails wholesale on
// invalid input.
func (h *NotificationHandler) DispatchHandler(c *gin.Context) {
	var req dispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Logger.Warn("invalid dispatch request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	result, err := h.Dispatcher.Dispatch(c.Request.Context(), req.Audience, req.Notification)
	if err != nil {
		if errors.Is(err, realtime.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.Logger.Error("dispatch failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to dispatch notification"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListHandler returns the authenticated user's notifications, newest first,
// with optional read/type/priority/limit filters.
func (h *NotificationHandler) ListHandler(c *gin.Context) {
	userID := c.GetString("userID")

	var filter models.NotificationFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filters: " + err.Error()})
		return
	}

	notifications, err := h.Repo.FindByUser(userID, filter)
	if err != nil {
		h.Logger.Error("failed to list notifications", zap.String("userId", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notifications"})
		return
	}

	c.JSON(http.StatusOK, notifications)
}

// MarkReadHandler marks one of the user's notifications as read.
func (h *NotificationHandler) MarkReadHandler(c *gin.Context) {
	userID := c.GetString("userID")
	notificationID := c.Param("id")

	notification, err := h.Tracker.MarkRead(notificationID, userID)
	if err != nil {
		if errors.Is(err, realtime.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
			return
		}
		h.Logger.Error("failed to mark notification as read",
			zap.String("notificationId", notificationID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notification as read"})
		return
	}

	c.JSON(http.StatusOK, notification)
}

// MarkAllReadHandler marks every unread notification of the user as read.
func (h *NotificationHandler) MarkAllReadHandler(c *gin.Context) {
	userID := c.GetString("userID")

	count, err := h.Tracker.MarkAllRead(userID)
	if err != nil {
		h.Logger.Error("failed to mark all notifications as read",
			zap.String("userId", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notifications as read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": count})
}

// ConfirmHandler records an explicit confirmation for a notification that
// requires one, then marks it read.
func (h *NotificationHandler) ConfirmHandler(c *gin.Context) {
	userID := c.GetString("userID")
	notificationID := c.Param("id")

	notification, err := h.Tracker.Confirm(notificationID, userID)
	if err != nil {
		switch {
		case errors.Is(err, realtime.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		case errors.Is(err, realtime.ErrInvalidState):
			c.JSON(http.StatusConflict, gin.H{"error": "Notification does not require confirmation"})
		default:
			h.Logger.Error("failed to confirm notification",
				zap.String("notificationId", notificationID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to confirm notification"})
		}
		return
	}

	c.JSON(http.StatusOK, notification)
}

// ConfirmationStatsHandler reports confirmation coverage for a notification.
// ?live=true recomputes the denominator from the current audience population
// instead of the size frozen at dispatch.
func (h *NotificationHandler) ConfirmationStatsHandler(c *gin.Context) {
	notificationID := c.Param("id")
	live := c.Query("live") == "true"

	stats, err := h.Tracker.ConfirmationStats(notificationID, live)
	if err != nil {
		switch {
		case errors.Is(err, realtime.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		case errors.Is(err, realtime.ErrInvalidState):
			c.JSON(http.StatusConflict, gin.H{"error": "Notification does not require confirmation"})
		default:
			h.Logger.Error("failed to compute confirmation stats",
				zap.String("notificationId", notificationID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute confirmation stats"})
		}
		return
	}

	c.JSON(http.StatusOK, stats)
}
