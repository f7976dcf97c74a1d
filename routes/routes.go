package routes

import (
	"net/http"
	"time"

	"vecindo/config"
	"vecindo/handlers"
	"vecindo/middleware"
	"vecindo/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups the handlers and collaborators the routes need.
type HandlerBundle struct {
	WS           *handlers.WSHandler
	Notification *handlers.NotificationHandler
	Message      *handlers.MessageHandler
	Auth         gin.HandlerFunc
}

// RegisterRoutes wires every endpoint of the realtime core.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.AppConfig.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)

	// The websocket endpoint authenticates inside the handler: the gate must
	// refuse the credential before the session is admitted to the registry.
	r.GET("/ws", hb.WS.HandleWS)

	api := r.Group("/api/notifications")
	{
		api.Use(hb.Auth)
		api.GET("", hb.Notification.ListHandler)
		api.PUT("/read-all", hb.Notification.MarkAllReadHandler)
		api.PUT("/:id/read", hb.Notification.MarkReadHandler)
		api.POST("/:id/confirm", hb.Notification.ConfirmHandler)

		// Dispatch and coverage stats are administrative.
		admin := api.Group("")
		admin.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleComplexAdmin))
		admin.POST("/dispatch", hb.Notification.DispatchHandler)
		admin.GET("/:id/confirmations", hb.Notification.ConfirmationStatsHandler)
	}

	messages := r.Group("/api/messages")
	{
		messages.Use(hb.Auth)
		messages.POST("", hb.Message.SendHandler)
		messages.GET("/:userId", hb.Message.ConversationHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm Vecindo"})
	})
}
