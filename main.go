// File: vecindo/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vecindo/config"
	"vecindo/cron"
	"vecindo/database"
	auditRepo "vecindo/database/repository/audit"
	directoryRepo "vecindo/database/repository/directory"
	messageRepo "vecindo/database/repository/message"
	notificationRepo "vecindo/database/repository/notification"
	"vecindo/handlers"
	"vecindo/middleware"
	"vecindo/routes"
	"vecindo/services/auth"
	"vecindo/services/realtime"
	"vecindo/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitAuthCache()
	utils.InitPresenceClient()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	notifRepo := notificationRepo.NewMongoNotificationRepo()
	msgRepo := messageRepo.NewMongoMessageRepo()
	directory := directoryRepo.NewMongoUserDirectory()
	auditSink := auditRepo.NewMongoAuditSink()

	// realtime core.
	hub := realtime.NewHub(auditSink, logger)
	backplane := realtime.NewRedisBackplane(
		utils.GetPresenceClient(),
		config.AppConfig.PresenceChannel,
		hub,
		logger,
	)

	backplaneCtx, stopBackplane := context.WithCancel(context.Background())
	go backplane.Listen(backplaneCtx)

	dispatcher := &realtime.DefaultNotificationDispatcher{
		Hub:       hub,
		Repo:      notifRepo,
		Directory: directory,
		Publisher: backplane,
		Logger:    logger,
	}
	replay := &realtime.DefaultReplayService{
		Hub:    hub,
		Repo:   notifRepo,
		Logger: logger,
	}
	tracker := &realtime.DefaultConfirmationTracker{
		Repo:      notifRepo,
		Directory: directory,
		Logger:    logger,
	}
	relay := &realtime.DefaultMessageRelay{
		Hub:       hub,
		Repo:      msgRepo,
		Publisher: backplane,
		Logger:    logger,
	}
	sweeper := &realtime.DefaultExpirySweeper{
		Repo:   notifRepo,
		Logger: logger,
	}

	gate := &auth.JWTGate{Directory: directory}

	// handlers.
	handlerBundle := &routes.HandlerBundle{
		WS:           handlers.NewWSHandler(gate, hub, replay, relay, logger),
		Notification: handlers.NewNotificationHandler(dispatcher, tracker, notifRepo, logger),
		Message:      handlers.NewMessageHandler(relay, msgRepo, logger),
		Auth:         middleware.JWTAuthMiddleware(directory),
	}

	routes.RegisterRoutes(router, handlerBundle)

	// Background expiry sweeps.
	cron.InitSweeperWorker(sweeper)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	stopBackplane()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
