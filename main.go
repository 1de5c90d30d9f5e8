// File: carhub/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carhub/client"
	"carhub/config"
	"carhub/handlers"
	"carhub/middleware"
	"carhub/routes"
	"carhub/services/booking"
	"carhub/services/chat"
	"carhub/session"
	"carhub/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	utils.InitSessionCache()
	utils.InitFormCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// Upstream car-service API client.
	apiClient := client.New(client.Config{
		BaseURL:           config.AppConfig.BackendBaseURL,
		Timeout:           time.Duration(config.AppConfig.BackendTimeoutSec) * time.Second,
		OAuthClientID:     config.AppConfig.OAuthClientID,
		OAuthClientSecret: config.AppConfig.OAuthClientSecret,
	})

	// Auth sessions and the booking dialog engine.
	sessionTTL := time.Duration(config.AppConfig.SessionTTLMin) * time.Minute
	sessionStore := session.NewRedisStore(utils.GetSessionCacheClient(), sessionTTL)
	sessionManager := session.NewManager(sessionStore, logger)

	formStore := booking.NewRedisFormStore(utils.GetFormCacheClient())
	bookingEngine := booking.NewEngine(formStore, apiClient, logger)

	chatService := chat.NewService(chat.Config{
		DetectIntentURL: config.AppConfig.ChatDetectIntentURL,
		AccessToken:     config.AppConfig.ChatAccessToken,
		LanguageCode:    config.AppConfig.ChatLanguageCode,
		TimeZone:        config.AppConfig.ChatTimeZone,
	}, logger)

	// Assemble the handler bundle.
	handlerBundle := &routes.HandlerBundle{
		Sessions:     sessionManager,
		Auth:         handlers.NewAuthHandler(apiClient, sessionManager, logger, int(sessionTTL.Seconds())),
		Stations:     handlers.NewStationHandler(apiClient, sessionManager, logger),
		Appointments: handlers.NewAppointmentHandler(apiClient, bookingEngine, sessionManager, logger),
		Jobs:         handlers.NewJobHandler(apiClient, sessionManager, logger),
		Chat:         handlers.NewChatHandler(chatService, logger),
		Dashboard:    handlers.NewDashboardHandler(apiClient, sessionManager, logger),
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetSessionCacheClient(), utils.GetFormCacheClient()},
		apiClient.Ping,
	)

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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
