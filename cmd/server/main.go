package main

import (
	"context"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"adaptive-truth/internal/clients"
	"adaptive-truth/internal/config"
	"adaptive-truth/internal/handlers"
	"adaptive-truth/internal/logger"
	"adaptive-truth/internal/middleware"
	"adaptive-truth/internal/presentation"
	"adaptive-truth/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Setup panic recovery
	defer func() {
		if r := recover(); r != nil {
			logger.Log.WithFields(map[string]interface{}{
				"panic":       r,
				"stack_trace": logger.GetStackTrace(0),
			}).Fatal("Application panicked")
		}
	}()

	logger.Log.Info("Starting Adaptive Truth web client")

	// Load configuration
	logger.Log.Info("Loading configuration")
	cfg, err := config.Load()
	if err != nil {
		logger.LogErrorWithStack(err, map[string]interface{}{
			"operation": "config_load",
		})
		logger.Log.WithError(err).Fatal("Failed to load configuration")
	}
	logger.SetLevel(cfg.LogLevel)
	logger.Log.WithFields(map[string]interface{}{
		"log_level":             cfg.LogLevel,
		"verify_service_url":    cfg.VerifyServiceURL,
		"evidence_display_mode": cfg.EvidenceDisplayMode,
	}).Info("Configuration loaded successfully")

	// Initialize verification client
	verificationClient := clients.NewVerificationClient(cfg)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 5*time.Second)
	if err := verificationClient.Ping(startupCtx); err != nil {
		logger.Log.WithError(err).Warn("Verification service not reachable yet, continuing")
	} else {
		logger.Log.Info("Verification service reachable")
	}
	cancelStartup()

	// Initialize services
	sessionService, err := services.NewSessionService(cfg, verificationClient)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to initialize session service")
	}
	defer func() {
		logger.Log.Info("Closing sessions")
		sessionService.Close()
	}()

	// Initialize handlers
	claimHandler := handlers.NewClaimHandler(sessionService)
	healthHandler := handlers.NewHealthHandler(verificationClient, sessionService)

	router := setupRouter(cfg, claimHandler, healthHandler)

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
		// Responses never wait on the verification call
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"port":       cfg.ServerPort,
			"page_url":   "http://localhost:" + cfg.ServerPort + "/",
			"health_url": "http://localhost:" + cfg.ServerPort + "/health",
		}).Info("Starting web client server")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.LogErrorWithStack(err, map[string]interface{}{
				"operation": "server_listen",
				"port":      cfg.ServerPort,
			})
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()
	stop()
	logger.Log.Info("Shutdown signal received, starting graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
		return
	}

	logger.Log.Info("Server gracefully stopped")
}

func setupRouter(cfg *config.Config, claimHandler *handlers.ClaimHandler, healthHandler *handlers.HealthHandler) *gin.Engine {
	if strings.EqualFold(cfg.LogLevel, "DEBUG") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.SetHTMLTemplate(presentation.MustTemplates())

	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(gin.Recovery())

	handlers.RegisterRoutes(router, claimHandler, healthHandler)

	return router
}
