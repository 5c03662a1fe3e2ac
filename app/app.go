// File: app/app.go
package app

import (
	"context"
	"database/sql"
	"go-taskhub-api/config"
	"go-taskhub-api/db"
	"go-taskhub-api/handler"
	"go-taskhub-api/logger"
	"go-taskhub-api/repository"
	"go-taskhub-api/router"
	"go-taskhub-api/service"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func Run() {
	config.LoadConfig(".")
	logger.Init()
	logger.Log.Info("Logger initialized")
	logger.Log.Info("Configuration loaded successfully")

	database, err := db.Connect()
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	defer database.Close()

	// Redis is optional: a nil cache client only disables plan caching.
	var cache service.ICacheClient
	if rdb, err := db.ConnectRedis(); err != nil {
		logger.Log.WithError(err).Warn("Redis unavailable, plan caching disabled")
	} else {
		cache = rdb
		defer rdb.Close()
	}

	// Start the router with all handlers
	r := buildRouter(database, cache)

	// --- Start the Server with Graceful Shutdown ---
	port := config.AppConfig.Server.Port
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Log.Info("Server exited properly")
}

// buildRouter wires repositories, services and handlers into the HTTP router.
// Shared between the real server and the integration test harness.
func buildRouter(database *sql.DB, cache service.ICacheClient) http.Handler {
	userRepo := repository.NewUserRepository(database)
	tokenRepo := repository.NewTokenRepository(database)
	orgRepo := repository.NewOrganizationRepository(database)
	membershipRepo := repository.NewMembershipRepository(database)
	subscriptionRepo := repository.NewSubscriptionRepository(database)
	projectRepo := repository.NewProjectRepository(database)
	taskRepo := repository.NewTaskRepository(database)

	authCfg := config.AppConfig.Auth
	codec := service.NewTokenCodec(
		authCfg.SecretKey,
		authCfg.Algorithm,
		time.Duration(authCfg.AccessTTLSeconds)*time.Second,
		time.Duration(authCfg.RefreshTTLSeconds)*time.Second,
	)
	hasher := service.NewPasswordHasher(authCfg.BcryptCost)

	authService := service.NewAuthService(database, userRepo, tokenRepo, codec, hasher)
	orgService := service.NewOrganizationService(database, orgRepo, membershipRepo,
		subscriptionRepo, userRepo, projectRepo, cache)
	projectService := service.NewProjectService(projectRepo, orgService)
	taskService := service.NewTaskService(taskRepo)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler()
	orgHandler := handler.NewOrganizationHandler(orgService)
	projectHandler := handler.NewProjectHandler(projectService)
	taskHandler := handler.NewTaskHandler(taskService, projectService)

	mw := handler.NewAuthMiddleware(authService, orgService)

	return router.NewRouter(mw, authHandler, userHandler, orgHandler, projectHandler, taskHandler)
}
