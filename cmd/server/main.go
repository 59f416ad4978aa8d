// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arenalab/promptarena/internal/api/handlers"
	"github.com/arenalab/promptarena/internal/auth"
	"github.com/arenalab/promptarena/internal/cache"
	"github.com/arenalab/promptarena/internal/config"
	"github.com/arenalab/promptarena/internal/generator"
	"github.com/arenalab/promptarena/internal/health"
	"github.com/arenalab/promptarena/internal/history"
	"github.com/arenalab/promptarena/internal/middleware"
	"github.com/arenalab/promptarena/internal/playground"
	"github.com/arenalab/promptarena/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	logger := utils.GetLogger()
	logger.Info("Starting promptarena server...")

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("Configuration validation failed")
	}

	// Response cache is optional; the service runs without it.
	var responseCache *cache.ResponseCache
	if cfg.Redis.URL != "" {
		responseCache, err = cache.Connect(cfg.Redis.URL, cfg.Redis.CacheTTL, logger)
		if err != nil {
			logger.WithError(err).Warn("Redis unavailable, running without response cache")
			responseCache = nil
		} else {
			defer responseCache.Close()
		}
	}

	historyStore := history.NewMemoryStore(cfg.History.MinDelay, cfg.History.MaxDelay, logger)
	authService := auth.NewService(logger)
	invoker := buildInvoker(cfg, logger)

	playgroundService := playground.NewService(invoker, historyStore, responseCache, cfg.Generator.CallTimeout, logger)
	checker := health.NewChecker(historyStore, responseCache, invoker, logger)

	playgroundHandler := handlers.NewPlaygroundHandler(playgroundService, logger)
	historyHandler := handlers.NewHistoryHandler(historyStore, cfg.Server.DefaultLimit, logger)
	authHandler := handlers.NewAuthHandler(authService, logger)
	healthHandler := handlers.NewHealthHandler(checker)

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.SecurityHeaders())

	rateLimiter := middleware.NewRateLimiter(cfg.Server.RateLimit)
	router.Use(rateLimiter.RateLimit())

	router.GET("/health", healthHandler.HandleHealth)

	api := router.Group("/api")
	{
		api.POST("/auth/login", authHandler.HandleLogin)
		api.POST("/auth/register", authHandler.HandleRegister)
		api.POST("/auth/logout", authHandler.HandleLogout)

		authed := api.Group("")
		authed.Use(middleware.RequireUser(authService))
		{
			authed.GET("/auth/me", authHandler.HandleMe)
			authed.POST("/generate", playgroundHandler.HandleGenerate)
			authed.POST("/history", playgroundHandler.HandleSave)
			authed.GET("/history", historyHandler.HandleList)
			authed.GET("/history/:id", historyHandler.HandleGet)
			authed.DELETE("/history/:id", historyHandler.HandleDelete)
		}
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server stopped")
}

// buildInvoker wires every known model identifier to its strategy. OpenAI
// identifiers get a real chat completions backend when an API key is
// configured; everything else is mocked with model-specific phrasing.
func buildInvoker(cfg *config.Config, logger *logrus.Logger) *generator.Service {
	minDelay := cfg.Generator.MinDelay
	maxDelay := cfg.Generator.MaxDelay

	fallback := generator.NewMockStrategy(generator.StyleStandard, minDelay, maxDelay)
	service := generator.NewService(fallback, logger)

	service.Register("claude-3-opus", generator.NewMockStrategy(generator.StyleDetailed, minDelay, maxDelay))
	service.Register("claude-3-sonnet", generator.NewMockStrategy(generator.StyleBalanced, minDelay, maxDelay))

	if cfg.OpenAI.APIKey != "" {
		client := generator.NewClient(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, logger)
		chat := generator.NewChatStrategy(client)
		service.Register("gpt-4o", chat)
		service.Register("gpt-3.5-turbo", chat)
		logger.Info("OpenAI-backed strategies registered")
	} else {
		standard := generator.NewMockStrategy(generator.StyleStandard, minDelay, maxDelay)
		service.Register("gpt-4o", standard)
		service.Register("gpt-3.5-turbo", standard)
		logger.Info("No OpenAI API key configured, using mock strategies")
	}

	return service
}
