package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/aman-churiwal/shortlink/internal/access"
	"github.com/aman-churiwal/shortlink/internal/config"
	"github.com/aman-churiwal/shortlink/internal/handler"
	"github.com/aman-churiwal/shortlink/internal/middleware"
	"github.com/aman-churiwal/shortlink/internal/quota"
	"github.com/aman-churiwal/shortlink/internal/ratelimit"
	"github.com/aman-churiwal/shortlink/internal/repository"
	"github.com/aman-churiwal/shortlink/internal/service"
	"github.com/aman-churiwal/shortlink/internal/shortcode"
	"github.com/aman-churiwal/shortlink/internal/storage"
	"github.com/aman-churiwal/shortlink/internal/uaparse"
	"github.com/gin-gonic/gin"
)

type Server struct {
	router   *gin.Engine
	config   *config.Config
	redis    *storage.RedisClient
	postgres *storage.Postgres

	recorder    *service.ClickRecorder
	authService *service.AuthService

	linkHandler      *handler.LinkHandler
	redirectHandler  *handler.RedirectHandler
	analyticsHandler *handler.AnalyticsHandler
	apiKeyHandler    *handler.APIKeyHandler
	authHandler      *handler.AuthHandler

	httpServer *http.Server
}

func New(cfg *config.Config, redis *storage.RedisClient, postgres *storage.Postgres) *Server {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Repositories
	apiKeyRepo := repository.NewAPIKeyRepository(postgres)
	linkRepo := repository.NewLinkRepository(postgres)
	clickRepo := repository.NewClickRepository(postgres)
	userRepo := repository.NewUserRepository(postgres)

	// Core components
	tracker := quota.NewTracker(postgres)
	controller := access.NewController(apiKeyRepo, tracker, redis)
	generator := shortcode.NewGenerator(linkRepo)

	recorder := service.NewClickRecorder(
		clickRepo, linkRepo, uaparse.New(),
		cfg.Clicks.BufferSize,
		cfg.Clicks.BatchSize,
		time.Duration(cfg.Clicks.FlushSeconds)*time.Second,
	)

	// Services
	linkService := service.NewLinkService(linkRepo, generator)
	redirectService := service.NewRedirectService(linkRepo, recorder)
	analyticsService := service.NewAnalyticsService(linkRepo, clickRepo)
	apiKeyService := service.NewAPIKeyService(apiKeyRepo, controller)
	authService := service.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.ExpiryHours)

	passwordLimiter := ratelimit.NewFixedWindow(redis, cfg.Clicks.PasswordTries, time.Minute)

	s := &Server{
		router:           router,
		config:           cfg,
		redis:            redis,
		postgres:         postgres,
		recorder:         recorder,
		authService:      authService,
		linkHandler:      handler.NewLinkHandler(controller, linkService, cfg.Server.BaseURL),
		redirectHandler:  handler.NewRedirectHandler(redirectService, passwordLimiter),
		analyticsHandler: handler.NewAnalyticsHandler(controller, linkService, analyticsService),
		apiKeyHandler:    handler.NewAPIKeyHandler(apiKeyService),
		authHandler:      handler.NewAuthHandler(authService),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recovery())
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Logger())
	s.router.Use(middleware.CORS())
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)

	auth := s.router.Group("/auth")
	{
		auth.POST("/register", s.authHandler.Register)
		auth.POST("/login", s.authHandler.Login)
	}

	admin := s.router.Group("/admin", middleware.RequireAuth(s.authService))
	{
		admin.POST("/keys", s.apiKeyHandler.Create)
		admin.GET("/keys", s.apiKeyHandler.List)
		admin.GET("/keys/:id", s.apiKeyHandler.Get)
		admin.PATCH("/keys/:id", s.apiKeyHandler.Update)
		admin.DELETE("/keys/:id", s.apiKeyHandler.Delete)
	}

	api := s.router.Group("/api", middleware.RequireAPIKey())
	{
		api.POST("/links", s.linkHandler.Create)
		api.POST("/links/bulk", s.linkHandler.BulkCreate)
		api.GET("/links", s.linkHandler.List)
		api.GET("/links/:code/stats", s.analyticsHandler.Stats)
		api.POST("/links/stats/batch", s.analyticsHandler.BatchStats)
		api.PATCH("/links/:code", s.linkHandler.Update)
		api.POST("/links/:code/toggle", s.linkHandler.Toggle)
		api.POST("/links/:code/clone", s.linkHandler.Clone)
		api.DELETE("/links/:code", s.linkHandler.Delete)
		api.GET("/trending", s.analyticsHandler.Trending)
	}

	// Public redirect. Static routes above win over the wildcard, and
	// matching names are reserved in shortcode anyway.
	s.router.GET("/:code", s.redirectHandler.Resolve)
}

func (s *Server) healthCheck(c *gin.Context) {
	redisHealthy := true
	if err := s.redis.Ping(c.Request.Context()); err != nil {
		redisHealthy = false
		log.Printf("Redis health check failed: %v", err)
	}

	dbHealthy := true
	if err := s.postgres.Ping(c.Request.Context()); err != nil {
		dbHealthy = false
		log.Printf("Database health check failed: %v", err)
	}

	status := "healthy"
	statusCode := http.StatusOK

	if !redisHealthy || !dbHealthy {
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"status":    status,
		"service":   "shortlink",
		"timestamp": time.Now().Unix(),
		"checks": gin.H{
			"redis":    redisHealthy,
			"database": dbHealthy,
		},
	})
}

func (s *Server) Run(addr string) error {
	s.recorder.Start()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	log.Printf("Starting shortlink server on %s", addr)
	log.Printf("Environment: %s", s.config.Server.Environment)

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down server...")

	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}

	// Flush queued click events after in-flight requests finish.
	s.recorder.Stop()

	return err
}

func (s *Server) GetRouter() *gin.Engine {
	return s.router
}
