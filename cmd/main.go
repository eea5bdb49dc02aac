package main

import (
	"context"

	"notes-service/internal/handler"
	"notes-service/internal/middleware"
	"notes-service/internal/seed"
	"notes-service/internal/store"
	"notes-service/pkg/config"
	"notes-service/pkg/database"
	"notes-service/pkg/jwtutil"
	"notes-service/pkg/logger"
	"notes-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting notes service...", cfg.LogConfig()...)

	// Initialize database and store
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")
	st := store.NewPostgresStore(db)

	// Seed demo tenants and users outside production
	if cfg.Seed.Enabled {
		if err := seed.Run(context.Background(), st, log); err != nil {
			log.Fatal("Failed to seed demo data", zap.Error(err))
		}
	}

	// Initialize session token codec and handlers
	jwt := jwtutil.New(&cfg.JWT)
	h := handler.New(st, jwt, cfg)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowCredentials: true,
	}))
	if cfg.Server.RateLimit > 0 {
		e.Use(echomiddleware.RateLimiter(
			echomiddleware.NewRateLimiterMemoryStore(rate.Limit(cfg.Server.RateLimit))))
	}
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Authentication routes
	auth := e.Group("/auth")
	auth.POST("/login", h.Login)
	auth.GET("/me", h.Me, middleware.Auth(jwt))

	// Note routes - all tenant-scoped through the token claims
	notes := e.Group("/notes", middleware.Auth(jwt))
	notes.POST("", h.CreateNote)
	notes.GET("", h.ListNotes)
	notes.GET("/:id", h.GetNote)
	notes.PUT("/:id", h.UpdateNote)
	notes.DELETE("/:id", h.DeleteNote)

	// Tenant routes - admin only, and the slug must match the caller's tenant
	tenants := e.Group("/tenants", middleware.Auth(jwt), middleware.RequireAdmin)
	tenants.POST("/:slug/upgrade", h.UpgradeTenant)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
