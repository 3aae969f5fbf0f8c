package http

import (
	"os"
	"strconv"
	"time"

	"farm_webapp/internal/config"
	"farm_webapp/internal/farm"
	"farm_webapp/internal/http/handlers"
	"farm_webapp/internal/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, cfg *config.Config, version string, farms *farm.Manager) {
	h := handlers.NewHandler(db, cfg.BotToken, farms)
	healthHandler := handlers.NewHealthHandler(db, version)

	// read limits from env, with safe defaults
	apiRateLimit := 30
	if v := os.Getenv("API_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			apiRateLimit = n
		}
	}
	apiRateWindow := time.Minute
	if v := os.Getenv("API_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			apiRateWindow = time.Duration(n) * time.Second
		}
	}

	authRateLimit := 5
	if v := os.Getenv("AUTH_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			authRateLimit = n
		}
	}
	authRateWindow := time.Minute
	if v := os.Getenv("AUTH_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			authRateWindow = time.Duration(n) * time.Second
		}
	}

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	// API v1 routes
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(apiRateLimit, apiRateWindow))
	registerAPIRoutes(v1, h, cfg, authRateLimit, authRateWindow)

	// WebSocket for live farm state
	r.GET("/ws", h.WS())

	// Frontend static files
	r.StaticFS("/assets", gin.Dir("../frontend", false))
	r.NoRoute(func(c *gin.Context) {
		c.File("../frontend/index.html")
	})
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, cfg *config.Config, authRateLimit int, authRateWindow time.Duration) {
	// Auth
	api.POST("/auth", middleware.RedisRateLimit(authRateLimit, authRateWindow), h.Auth)

	// Player profile
	api.GET("/me", middleware.JWT(), h.Me)

	// Farm rate limiter middleware (per player, not per IP)
	farmRL := middleware.FarmRateLimit(cfg.FarmRateLimit, time.Duration(cfg.FarmRateWindow)*time.Second)

	// Farm state and operations
	api.GET("/farm", middleware.JWT(), h.FarmState)
	api.GET("/farm/catalog", h.Catalog)
	api.POST("/farm/plant", middleware.JWT(), farmRL, h.Plant)
	api.POST("/farm/harvest", middleware.JWT(), farmRL, h.Harvest)
	api.POST("/farm/research", middleware.JWT(), farmRL, h.Research)
	api.POST("/farm/bonus", middleware.JWT(), farmRL, h.SelectBonus)
	api.POST("/farm/exchange", middleware.JWT(), farmRL, h.ExchangeGold)
}
