package handler

import (
	"time"

	"card-token-proxy/internal/adapter/http/dto"
	"card-token-proxy/internal/adapter/http/middleware"
	redisStore "card-token-proxy/internal/adapter/storage/redis"
	"card-token-proxy/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	TokenSvc       ports.TokenizationService
	ConfigEcho     dto.ConfigEcho
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	RateLimit      int64                      // requests per minute when enabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(4 << 10)) // PAN payloads are tiny

	r.GET("/health", HealthCheck(deps.ConfigEcho, deps.HealthCheckers...))
	r.GET("/", TestForm)

	rl := func(c *gin.Context) { c.Next() }
	if deps.RateLimitStore != nil {
		rule := middleware.RateLimitRule{Limit: deps.RateLimit, Window: time.Minute}
		rl = middleware.RateLimiter(deps.RateLimitStore, "generate_token", rule, deps.Logger)
	}

	tokenHandler := NewTokenHandler(deps.TokenSvc)
	api := r.Group("/api")
	{
		api.POST("/generate-token", rl, tokenHandler.GenerateToken)
	}

	return r
}
