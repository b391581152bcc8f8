package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/xyz-asif/mangrovewatch/internal/config"
	"github.com/xyz-asif/mangrovewatch/internal/features/auth"
	"github.com/xyz-asif/mangrovewatch/internal/features/leaderboard"
	"github.com/xyz-asif/mangrovewatch/internal/features/reports"
	"github.com/xyz-asif/mangrovewatch/internal/pkg/cache"
	"github.com/xyz-asif/mangrovewatch/internal/pkg/clock"
	"github.com/xyz-asif/mangrovewatch/internal/pkg/jwt"
	"github.com/xyz-asif/mangrovewatch/internal/pkg/logger"
	"github.com/xyz-asif/mangrovewatch/internal/pkg/metrics"
	"github.com/xyz-asif/mangrovewatch/internal/pkg/ratelimit"
	"github.com/xyz-asif/mangrovewatch/internal/pkg/response"
)

// Dependencies are the stores and shared services the API runs on.
type Dependencies struct {
	Users   auth.UserStore
	Reports reports.Store
	// Cache backs the leaderboard. Nil disables caching.
	Cache   cache.Cache
	Metrics *metrics.Metrics
	Clock   clock.Clock
	Log     *logger.Logger
	// Health is checked by GET /health. Nil reports always healthy.
	Health func(ctx context.Context) error
}

// SetupRoutes wires every feature under /api/v1 plus the operational
// endpoints. The returned function stops background work.
func SetupRoutes(router *gin.Engine, deps Dependencies, cfg *config.Config) (stop func()) {
	clk := deps.Clock
	if clk == nil {
		clk = clock.System()
	}
	log := logger.OrDefault(deps.Log)

	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	router.GET("/health", func(c *gin.Context) {
		if deps.Health != nil {
			if err := deps.Health(c.Request.Context()); err != nil {
				log.Error("health check: %v", err)
				response.Error(c, http.StatusServiceUnavailable, "Database unreachable", "UNHEALTHY")
				return
			}
		}
		response.Success(c, gin.H{
			"status": "ok",
			"time":   clk.Now().Unix(),
		})
	})

	router.GET(
		"/swagger/*any",
		ginSwagger.WrapHandler(
			swaggerFiles.Handler,
			ginSwagger.URL("/swagger/doc.json"),
			ginSwagger.DeepLinking(true),
			ginSwagger.DefaultModelsExpandDepth(-1),
			ginSwagger.DocExpansion("none"),
			ginSwagger.PersistAuthorization(true),
		),
	)

	api := router.Group("/api/v1")

	jwtConfig := jwt.DefaultConfig(cfg.JWTSecret)
	jwtConfig.AccessExpiry = time.Duration(cfg.JWTExpireHours) * time.Hour
	jwtConfig.Issuer = cfg.JWTIssuer

	authMiddleware := auth.NewAuthMiddleware(deps.Users, jwtConfig, clk, false)

	ctx, cancel := context.WithCancel(context.Background())
	var limiter gin.HandlerFunc
	if cfg.AuthRateLimit > 0 {
		rl := ratelimit.New(cfg.AuthRateLimit, time.Minute, clk)
		rl.StartCleanup(ctx, 5*time.Minute)
		limiter = ratelimit.Middleware(rl, nil)
	}

	authHandler := auth.NewHandler(deps.Users, jwtConfig, clk, cfg.AllowAdminSignup, log)
	auth.RegisterRoutes(api, authHandler, authMiddleware, limiter)

	board := leaderboard.NewService(deps.Reports, deps.Users, deps.Cache, cfg.LeaderboardCacheTTL, deps.Metrics, log)
	leaderboard.RegisterRoutes(api, leaderboard.NewHandler(board), authMiddleware)

	engine := reports.NewEngine(clk, nil)
	reportService := reports.NewService(engine, deps.Reports, board, deps.Metrics, log)
	reports.RegisterRoutes(api, reports.NewHandler(reportService), authMiddleware)

	return cancel
}
