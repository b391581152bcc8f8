// @title Mangrove Watch API
// @version 1.0
// @description Citizen reporting of mangrove threats: identity, report lifecycle and leaderboard
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer <token>"
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	docs "github.com/xyz-asif/mangrovewatch/docs"
	"github.com/xyz-asif/mangrovewatch/internal/config"
	"github.com/xyz-asif/mangrovewatch/internal/database"
	"github.com/xyz-asif/mangrovewatch/internal/features/auth"
	"github.com/xyz-asif/mangrovewatch/internal/features/reports"
	"github.com/xyz-asif/mangrovewatch/internal/middleware"
	"github.com/xyz-asif/mangrovewatch/internal/pkg/cache"
	"github.com/xyz-asif/mangrovewatch/internal/pkg/clock"
	"github.com/xyz-asif/mangrovewatch/internal/pkg/logger"
	"github.com/xyz-asif/mangrovewatch/internal/pkg/metrics"
	"github.com/xyz-asif/mangrovewatch/internal/routes"
)

func main() {
	cfg := config.Load()

	log := logger.New(logger.ParseLevel(cfg.LogLevel), os.Stdout)
	logger.SetGlobalLevel(log.GetLevel())

	docs.SwaggerInfo.Host = "localhost:" + cfg.Port

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, database.DefaultConfig(cfg.MongoURI, cfg.MongoDB))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB: %v", err)
	}
	defer db.Disconnect(context.Background())

	clk := clock.System()

	var leaderboardCache cache.Cache
	if cfg.RedisURL != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
		leaderboardCache = cache.NewRedis(rdb, "mangrovewatch:")
		log.Info("Leaderboard cache: redis")
	} else {
		leaderboardCache = cache.NewMemory(clk)
		log.Info("Leaderboard cache: in process")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log, middleware.DefaultLoggerConfig()))
	router.Use(middleware.CORS(cfg.FrontendURL))

	stopBackground := routes.SetupRoutes(router, routes.Dependencies{
		Users:   auth.NewRepository(db.Database),
		Reports: reports.NewRepository(db.Database),
		Cache:   leaderboardCache,
		Metrics: metrics.New(),
		Clock:   clk,
		Log:     log,
		Health:  db.Ping,
	}, cfg)
	defer stopBackground()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
