package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sugarrush/sweetshop/internal/auth"
	"github.com/sugarrush/sweetshop/internal/config"
	"github.com/sugarrush/sweetshop/internal/http/handlers"
	"github.com/sugarrush/sweetshop/internal/http/middlewares"
	"github.com/sugarrush/sweetshop/internal/observability"
	"github.com/sugarrush/sweetshop/internal/redisclient"
	"github.com/sugarrush/sweetshop/internal/repo/postgres"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, redis *redisclient.Client, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// shared plumbing

	prom := observability.NewProm(prometheus.DefaultRegisterer)

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(1 << 20)) // 1 MiB is plenty for this API
	r.Use(prom.GinHandleMiddleware())
	r.Use(otelgin.Middleware("sweetshop"))

	// health

	pingDB := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	var pingRedis func() error

	if redis != nil {
		pingRedis = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
			defer cancel()

			return redis.Ping(ctx)
		}
	}

	health := handlers.NewHealthHandler(pingDB, pingRedis)
	r.GET("/health", health.Health)
	r.GET("/readyz", health.Readyz)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/docs", handlers.SwaggerUI)
	r.StaticFile("/docs/openapi.yaml", "./docs/openapi.yaml")

	// wire up repositories

	usersRepo := postgres.NewUsersRepo(pool, prom)
	sweetsRepo := postgres.NewSweetsRepo(pool, prom)

	jwtManager := auth.NewManager(cfg.JWTSecret, time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute)

	authHandler := handlers.NewAuthHandler(usersRepo, usersRepo, jwtManager)
	sweetsHandler := handlers.NewSweetsHandler(sweetsRepo, prom)

	authMW := middlewares.NewAuthMiddleware(jwtManager)

	// brute-force protection on the credential endpoints; redis keeps the
	// window shared across replicas, memory is the single-node fallback

	var authLimiter gin.HandlerFunc

	if redis != nil {
		authLimiter = middlewares.NewRedisRateLimiter(redis.Raw(), cfg.AuthRateLimit, cfg.AuthRateWindow).
			RateLimiterMiddleware(middlewares.KeyByIP)
	} else {
		authLimiter = middlewares.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow).
			RateLimiterMiddleware(middlewares.KeyByIP)
	}

	api := r.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.Use(authLimiter)
	authRoutes.POST("/register", authHandler.Register)
	authRoutes.POST("/login", authHandler.Login)

	sweets := api.Group("/sweets")

	// reads + purchase: any authenticated caller
	sweets.GET("", authMW.RequireAuth(), sweetsHandler.ListSweets)
	sweets.GET("/search", authMW.RequireAuth(), sweetsHandler.SearchSweets)
	sweets.POST("/:id/purchase", authMW.RequireAuth(), sweetsHandler.PurchaseSweet)

	// catalog mutation + restock: admin only. RequireAdmin carries both
	// gates in order so the role check can never run without an identity.
	sweets.POST("", withGuard(authMW.RequireAdmin(), sweetsHandler.CreateSweet)...)
	sweets.PUT("/:id", withGuard(authMW.RequireAdmin(), sweetsHandler.UpdateSweet)...)
	sweets.DELETE("/:id", withGuard(authMW.RequireAdmin(), sweetsHandler.DeleteSweet)...)
	sweets.POST("/:id/restock", withGuard(authMW.RequireAdmin(), sweetsHandler.RestockSweet)...)

	return r
}

func withGuard(guard gin.HandlersChain, handler gin.HandlerFunc) gin.HandlersChain {
	return append(guard, handler)
}
