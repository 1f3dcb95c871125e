package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Karthikeyadusa/Attendly-sub000/internal/aiclient"
	"github.com/Karthikeyadusa/Attendly-sub000/internal/auth"
	"github.com/Karthikeyadusa/Attendly-sub000/internal/config"
	"github.com/Karthikeyadusa/Attendly-sub000/internal/handler"
	"github.com/Karthikeyadusa/Attendly-sub000/internal/httpmiddleware"
	"github.com/Karthikeyadusa/Attendly-sub000/internal/identity"
	"github.com/Karthikeyadusa/Attendly-sub000/internal/logger"
	"github.com/Karthikeyadusa/Attendly-sub000/internal/queue"
	"github.com/Karthikeyadusa/Attendly-sub000/internal/syncer"
	"github.com/Karthikeyadusa/Attendly-sub000/internal/tracker"
	"github.com/Karthikeyadusa/Attendly-sub000/internal/worker"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatal().Err(err).Msg("http server failed")
	}
}

func snapshotStore(cfg config.App, redisClient *goredis.Client) (syncer.SnapshotStore, func(), error) {
	switch cfg.SnapshotBackend {
	case "postgres":
		pg, err := syncer.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return pg, func() { _ = pg.Close() }, nil
	case "redis":
		return syncer.NewRedisStore(redisClient, ""), func() {}, nil
	default:
		sq, err := syncer.NewSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return sq, func() { _ = sq.Close() }, nil
	}
}

func runHTTP(cfg config.App) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var redisClient *goredis.Client
	if cfg.SnapshotBackend == "redis" || cfg.QueueBackend == "redis" {
		redisClient = syncer.NewRedisClient(cfg.RedisAddr)
		defer redisClient.Close()
	}

	store := tracker.NewStore()

	backend, closeBackend, err := snapshotStore(cfg, redisClient)
	if err != nil {
		return err
	}
	defer closeBackend()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	sync := syncer.New(backend, reg)

	// Restore the last saved snapshot before serving anything.
	if snap, ok, err := sync.Restore(ctx); err != nil {
		log.Warn().Err(err).Msg("snapshot restore failed, starting empty")
	} else if ok {
		if err := store.RestoreSnapshot(snap); err != nil {
			log.Warn().Err(err).Msg("saved snapshot rejected, starting empty")
		} else {
			log.Info().Msg("state restored from snapshot")
		}
	}

	go sync.Run(ctx, store.Changes())

	var q queue.Queue
	var results queue.ResultStore
	if cfg.QueueBackend == "redis" {
		q = queue.NewRedisQueue(redisClient, "")
		results = queue.NewRedisResults(redisClient, "")
	} else {
		q = queue.NewInMemory(64)
		results = queue.NewMemoryResults()
		// In-memory queue needs an in-process worker.
		go runWorkerLoop(ctx, cfg, q, results)
	}

	ai := aiclient.New(cfg.AIServiceURL, cfg.AISkip)
	idc := identity.New(cfg.IdentityURL, cfg.IdentitySkip)

	h := handler.New(store, ai, idc, q, results, sync, handler.AuthConfig{
		Issuer:     cfg.JWTIssuer,
		SigningKey: cfg.JWTSigningKey,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewRateLimiter(cfg.RateLimitPerMin, cfg.RateLimitPerMin).Middleware())

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	h.Register(r, auth.UserAuth(cfg.JWTSigningKey, cfg.JWTIssuer))

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")
	cancel()

	// Give outstanding requests 10 seconds to complete.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("server forced shutdown")
	}

	log.Info().Msg("server exited")
	return nil
}

// runWorkerLoop consumes extraction jobs in-process when the memory queue is
// configured. With the redis backend the standalone worker binary does this.
func runWorkerLoop(ctx context.Context, cfg config.App, q queue.Queue, results queue.ResultStore) {
	ai := aiclient.New(cfg.AIServiceURL, cfg.AISkip)
	if err := worker.Run(ctx, ai, q, results); err != nil {
		log.Error().Err(err).Msg("in-process worker init failed")
	}
}

// CORS middleware for browser requests.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware.
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
