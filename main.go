package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/tertulia-im/tertulia/handlers"
	"github.com/tertulia-im/tertulia/internal/board"
	"github.com/tertulia-im/tertulia/internal/config"
	"github.com/tertulia-im/tertulia/internal/database"
	"github.com/tertulia-im/tertulia/internal/directory"
	"github.com/tertulia-im/tertulia/internal/sweeper"
	"github.com/tertulia-im/tertulia/pkg/logger"
	"github.com/tertulia-im/tertulia/pkg/metrics"
	"github.com/tertulia-im/tertulia/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// logging level is controlled with LOG_LEVEL env: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: mongo=%v badger=%v redis=%v", cfg.MongoDB.URI != "", cfg.Badger.Path != "", cfg.Redis.Host != "")

	r := gin.New()

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	// (Keep this intentionally simple — production should use a stricter policy.)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, "+middleware.CallerHeader)
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	// Global middlewares: logging + recovery, then caller identity so the
	// rate limiters below can key on the participant name.
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.CallerIdentity())

	// Connect to Redis early so the rate-limiter can use it when configured
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			redisClient = nil
		} else {
			logger.Infof("Connected to Redis: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	// Optional global rate limiter (per-participant when identified, otherwise per-IP)
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// Pick the message/participant store: MongoDB when configured, otherwise
	// Badger when a path is given, otherwise in-process memory.
	ctx := context.Background()
	var dirRepo directory.Repository
	var boardRepo board.Repository
	storeKind := "memory"

	switch {
	case cfg.MongoDB.URI != "":
		client, err := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5)
		if err != nil {
			logger.Fatalf("could not connect to MongoDB: %v", err)
		}
		defer func() { _ = client.Disconnect(ctx) }()
		db := client.Database(cfg.MongoDB.Database)
		dirRepo, err = directory.NewMongoRepository(ctx, db.Collection("participants"))
		if err != nil {
			logger.Fatalf("participants index: %v", err)
		}
		boardRepo, err = board.NewMongoRepository(ctx, db.Collection("messages"))
		if err != nil {
			logger.Fatalf("messages index: %v", err)
		}
		storeKind = "mongodb"
	case cfg.Badger.Path != "":
		bdb, err := database.OpenBadger(cfg.Badger.Path)
		if err != nil {
			logger.Fatalf("could not open Badger at %s: %v", cfg.Badger.Path, err)
		}
		defer func() { _ = bdb.Close() }()
		dirRepo = directory.NewBadgerRepository(bdb)
		boardRepo = board.NewBadgerRepository(bdb)
		storeKind = "badger"
	default:
		dirRepo = directory.NewMemoryRepository()
		boardRepo = board.NewMemoryRepository()
	}
	logger.Infof("store: %s", storeKind)

	dirSvc := directory.NewService(dirRepo)
	boardSvc := board.NewService(boardRepo, dirSvc)

	// Basic health endpoint
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness endpoint — return 200 only when critical dependencies are available
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]interface{}{"store": storeKind}

		if storeKind == "mongodb" {
			if _, err := dirSvc.Count(c.Request.Context()); err != nil {
				deps["storage"] = false
				ready = false
			} else {
				deps["storage"] = true
			}
		} else {
			deps["storage"] = true
		}

		// Redis readiness matters when it backs the rate limiter
		if cfg.RateLimit.Enabled && cfg.RateLimit.UseRedis {
			deps["redis"] = redisClient != nil
			if redisClient == nil {
				ready = false
			}
		} else {
			deps["redis"] = true
		}

		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": time.Since(startTime).String()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": time.Since(startTime).String()})
	})

	// Room API
	api := r.Group("/api/v1")
	handlers.NewParticipantsHandler(dirSvc, boardSvc).Register(api)
	handlers.NewMessagesHandler(boardSvc).Register(api)
	handlers.NewStatsHandler(dirSvc, boardSvc, startTime).Register(api)

	// Minimal Swagger UI + JSON for API documentation
	handlers.RegisterSwagger(r)

	// Expose Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Background eviction of silent participants
	var sw *sweeper.Sweeper
	if cfg.Sweeper.Enabled {
		sw = sweeper.New(dirSvc, boardSvc, cfg.Sweeper.Interval, cfg.Sweeper.Threshold)
		sw.Start()
	}

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("Starting room service on %s", addr)
	go func() {
		if err := r.Run(addr); err != nil {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	// block until asked to stop, then let the deferred closers run
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infof("shutting down")
	if sw != nil {
		sw.Stop()
	}
}
