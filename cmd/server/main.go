package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tasktracker/internal/config"
	"tasktracker/internal/docstore"
	"tasktracker/internal/handler"
	"tasktracker/internal/httpserver"
	"tasktracker/internal/repository"
	"tasktracker/internal/service"
	"tasktracker/pkg/circuitbreaker"
	pkgconfig "tasktracker/pkg/config"
	"tasktracker/pkg/db"
	"tasktracker/pkg/logger"
	"tasktracker/pkg/mq"
	"tasktracker/pkg/otel"
	"tasktracker/pkg/redis"
	"tasktracker/pkg/util"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger(cfg.LogLevel)
	defer log.Sync()

	log.Info("Starting task tracker...",
		zap.String("store_driver", cfg.Store.Driver),
		zap.String("port", cfg.Server.Port),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.Bool("mq_enabled", cfg.MQ.Enabled),
	)

	shutdownTracing, err := otel.Init(otel.Config{
		ServiceName:    "tasktracker",
		ServiceVersion: "1.0.0",
		Endpoint:       cfg.Otel.Endpoint,
		Enabled:        cfg.Otel.Enabled,
	}, log)
	if err != nil {
		log.Fatal("Failed to init OpenTelemetry", zap.Error(err))
	}
	defer shutdownTracing()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal("Invalid time zone", zap.String("time_zone", cfg.Server.TimeZone), zap.Error(err))
	}

	// Store
	store := openStore(cfg, log)
	defer store.Close()

	// Redis (optional)
	var idem handler.IdempotencyKeys
	if cfg.Redis.Enabled {
		rdb, err := redis.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to init Redis", zap.Error(err))
		}
		defer rdb.Close()
		idem = util.NewIdempotencyKeys(rdb, time.Duration(cfg.Redis.IdempotencyTTLSeconds)*time.Second, log)
		log.Info("Redis idempotency keys enabled", zap.String("addr", cfg.Redis.Addr))
	}

	// MQ (optional)
	var publisher mq.EventPublisher = mq.NoopPublisher{}
	if cfg.MQ.Enabled {
		pub, err := mq.NewPublisher(cfg.MQ.URL, log)
		if err != nil {
			log.Fatal("Failed to init MQ publisher", zap.Error(err))
		}
		defer pub.Close()
		publisher = mq.NewGuardedPublisher(pub, circuitbreaker.DefaultConfig(), log)
	}

	taskRepo := repository.NewTaskRepository(store, log)
	statsService := service.NewStatsService(store, loc, log)

	taskHandler := handler.NewTaskHandler(taskRepo, publisher, idem, log)
	statsHandler := handler.NewStatsHandler(statsService, log)
	router := httpserver.NewRouter(taskHandler, statsHandler, store, log, httpserver.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 优雅退出处理
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down task tracker gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownSeconds)*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}
	log.Info("task tracker shutdown complete")
}

// openStore builds the document store once; any failure here is fatal.
func openStore(cfg *config.Config, log *zap.Logger) docstore.Store {
	switch cfg.Store.Driver {
	case "memory":
		log.Warn("Using in-memory document store; data is lost on restart")
		return docstore.WithInstrumentation(docstore.NewMemoryStore())
	case "postgres", "":
	default:
		log.Fatal("Unknown store driver", zap.String("driver", cfg.Store.Driver))
	}

	creds, err := pkgconfig.ResolveCredentials(cfg.Store)
	if err != nil {
		log.Fatal("Failed to resolve store credentials", zap.Error(err))
	}

	pool, err := db.NewConnection(creds, time.Duration(cfg.Store.SlowQueryMS)*time.Millisecond, log)
	if err != nil {
		log.Fatal("Failed to init document store", zap.Error(err))
	}

	pg := docstore.NewPostgresStore(pool, log)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := pg.EnsureSchema(ctx); err != nil {
		pool.Close()
		log.Fatal("Failed to prepare document store", zap.Error(err))
	}
	return docstore.WithInstrumentation(pg)
}
