package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"smartq/internal/analytics"
	analytics_api "smartq/internal/analytics/api"
	"smartq/internal/auth"
	"smartq/internal/broadcast"
	"smartq/internal/config"
	"smartq/internal/database/migrations"
	"smartq/internal/kafka"
	"smartq/internal/logger"
	"smartq/internal/queue"
	queue_db "smartq/internal/queue/db"
	"smartq/internal/queue/queue_api"
	queue_redis "smartq/internal/queue/redis"
	"smartq/internal/review"
	review_db "smartq/internal/review/db"
	"smartq/internal/review/review_api"
	"smartq/internal/salon"
	salon_db "smartq/internal/salon/db"
	"smartq/internal/salon/salon_api"
	"smartq/internal/ticketpass"
)

func verifyConnections(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*bun.DB, *redis.Client) {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		logger.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			logger.Error("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
			time.Sleep(2 * time.Second)
			continue
		}

		err = sqldb.Ping()
		if err == nil {
			break
		}

		logger.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	logger.Info("DATABASE", "✅ PostgreSQL connection successful")

	bunDB := bun.NewDB(sqldb, pgdialect.New())

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	logger.Info("DATABASE", fmt.Sprintf("✅ Redis connection successful to %s", cfg.Redis.Addr))

	return bunDB, redisClient
}

func runMigrations(bunDB *bun.DB, logger *logger.Logger) {
	opts := migrations.DefaultOptions()
	if dir := os.Getenv("MIGRATIONS_DIR"); dir != "" {
		opts.MigrationsDir = dir
	}
	if os.Getenv("SEED_DEMO_DATA") == "true" {
		opts.SeedData = true
	}

	runner := migrations.NewRunner(bunDB, opts)
	if err := runner.RunMigrations(); err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Migration failed: %v", err))
	}
	if err := runner.Close(); err != nil {
		logger.Warn("DATABASE", fmt.Sprintf("Failed to close migrator: %v", err))
	}
	logger.Info("DATABASE", "Migrations applied")
}

func main() {
	logger := logger.NewLogger()
	defer logger.Close()

	logger.Info("APP", "Starting SmartQ service initialization")

	if err := godotenv.Load(); err != nil {
		logger.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		logger.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	logger.Info("APP", "Verifying database connections")
	bunDB, redisClient := verifyConnections(ctx, cfg, logger)
	defer bunDB.Close()
	defer redisClient.Close()

	runMigrations(bunDB, logger)

	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		logger.Info("KAFKA", fmt.Sprintf("Using Kafka brokers: %v", cfg.Kafka.Brokers))
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, []string{cfg.Kafka.Topics.QueueEvents}); err != nil {
			logger.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			logger.Info("KAFKA", "Required topics ensured successfully")
		}
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.QueueEvents)
		defer producer.Close()
		logger.Info("KAFKA", "Kafka producer initialized successfully")
	} else {
		logger.Warn("KAFKA", "Kafka disabled, queue events will not be published")
	}

	hub := broadcast.New()
	passes := ticketpass.NewGenerator(os.Getenv("QR_SECRET"))
	identityCache := auth.NewIdentityCache(redisClient, cfg.Auth.TokenCacheTTL)

	queueDB := &queue_db.DB{Bun: bunDB}
	joinLocks := queue_redis.NewRedis(redisClient, cfg.Queue.JoinLockTTL)

	var events queue.EventPublisher
	if producer != nil {
		events = producer
	}

	queueService := queue.NewService(queueDB, joinLocks, events, hub, passes, logger, cfg.Queue.SlotMinutes)
	salonService := salon.NewService(&salon_db.DB{Bun: bunDB}, cfg.Queue.SlotMinutes)
	reviewService := review.NewService(&review_db.DB{Bun: bunDB}, logger)
	analyticsService := analytics.NewService(analytics.NewDB(bunDB), cfg.Queue.SlotMinutes)

	queueHandler := queue_api.NewHandler(queueService, logger)
	wsHandler := queue_api.NewWSHandler(hub, logger)
	sseHandler := queue_api.NewSSEHandler(hub, logger)
	salonHandler := salon_api.NewHandler(salonService, logger)
	reviewHandler := review_api.NewHandler(reviewService, logger)
	analyticsHandler := analytics_api.NewHandler(analyticsService, logger)

	logger.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()

	// --- Public Routes ---
	r.Get("/api/salons", salonHandler.ListSalons)
	r.Get("/api/salons/{salonID}", salonHandler.GetSalon)
	r.Get("/api/salons/{salonID}/services", salonHandler.ListServices)
	r.Get("/api/salons/{salonID}/reviews", reviewHandler.ListReviews)
	r.Get("/api/salons/{salonID}/queue", queueHandler.GetSalonQueue)
	r.Get("/ws/queue", wsHandler.HandleQueueSocket)
	logger.Info("ROUTER", "Public salon, queue and websocket endpoints registered")

	// --- Protected Routes ---
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(identityCache))
		logger.Info("AUTH", "OIDC middleware applied to protected API routes")

		r.Route("/api", func(r chi.Router) {
			r.Route("/salons", func(r chi.Router) {
				r.Post("/", salonHandler.CreateSalon)
				r.Put("/{salonID}", salonHandler.UpdateSalon)
				r.Delete("/{salonID}", salonHandler.DeleteSalon)
				r.Post("/{salonID}/services", salonHandler.AddService)
				r.Post("/{salonID}/offers", salonHandler.CreateOffer)
				r.Patch("/offers/{offerID}", salonHandler.SetOfferActive)
				r.Post("/{salonID}/reviews", reviewHandler.CreateReview)
			})
			logger.Info("ROUTER", "Salon management routes registered under /api/salons")

			r.Route("/queue", func(r chi.Router) {
				r.Post("/{salonID}/join", queueHandler.JoinQueue)
				r.Get("/{salonID}/me", queueHandler.GetMyPosition)
				r.Patch("/entries/{entryID}/status", queueHandler.UpdateStatus)
				r.Delete("/entries/{entryID}", queueHandler.LeaveQueue)
			})
			logger.Info("ROUTER", "Queue routes registered under /api/queue")

			r.Get("/salons/{salonID}/queue/stream", sseHandler.HandleQueueStream)
			r.Get("/salons/{salonID}/analytics", analyticsHandler.GetSalonAnalytics)
			logger.Info("ROUTER", "Stream and analytics routes registered")
		})
	})

	// No WriteTimeout: the SSE stream holds its response open for the
	// life of the dashboard session.
	server := &http.Server{
		Addr:        cfg.Server.Port,
		Handler:     r,
		ReadTimeout: cfg.Server.ReadTimeout,
		IdleTimeout: cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP", fmt.Sprintf("🚀 SmartQ service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	logger.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		logger.Info("HTTP", "✅ SmartQ service shutdown complete")
	}
}
