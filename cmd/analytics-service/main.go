package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"smartq/internal/analytics"
	analytics_api "smartq/internal/analytics/api"
	"smartq/internal/config"
	"smartq/internal/logger"
)

func verifyConnections(cfg *config.Config) *bun.DB {
	sqldb, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("[Database] Failed to open PostgreSQL: %v", err)
	}
	if err := sqldb.Ping(); err != nil {
		log.Fatalf("[Database] Failed to connect to PostgreSQL: %v", err)
	}
	log.Println("[Database] PostgreSQL connection successful")

	return bun.NewDB(sqldb, pgdialect.New())
}

// Standalone read-only analytics endpoint. Dashboards poll this without
// going through the main gateway.
func main() {
	_ = godotenv.Load() // Loads .env file if present

	cfg := config.Load()
	ctx := context.Background()

	bunDB := verifyConnections(cfg)
	defer bunDB.Close()

	customLogger := logger.NewLogger()
	defer customLogger.Close()

	service := analytics.NewService(analytics.NewDB(bunDB), cfg.Queue.SlotMinutes)
	handler := analytics_api.NewHandler(service, customLogger)

	r := chi.NewRouter()
	r.Route("/analytics", func(r chi.Router) {
		r.Get("/salons/{salonID}", handler.GetSalonAnalytics)
	})

	addr := os.Getenv("ANALYTICS_PORT")
	if addr == "" {
		addr = ":8085"
	}

	server := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Printf("🚀 Analytics service on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_ = server.Shutdown(ctxShutdown)
	log.Println("✅ Analytics service shutdown complete")
}
