package main

import (
	"context"
	"database/sql"
	"flag"
	"log"

	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"smartq/internal/config"
	"smartq/internal/database/migrations"
)

func main() {
	_ = godotenv.Load() // Loads .env file if present

	direction := flag.String("direction", "up", "Migration direction: up or down")
	dir := flag.String("dir", "./migrations", "Directory containing migration files")
	seed := flag.Bool("seed", false, "Also apply demo seed data on up")
	flag.Parse()

	cfg := config.Load()

	ctx := context.Background()
	connector := pgdriver.NewConnector(pgdriver.WithDSN(cfg.Database.DSN))
	sqldb := sql.OpenDB(connector)
	defer sqldb.Close()

	if err := sqldb.PingContext(ctx); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, pgdialect.New())

	runner := migrations.NewRunner(bunDB, migrations.MigrateOptions{
		MigrationsDir: *dir,
		SeedData:      *seed,
	})
	defer func() {
		if err := runner.Close(); err != nil {
			log.Printf("Failed to close migrator: %v", err)
		}
	}()

	switch *direction {
	case "up":
		if err := runner.RunMigrations(); err != nil {
			log.Fatalf("❌ Migration up failed: %v", err)
		}
	case "down":
		if err := runner.MigrateDown(); err != nil {
			log.Fatalf("❌ Migration down failed: %v", err)
		}
	default:
		log.Fatalf("Unknown direction %q, expected up or down", *direction)
	}

	log.Println("✅ Done.")
}
