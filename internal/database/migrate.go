package database

import (
	"errors"
	"fmt"
	"log"
	"net/url"

	"clinic-engage/internal/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations applies the SQL migration chain in migrations/ to Postgres.
// The chain is linear; files already applied are skipped by schema_migrations.
func RunMigrations(cfg *config.Config, dir string) {
	if cfg.DBDriver == "sqlite" {
		return // sqlite dev mode is auto-migrated in InitGorm
	}

	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		url.QueryEscape(cfg.DBUser), url.QueryEscape(cfg.DBPassword),
		cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBSSLMode)

	m, err := migrate.New("file://"+dir, dbURL)
	if err != nil {
		log.Fatalf("Failed to initialize migrations: %v", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	log.Println("Database migrations applied")
}
