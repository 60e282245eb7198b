package database

import (
	"fmt"
	"log"

	"clinic-engage/internal/config"
	"clinic-engage/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var GormDB *gorm.DB

func InitGorm(cfg *config.Config) {
	var err error

	if cfg.DBDriver == "sqlite" {
		GormDB, err = gorm.Open(sqlite.Open(cfg.DBName), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err != nil {
			log.Fatalf("Failed to connect to SQLite: %v", err)
		}
		// Dev/test path: no migration files, let gorm build the schema
		if err := AutoMigrate(GormDB); err != nil {
			log.Fatalf("Failed to run auto-migration: %v", err)
		}
		log.Println("Connected to SQLite (dev mode)")
		return
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)

	GormDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}

	log.Println("Connected to PostgreSQL successfully")
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Organization{},
		&models.Role{},
		&models.User{},
		&models.Customer{},
		&models.Message{},
		&models.WhatsAppToken{},
		&models.WhatsAppNumber{},
		&models.NumberFlowConfig{},
		&models.QuickReply{},
		&models.WhatsAppAPILog{},
		&models.ReferrerTracking{},
		&models.Lead{},
		&models.Campaign{},
		&models.Category{},
		&models.Product{},
	)
}
