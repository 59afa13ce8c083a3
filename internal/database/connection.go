// internal/database/connection.go
package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ailibrary/prompts-backend/internal/config"
	"github.com/ailibrary/prompts-backend/internal/models"
)

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormLogger(cfg.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.Info("Database connection established")
	return db, nil
}

func gormLogger(level string) logger.Interface {
	switch level {
	case "info":
		return logger.Default.LogMode(logger.Info)
	case "warn":
		return logger.Default.LogMode(logger.Warn)
	case "error":
		return logger.Default.LogMode(logger.Error)
	default:
		return logger.Default.LogMode(logger.Silent)
	}
}

// Migrate runs schema migrations and creates the indexes GORM tags cannot
// express.
func Migrate(db *gorm.DB) error {
	// uuid defaults rely on pgcrypto's gen_random_uuid()
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error; err != nil {
		return fmt.Errorf("failed to create pgcrypto extension: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.SellerProfile{},
		&models.Product{},
		&models.Review{},
		&models.Purchase{},
		&models.Payout{},
	); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// One completed purchase per (buyer, product). This partial index is the
	// settlement idempotency guarantee; the service-level pre-check only
	// fails fast.
	indexes := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_purchases_buyer_product_completed
			ON purchases (buyer_id, product_id)
			WHERE status = 'completed' AND deleted_at IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_products_status_category ON products (status, category)`,
		`CREATE INDEX IF NOT EXISTS idx_products_status_sales ON products (status, sales_count DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_purchases_seller_completed ON purchases (seller_id, completed_at)`,
	}

	for _, idx := range indexes {
		if err := db.Exec(idx).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	logrus.Info("Database migrations completed")
	return nil
}
