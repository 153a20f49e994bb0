package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/AndrewYakovlev/aso-uni/internal/infrastructure/repositories"
)

// Open creates a new database connection.
func Open(dsn string) (*gorm.DB, error) {
	config := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}
	return gorm.Open(postgres.Open(dsn), config)
}

// AutoMigrate creates or updates every table owned by the identity core:
// users, anonymous sessions, OTP codes, and the identity-owned commerce
// records the merge engine moves between them.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&repositories.DBUser{},
		&repositories.DBAnonymousSession{},
		&repositories.DBOtpCode{},
		&repositories.DBCart{},
		&repositories.DBCartItem{},
		&repositories.DBFavorite{},
		&repositories.DBViewHistory{},
		&repositories.DBSearchHistory{},
		&repositories.DBSupportChat{},
	); err != nil {
		return fmt.Errorf("failed to migrate identity tables: %w", err)
	}
	return nil
}
