package config

import (
	"fmt"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect opens postgres, installs the tracing plugin and runs migrations.
func Connect(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DBDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if sqlDB, derr := db.DB(); derr == nil {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}
	if pluginErr := db.Use(otelgorm.NewPlugin()); pluginErr != nil {
		GetLogger().WithError(pluginErr).Warn("db connected but failed to install otelgorm plugin")
	}

	if err := Migrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	DB = db
	return db, nil
}
