package database

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Open wraps gorm.Open with the settings every connection in this service
// needs. TranslateError maps driver unique violations to gorm.ErrDuplicatedKey.
func Open(dialector gorm.Dialector, logLevel logger.LogLevel) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
}

func Connect(cfg *config.Config) error {
	var dialector gorm.Dialector
	if cfg.UsesSQLite() {
		dialector = sqlite.Open(cfg.SQLitePath())
	} else {
		dialector = postgres.Open(cfg.DSN())
	}

	db, err := Open(dialector, logger.Warn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if cfg.UsesSQLite() {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetMaxIdleConns(25)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	}

	DB = db
	slog.Info("database connected", "driver", db.Dialector.Name())
	return nil
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.EventGuest{},
		&models.DateGuess{},
		&models.HourGuess{},
		&models.MinuteGuess{},
		&models.NameGuess{},
		&models.Payment{},
		&models.RefreshToken{},
		&models.SystemLog{},
	)
}

func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
