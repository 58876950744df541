package database

import (
	"fmt"
	"strings"

	"github.com/isdelr/circuitgen-be/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New opens a connection pool for the given URL. postgres:// and
// postgresql:// URLs select Postgres; anything else is a SQLite path,
// optionally prefixed with sqlite://.
func New(url string) (*gorm.DB, error) {
	dialector, isSQLite := dialectorFor(url)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	if isSQLite {
		// SQLite serializes writers; a single connection also keeps
		// :memory: databases alive across queries.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(50)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func dialectorFor(url string) (gorm.Dialector, bool) {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return postgres.Open(url), false
	}
	path := strings.TrimPrefix(url, "sqlite://")
	return sqlite.Open(path), true
}

// Migrate creates the four tables if they are absent.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.Circuit{}, &models.Component{}, &models.AICourse{})
}
