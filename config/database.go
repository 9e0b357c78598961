package config

import (
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB connects to the database selected by cfg.Store.Driver.
// It must not be called for the file driver.
func OpenDB(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	store := cfg.Store

	switch store.Driver {
	case StoreDriverMySQL:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			store.DBUsername,
			store.DBPassword,
			store.DBHost,
			portOr(store.DBPort, "3306"),
			store.DBDatabase,
		)
		dialector = mysql.Open(dsn)
	case StoreDriverPostgres:
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			store.DBHost,
			store.DBUsername,
			store.DBPassword,
			store.DBDatabase,
			portOr(store.DBPort, "5432"),
		)
		dialector = postgres.Open(dsn)
	case StoreDriverSQLite:
		dialector = sqlite.Open(store.SQLitePath)
	default:
		return nil, fmt.Errorf("store driver %q has no database", store.Driver)
	}

	// In production, suppress SQL logs unless explicitly re-enabled via DEBUG_SQL=true.
	logLevel := logger.Info
	if cfg.IsProduction() && !cfg.DebugSQL {
		logLevel = logger.Warn
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(
			log.New(LogWriter, "\r\n", log.LstdFlags),
			logger.Config{LogLevel: logLevel},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Printf("Database connected successfully (%s)", store.Driver)
	return db, nil
}

func portOr(port, fallback string) string {
	if port == "" {
		return fallback
	}
	return port
}
