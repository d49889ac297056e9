package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const sqliteScheme = "sqlite://"

// Connect opens the relational store. DSNs prefixed with sqlite:// use an
// embedded SQLite file, anything else is handed to the PostgreSQL driver.
func Connect(dsn string, debug bool) (*gorm.DB, error) {
	dsn = strings.TrimSpace(dsn)
	if strings.HasPrefix(dsn, sqliteScheme) {
		return ConnectSQLite(strings.TrimPrefix(dsn, sqliteScheme), debug)
	}
	return ConnectPostgres(dsn, debug)
}

// ConnectPostgres establishes a connection to the PostgreSQL database using the provided DSN.
func ConnectPostgres(dsn string, debug bool) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn must not be empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig(debug))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return db, nil
}

// ConnectSQLite opens a SQLite database, used for local development.
func ConnectSQLite(path string, debug bool) (*gorm.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path must not be empty")
	}

	db, err := gorm.Open(sqlite.Open(path), gormConfig(debug))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	return db, nil
}

func gormConfig(debug bool) *gorm.Config {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	return &gorm.Config{Logger: gormlogger.Default.LogMode(level)}
}
