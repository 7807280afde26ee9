// Package database opens the gorm connection and migrates the schema.
package database

import (
	"fmt"
	"os"
	"time"

	"storefront/internal/models"

	drivermysql "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbLogger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "gorm").Logger()

// Open connects to the configured store. Errors are translated so repositories can
// detect unique-index violations with gorm.ErrDuplicatedKey.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "mysql":
		mysqlDSN, err := withFoundRows(dsn)
		if err != nil {
			return nil, err
		}
		dialector = mysql.Open(mysqlDSN)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         newGormLogger(&dbLogger),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}
	return db, nil
}

// withFoundRows makes MySQL report matched rather than changed rows, so an
// update that rewrites the same values still counts the row it found.
// Repositories rely on RowsAffected to tell a missing row from an idempotent write.
func withFoundRows(dsn string) (string, error) {
	cfg, err := drivermysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid mysql DSN: %w", err)
	}
	cfg.ClientFoundRows = true
	return cfg.FormatDSN(), nil
}

// newGormLogger routes gorm's warnings, errors and slow queries to w. Lookups
// that find nothing are expected and stay quiet.
func newGormLogger(w logger.Writer) logger.Interface {
	return logger.New(w, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// Migrate creates or updates the tables and indexes of every model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}
