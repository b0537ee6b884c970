package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"studytrack/config"
	"studytrack/logger"
	"studytrack/models"
)

// DbInstance owns the database connection. main opens it once and closes it on shutdown.
type DbInstance struct {
	Db *gorm.DB
}

// ConnectDb opens the configured database and runs migrations.
func ConnectDb(cfg *config.Config, log *logger.Logger) (*DbInstance, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}
	return Open(dialector, log)
}

// Open connects with an explicit dialector. Tests use it with an in-memory SQLite.
func Open(dialector gorm.Dialector, log *logger.Logger) (*DbInstance, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         NewGormLogger(log),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialector.Name(), err)
	}

	// Set up connection pooling
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql handle: %w", err)
	}
	if dialector.Name() == "sqlite" {
		// SQLite serializes writers anyway; one connection keeps in-memory databases shared.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(5)
	}

	if err := RunMigrations(db, log); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return &DbInstance{Db: db}, nil
}

// Close releases the connection pool.
func (d *DbInstance) Close() error {
	if d == nil || d.Db == nil {
		return nil
	}
	sqlDB, err := d.Db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the database still answers.
func (d *DbInstance) Ping(ctx context.Context) error {
	sqlDB, err := d.Db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// RunMigrations performs database migrations
func RunMigrations(db *gorm.DB, log *logger.Logger) error {
	log.Info("Running migrations")

	err := db.AutoMigrate(
		&models.User{},
		&models.PlaylistSource{},
		&models.PlaylistItem{},
		&models.StudyPlan{},
		&models.CompletedDay{},
		&models.MissedDay{},
	)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	log.Info("Migrations completed")
	return nil
}

func dialectorFor(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "postgres":
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode,
		)
		return postgres.Open(dsn), nil
	case "mysql":
		dsn := fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName,
		)
		return mysql.Open(dsn), nil
	case "sqlite":
		if err := ensureDirForSQLite(cfg.SQLitePath); err != nil {
			return nil, err
		}
		return sqlite.Open(cfg.SQLitePath), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}

// ensureDirForSQLite creates parent dir for SQLite file if needed.
func ensureDirForSQLite(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}
