// Package app holds the start-up wiring shared by the API server and the worker.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-order-service/config"
	"github.com/fekuna/omnipos-order-service/pkg/database"
	"github.com/fekuna/omnipos-order-service/pkg/database/postgres"
	"github.com/fekuna/omnipos-order-service/pkg/database/sqlite"
	"github.com/fekuna/omnipos-order-service/pkg/logger"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

func NewLogger(cfg *config.Config, service string) logger.ZapLogger {
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
		ServiceName:       service,
	}
	if cfg.IsDevelopment() {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
	}
	return logger.NewZapLogger(logConfig)
}

// OpenDatabase connects to the configured driver and applies the schema when
// AutoMigrate is set.
func OpenDatabase(ctx context.Context, cfg *config.Config, log logger.ZapLogger) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)
	switch cfg.Postgres.Driver {
	case "sqlite":
		db, err = sqlite.Open(cfg.Postgres.SQLitePath)
		if err == nil {
			log.Info("Opened SQLite database", zap.String("path", cfg.Postgres.SQLitePath))
		}
	case "postgres", "":
		db, err = postgres.NewPostgres(&postgres.Config{
			Host:             cfg.Postgres.Host,
			Port:             cfg.Postgres.Port,
			User:             cfg.Postgres.User,
			Password:         cfg.Postgres.Password,
			DBName:           cfg.Postgres.DBName,
			SSLMode:          cfg.Postgres.SSLMode,
			MaxOpenConns:     cfg.Postgres.MaxOpenConns,
			MaxIdleConns:     cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime:  time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
			ConnMaxIdleTime:  time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
			StatementTimeout: cfg.Postgres.StatementTimeout,
		})
		if err == nil {
			log.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))
		}
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Postgres.Driver)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Postgres.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info("Database schema up to date", zap.String("dialect", database.DialectOf(db).String()))
	}
	return db, nil
}
