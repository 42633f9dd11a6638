package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresConnector opens a gorm handle and creates the given tables if
// they are missing.
func NewPostgresConnector(opts Options, log *zap.Logger, tables ...interface{}) *Connector[*gorm.DB] {
	dial := func(ctx context.Context) (*gorm.DB, error) {
		if opts.ConnectTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, opts.ConnectTimeout)
			defer cancel()
		}

		db, err := gorm.Open(postgres.Open(opts.URI), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres: %w", err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get postgres pool: %w", err)
		}
		if opts.MaxPoolSize > 0 {
			sqlDB.SetMaxOpenConns(opts.MaxPoolSize)
		}

		if err := sqlDB.PingContext(ctx); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("failed to ping postgres: %w", err)
		}

		if len(tables) > 0 {
			if err := db.WithContext(ctx).AutoMigrate(tables...); err != nil {
				_ = sqlDB.Close()
				return nil, fmt.Errorf("failed to create tables: %w", err)
			}
		}

		return db, nil
	}

	closeFn := func(_ context.Context, db *gorm.DB) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return NewConnector("postgres", dial, closeFn, log)
}
