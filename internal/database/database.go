package database

import (
	"context"
	"fmt"
	"time"

	"quiz-admin/internal/config"
	"quiz-admin/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	*gorm.DB
	config config.DatabaseConfig
}

// Connect opens the PostgreSQL database described by cfg and migrates the schema.
func Connect(cfg config.DatabaseConfig, log *logrus.Logger) (*Database, error) {
	return Open(postgres.Open(cfg.DSN()), cfg, log)
}

// Open wires any gorm dialector. Tests use it with SQLite.
func Open(dialector gorm.Dialector, cfg config.DatabaseConfig, log *logrus.Logger) (*Database, error) {
	gormConfig := &gorm.Config{
		Logger: newGormLogger(cfg, log),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		DisableForeignKeyConstraintWhenMigrating: true,
		PrepareStmt:                              true,
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		log.WithError(err).Error("Failed to connect to database")
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.WithError(err).Error("Failed to get underlying sql.DB")
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		log.WithError(err).Error("Failed to ping database")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	sqlDB.SetConnMaxIdleTime(2 * time.Minute)

	log.Info("Database connection established successfully")

	database := &Database{
		DB:     db,
		config: cfg,
	}

	if err := autoMigrate(db, log); err != nil {
		log.WithError(err).Error("Failed to run auto migration")
		_ = database.Close()
		return nil, fmt.Errorf("failed to run auto migration: %w", err)
	}

	return database, nil
}

func newGormLogger(cfg config.DatabaseConfig, log *logrus.Logger) logger.Interface {
	level := logger.Warn
	if cfg.LogQueries {
		level = logger.Info
	}
	return logger.New(log, logger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}

func (d *Database) WithContext(ctx context.Context) *gorm.DB {
	return d.DB.WithContext(ctx)
}

func (d *Database) WithTimeout() (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), d.GetQueryTimeout())
	return d.DB.WithContext(ctx), cancel
}

func (d *Database) GetQueryTimeout() time.Duration {
	if d.config.QueryTimeout <= 0 {
		return 10 * time.Second
	}
	return d.config.QueryTimeout
}

func (d *Database) HealthCheck() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	return sqlDB.PingContext(ctx)
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func autoMigrate(db *gorm.DB, log *logrus.Logger) error {
	log.Info("Running auto migration...")

	err := db.AutoMigrate(
		&models.Admin{},
		&models.Package{},
		&models.FileSlot{},
	)

	if err != nil {
		return err
	}

	log.Info("Auto migration completed successfully")
	return nil
}
