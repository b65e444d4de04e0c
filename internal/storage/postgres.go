package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vladimiradmaev/nutriscan/internal/storage/migrations"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// KeyValue is a row of the kv_store table.
type KeyValue struct {
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName matches the table created by the migrations.
func (KeyValue) TableName() string { return "kv_store" }

// PostgresStore keeps values in a Postgres table through GORM.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore connects to Postgres and runs pending migrations
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	registry, err := migrations.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}
	if err := registry.Run(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Get returns the value stored under key
func (s *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	var kv KeyValue
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&kv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return kv.Value, true, nil
}

// Set upserts value under key
func (s *PostgresStore) Set(ctx context.Context, key, value string) error {
	kv := KeyValue{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&kv).Error
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying connection pool
func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
