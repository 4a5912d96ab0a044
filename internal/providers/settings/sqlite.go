package settings

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GriffinCanCode/SafeWaters/backend/internal/infrastructure/logging"
)

// setting is one row of the settings table.
type setting struct {
	Key       string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

func (setting) TableName() string { return "settings" }

// SQLite stores settings in a single key/value table.
type SQLite struct {
	db *gorm.DB
}

// OpenSQLite opens (and migrates) the database at dsn.
func OpenSQLite(dsn string, logger *logging.Logger) (*SQLite, error) {
	cfg := &gorm.Config{}
	if logger != nil {
		cfg.Logger = NewGormLogger(logger)
	}

	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		return nil, fmt.Errorf("open settings database: %w", err)
	}
	if err := db.AutoMigrate(&setting{}); err != nil {
		return nil, fmt.Errorf("migrate settings table: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Open returns a SQLite store for dsn, or an in-memory store when dsn is empty.
func Open(dsn string, logger *logging.Logger) (Store, error) {
	if dsn == "" {
		return NewMemory(), nil
	}
	return OpenSQLite(dsn, logger)
}

func (s *SQLite) Credential(ctx context.Context) (string, error) {
	v, _, err := s.get(ctx, KeyCredential)
	return v, err
}

func (s *SQLite) SetCredential(ctx context.Context, token string) error {
	return s.set(ctx, KeyCredential, token)
}

func (s *SQLite) ProtectionEnabled(ctx context.Context) (bool, error) {
	v, ok, err := s.get(ctx, KeyProtection)
	if err != nil || !ok {
		return true, err
	}
	return parseFlag(v), nil
}

func (s *SQLite) SetProtectionEnabled(ctx context.Context, enabled bool) error {
	return s.set(ctx, KeyProtection, strconv.FormatBool(enabled))
}

// Close releases the underlying connection pool.
func (s *SQLite) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLite) get(ctx context.Context, key string) (string, bool, error) {
	var row setting
	err := s.db.WithContext(ctx).Where(&setting{Key: key}).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read setting %s: %w", key, err)
	}
	return row.Value, true, nil
}

func (s *SQLite) set(ctx context.Context, key, value string) error {
	row := setting{Key: key, Value: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("write setting %s: %w", key, err)
	}
	return nil
}
