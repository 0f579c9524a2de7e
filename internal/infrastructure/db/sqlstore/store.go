// Package sqlstore keeps one row per collection in a SQL table, through gorm.
// DATABASE_URL selects the dialect: sqlite://<path> or postgres://<dsn>.
package sqlstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/scrumsquad/feedback-board/internal/core/ports"
)

type collectionRow struct {
	Kind      string `gorm:"primaryKey;size:32"`
	Payload   string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (collectionRow) TableName() string { return "collections" }

type Store struct {
	db *gorm.DB
}

// Dialector maps a DATABASE_URL to a gorm dialector.
func Dialector(url string) (gorm.Dialector, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return postgres.Open(url), nil
	case strings.HasPrefix(url, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(url, "sqlite://")), nil
	default:
		return nil, fmt.Errorf("unsupported DATABASE_URL %q: must start with postgres:// or sqlite://", url)
	}
}

// Open connects, migrates the collections table and returns the store.
func Open(ctx context.Context, url string) (*Store, error) {
	dialector, err := Dialector(url)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	if err := db.WithContext(ctx).AutoMigrate(&collectionRow{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate collections: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) LoadAll(ctx context.Context, kind ports.Kind) ([]json.RawMessage, error) {
	var row collectionRow
	err := s.db.WithContext(ctx).Where("kind = ?", string(kind)).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", kind, err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal([]byte(row.Payload), &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	if records == nil {
		records = []json.RawMessage{}
	}
	return records, nil
}

func (s *Store) SaveAll(ctx context.Context, kind ports.Kind, records []json.RawMessage) error {
	if records == nil {
		records = []json.RawMessage{}
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}

	row := collectionRow{Kind: string(kind), Payload: string(payload), UpdatedAt: time.Now().UTC()}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "kind"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save %s: %w", kind, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
