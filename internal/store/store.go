// Package store persists forum records through gorm.
//
// Postgres is the production database. Tests open the same schema on an
// in-memory SQLite database.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ditto/internal/config"
	"ditto/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("store: not found")

// Store is the gorm-backed forum repository.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Open connects to Postgres using cfg.DSN.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxOpenConns)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// Migrate registers the custom join tables and creates or updates the schema.
func Migrate(db *gorm.DB) error {
	joins := []struct {
		owner any
		field string
		join  any
	}{
		{&model.Subject{}, "Stars", &model.SubjectStar{}},
		{&model.Subject{}, "Mentioned", &model.SubjectMention{}},
		{&model.Board{}, "Admins", &model.BoardAdmin{}},
	}
	for _, j := range joins {
		if err := db.SetupJoinTable(j.owner, j.field, j.join); err != nil {
			return fmt.Errorf("setup join table %s: %w", j.field, err)
		}
	}
	return db.AutoMigrate(
		&model.User{},
		&model.Board{},
		&model.Subject{},
		&model.Comment{},
		&model.Notification{},
		&model.Report{},
		&model.Follow{},
		&model.MessageRequest{},
		&model.Contact{},
	)
}

// Transaction runs fn against a Store bound to one database transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}
