package docstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type document struct {
	Collection string `gorm:"primaryKey;size:64"`
	ID         string `gorm:"primaryKey;size:64"`
	Body       string `gorm:"type:text;not null"`
	UpdatedAt  time.Time
}

func (document) TableName() string { return "documents" }

type sqliteStore struct {
	db *gorm.DB
}

// NewSQLite opens a SQLite database through gorm and migrates the documents
// table. SQL logging goes through log at warn level.
func NewSQLite(dsn string, log zerolog.Logger) (Store, error) {
	if dsn == "" {
		dsn = "teamtasks.db"
	}
	if err := ensureDirForSQLite(dsn); err != nil {
		return nil, err
	}

	dbLogger := logger.New(
		&log,
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         dbLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&document{}); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	return &sqliteStore{db: db}, nil
}

// ensureDirForSQLite creates the parent dir of a file DSN.
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

func (s *sqliteStore) Get(ctx context.Context, collection, id string) ([]byte, error) {
	var doc document
	err := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		First(&doc).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrNotFound
	case err != nil:
		return nil, err
	}
	return []byte(doc.Body), nil
}

// Find pushes non-empty string equalities down to json_extract and checks
// the rest of the filter on the decoded rows.
func (s *sqliteStore) Find(ctx context.Context, collection string, f Filter) ([][]byte, error) {
	norm, err := normalize(f)
	if err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).Where("collection = ?", collection)
	for k, v := range norm {
		if str, ok := v.(string); ok && str != "" {
			q = q.Where("json_extract(body, ?) = ?", "$."+k, str)
		}
	}

	var docs []document
	if err := q.Order("id").Find(&docs).Error; err != nil {
		return nil, err
	}
	bodies := make([][]byte, 0, len(docs))
	for _, d := range docs {
		bodies = append(bodies, []byte(d.Body))
	}
	return filterBodies(bodies, norm)
}

func (s *sqliteStore) Create(ctx context.Context, collection, id string, body []byte) error {
	err := s.db.WithContext(ctx).Create(&document{
		Collection: collection,
		ID:         id,
		Body:       string(body),
	}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConflict
	}
	return err
}

func (s *sqliteStore) Put(ctx context.Context, collection, id string, body []byte) error {
	res := s.db.WithContext(ctx).
		Model(&document{}).
		Where("collection = ? AND id = ?", collection, id).
		Updates(map[string]any{"body": string(body), "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sqliteStore) Delete(ctx context.Context, collection, id string) error {
	res := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		Delete(&document{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sqliteStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *sqliteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
