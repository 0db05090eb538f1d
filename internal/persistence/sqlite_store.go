package persistence

import (
	"context"
	"fmt"
	"sync"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/harrylevesque/deviceadmin/internal/models"
	"github.com/harrylevesque/deviceadmin/internal/utils"
)

// SQLiteStore keeps the admin allow-list in a local SQLite database.
type SQLiteStore struct {
	db *gorm.DB
	mu sync.RWMutex
}

// OpenSQLite opens (creating if needed) the database at path and migrates
// the allow-list table.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, utils.Wrap(utils.CodeStorageUnavailable, fmt.Sprintf("open %s", path), err)
	}
	s := &SQLiteStore{db: db}
	if err := s.AutoMigrate(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) AutoMigrate() error {
	if err := s.db.AutoMigrate(&models.AdminEntry{}); err != nil {
		return utils.Wrap(utils.CodeStorageUnavailable, "migrate allow-list", err)
	}
	return nil
}

func (s *SQLiteStore) Contains(ctx context.Context, deviceID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	err := s.db.WithContext(ctx).Model(&models.AdminEntry{}).
		Where("device_id = ?", deviceID).
		Count(&n).Error
	if err != nil {
		return false, utils.Wrap(utils.CodeStorageUnavailable, "query allow-list", err)
	}
	return n > 0, nil
}

// Add inserts entry; an existing row for the same device is left untouched.
func (s *SQLiteStore) Add(ctx context.Context, entry models.AdminEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entry).Error
	if err != nil {
		return utils.Wrap(utils.CodeStorageUnavailable, "insert allow-list", err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]models.AdminEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.AdminEntry
	if err := s.db.WithContext(ctx).Order("granted_at ASC").Find(&out).Error; err != nil {
		return nil, utils.Wrap(utils.CodeStorageUnavailable, "list allow-list", err)
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
