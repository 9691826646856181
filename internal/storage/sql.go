package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/minimarket-client/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormProvider interface {
	DB() *gorm.DB
}

// SQLStore keeps profile state in the kv_entries table.
type SQLStore struct {
	db      gormProvider
	profile string
}

func NewSQLStore(db gormProvider, profile string) (*SQLStore, error) {
	if db == nil {
		return nil, fmt.Errorf("db client required")
	}
	if err := validateKey(profile); err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	return &SQLStore{db: db, profile: profile}, nil
}

func (s *SQLStore) Save(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if value == nil {
		value = []byte{}
	}
	entry := models.KVEntry{
		Profile:   s.profile,
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}
	return s.db.DB().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "profile"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entry).Error
}

func (s *SQLStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	if err := validateKey(key); err != nil {
		return nil, false, err
	}
	var entry models.KVEntry
	err := s.db.DB().WithContext(ctx).
		Where(&models.KVEntry{Profile: s.profile, Key: key}).
		Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return entry.Value, true, nil
}

func (s *SQLStore) Remove(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return s.db.DB().WithContext(ctx).
		Where(&models.KVEntry{Profile: s.profile, Key: key}).
		Delete(&models.KVEntry{}).Error
}
