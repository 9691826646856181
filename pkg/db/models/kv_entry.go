package models

import "time"

// KVEntry is one persisted key of a storefront profile.
type KVEntry struct {
	Profile   string    `gorm:"column:profile;primaryKey;size:64"`
	Key       string    `gorm:"column:key;primaryKey;size:128"`
	Value     []byte    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (KVEntry) TableName() string {
	return "kv_entries"
}
