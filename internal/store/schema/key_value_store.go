package schema

import (
	"time"

	"gorm.io/datatypes"
)

// KeyValueStore stores arbitrary JSON documents keyed by name.
// The indexer keeps its run state (watermark and processed unit ids) here.
type KeyValueStore struct {
	Key       string         `gorm:"primaryKey;type:text"`
	Value     datatypes.JSON `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
}

func (KeyValueStore) TableName() string {
	return "key_value_store"
}
