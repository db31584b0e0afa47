package models

import "time"

// StorageSlot is one key-value slot persisted in the SQL backend.
type StorageSlot struct {
	Key       string    `gorm:"primaryKey;size:191" json:"key"`
	Value     []byte    `gorm:"type:longblob;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName pins the table name regardless of naming strategy.
func (StorageSlot) TableName() string {
	return "storage_slots"
}
