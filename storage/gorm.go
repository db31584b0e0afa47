package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kalougata/klgt-portal/models"
)

// GormSlots persists slots as rows of the storage_slots table.
type GormSlots struct {
	db *gorm.DB
}

// NewGormSlots expects the StorageSlot model to be migrated already.
func NewGormSlots(db *gorm.DB) *GormSlots {
	return &GormSlots{db: db}
}

func (g *GormSlots) Get(ctx context.Context, key string) ([]byte, error) {
	var slot models.StorageSlot
	err := g.db.WithContext(ctx).Where(map[string]interface{}{"key": key}).First(&slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, err
	}
	return slot.Value, nil
}

func (g *GormSlots) Set(ctx context.Context, key string, value []byte) error {
	now := time.Now()
	// Upsert so the slot write is a single statement.
	return g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"value": value, "updated_at": now}),
	}).Create(&models.StorageSlot{Key: key, Value: value, CreatedAt: now, UpdatedAt: now}).Error
}

func (g *GormSlots) Delete(ctx context.Context, key string) error {
	return g.db.WithContext(ctx).Where(map[string]interface{}{"key": key}).Delete(&models.StorageSlot{}).Error
}
