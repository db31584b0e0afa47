package storage

import (
	"fmt"
	"strings"

	"github.com/kalougata/klgt-portal/config"
	"github.com/kalougata/klgt-portal/models"
	"github.com/kalougata/klgt-portal/utils"
)

// Open builds the slot backend selected by cfg.StorageDriver.
func Open(cfg config.AppConfig) (Slots, error) {
	var slots Slots
	switch strings.ToLower(cfg.StorageDriver) {
	case "memory":
		slots = NewMemorySlots()
	case "redis":
		slots = NewRedisSlots(utils.GetRedis())
	case "database", "":
		slots = NewGormSlots(config.InitDatabase(&models.StorageSlot{}))
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
	return Prefixed(slots, cfg.StorageKeyPrefix), nil
}
