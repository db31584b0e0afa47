package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kalougata/klgt-portal/storage"
)

// AdminKey is the slot holding the admin-unlocked flag.
const AdminKey = "klg_admin_active"

// AdminGate guards the scan and adjustment workflow behind a shared passcode.
// The unlocked state persists in its slot until Lock; it never expires.
type AdminGate struct {
	slots    storage.Slots
	passcode string
	log      *zap.Logger
}

func NewAdminGate(slots storage.Slots, passcode string, logger *zap.Logger) *AdminGate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminGate{slots: slots, passcode: passcode, log: logger}
}

// Unlock opens the gate when passcode matches exactly.
func (g *AdminGate) Unlock(ctx context.Context, passcode string) error {
	if g.passcode == "" || subtle.ConstantTimeCompare([]byte(passcode), []byte(g.passcode)) != 1 {
		g.log.Warn("admin unlock rejected")
		return authError("Password Admin salah")
	}
	if err := g.slots.Set(ctx, AdminKey, []byte("true")); err != nil {
		return fmt.Errorf("write admin flag: %w", err)
	}
	g.log.Info("admin unlocked")
	return nil
}

// Lock closes the gate.
func (g *AdminGate) Lock(ctx context.Context) error {
	if err := g.slots.Delete(ctx, AdminKey); err != nil {
		return fmt.Errorf("clear admin flag: %w", err)
	}
	return nil
}

func (g *AdminGate) IsUnlocked(ctx context.Context) (bool, error) {
	raw, err := g.slots.Get(ctx, AdminKey)
	if errors.Is(err, storage.ErrSlotNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read admin flag: %w", err)
	}
	return string(raw) == "true", nil
}
