package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kalougata/klgt-portal/models"
	"github.com/kalougata/klgt-portal/storage"
)

// SessionKey is the slot holding the logged-in member snapshot.
const SessionKey = "klg_session"

// Session is the single process-wide "current member" record. It stores a
// full snapshot, which can go stale until the next login or profile edit.
type Session struct {
	slots storage.Slots
}

func NewSession(slots storage.Slots) *Session {
	return &Session{slots: slots}
}

// Current returns the session snapshot, or nil when nobody is logged in.
// An unreadable snapshot is treated as logged out.
func (s *Session) Current(ctx context.Context) (*models.Member, error) {
	raw, err := s.slots.Get(ctx, SessionKey)
	if errors.Is(err, storage.ErrSlotNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var m models.Member
	if err := json.Unmarshal(raw, &m); err != nil || m.ID == "" {
		return nil, nil
	}
	return &m, nil
}

// Set replaces the session with a snapshot of m.
func (s *Session) Set(ctx context.Context, m *models.Member) error {
	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.slots.Set(ctx, SessionKey, b); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Clear logs the current member out.
func (s *Session) Clear(ctx context.Context) error {
	if err := s.slots.Delete(ctx, SessionKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
