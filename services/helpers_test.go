package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kalougata/klgt-portal/models"
	"github.com/kalougata/klgt-portal/storage"
)

var testNow = time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*Store, *storage.MemorySlots) {
	t.Helper()
	slots := storage.NewMemorySlots()
	s := NewStore(slots, nil)
	s.SetClock(func() time.Time { return testNow })
	return s, slots
}

func validInput(name string) RegisterInput {
	return RegisterInput{
		Name:        name,
		MotherName:  "Siti Aminah",
		PhoneNumber: "081234567890",
		BirthDate:   "2001-05-17",
		LoginCode:   "abcde1",
	}
}

func mustRegister(t *testing.T, r *Registry, name string) *models.Member {
	t.Helper()
	m, err := r.Register(context.Background(), validInput(name))
	require.NoError(t, err)
	return m
}

func modelsActivity(memberID string) models.PointActivity {
	return models.PointActivity{
		ID:        "manual",
		MemberID:  memberID,
		Points:    1,
		Reason:    "Koreksi",
		Timestamp: testNow.Format(time.RFC3339),
	}
}
