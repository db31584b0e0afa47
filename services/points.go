package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kalougata/klgt-portal/models"
)

// Preset is a named award activity with a fixed point value.
type Preset struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Points int    `json:"points"`
}

// Presets lists the award activities in display order.
var Presets = []Preset{
	{Key: "minsoc", Label: "MINSOC", Points: 5},
	{Key: "futsal", Label: "FUTSAL", Points: 4},
	{Key: "bola", Label: "BOLA", Points: 3},
}

// LookupPreset finds a preset by key or label, case-insensitively.
func LookupPreset(name string) (Preset, bool) {
	name = strings.TrimSpace(name)
	for _, p := range Presets {
		if strings.EqualFold(p.Key, name) || strings.EqualFold(p.Label, name) {
			return p, true
		}
	}
	return Preset{}, false
}

// PointEngine applies point changes and records them in the ledger.
type PointEngine struct {
	store *Store
	log   *zap.Logger
}

func NewPointEngine(store *Store, logger *zap.Logger) *PointEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PointEngine{store: store, log: logger}
}

// Adjust adds delta to the member's points and prepends a matching activity,
// persisting both in one write. Points have no floor.
func (e *PointEngine) Adjust(ctx context.Context, memberID string, delta int, reason string) (*models.PointActivity, error) {
	if delta == 0 {
		return nil, validationError("Jumlah poin tidak boleh nol")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, validationError("Alasan wajib diisi")
	}

	id := NormalizeID(memberID)
	var activity models.PointActivity
	var total int
	err := e.store.Update(ctx, func(ds *models.Dataset) error {
		idx := ds.MemberIndex(id)
		if idx < 0 {
			return notFoundError("ID Anggota tidak ditemukan")
		}
		ds.Members[idx].Points += delta
		total = ds.Members[idx].Points
		activity = models.PointActivity{
			ID:        uuid.NewString(),
			MemberID:  id,
			Points:    delta,
			Reason:    reason,
			Timestamp: e.store.now().UTC().Format(time.RFC3339Nano),
		}
		prependActivity(ds, activity)
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Info("points adjusted",
		zap.String("member_id", id),
		zap.Int("delta", delta),
		zap.Int("total", total),
		zap.String("reason", reason),
	)
	return &activity, nil
}

// AwardPreset credits one of the fixed award activities.
func (e *PointEngine) AwardPreset(ctx context.Context, memberID, preset string) (*models.PointActivity, error) {
	p, ok := LookupPreset(preset)
	if !ok {
		return nil, validationError("Kegiatan %q tidak dikenal", preset)
	}
	return e.Adjust(ctx, memberID, p.Points, "Kegiatan "+p.Label)
}

// Deduct subtracts a free-form amount. amountText must be a positive integer
// and reason must be non-empty.
func (e *PointEngine) Deduct(ctx context.Context, memberID, amountText, reason string) (*models.PointActivity, error) {
	amount, err := strconv.Atoi(strings.TrimSpace(amountText))
	if err != nil || amount <= 0 {
		return nil, validationError("Jumlah poin harus berupa angka positif")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, validationError("Alasan pengurangan wajib diisi")
	}
	return e.Adjust(ctx, memberID, -amount, "Pengurangan: "+reason)
}
