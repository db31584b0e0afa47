package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kalougata/klgt-portal/models"
	"github.com/kalougata/klgt-portal/storage"
)

// DatasetKey is the slot holding the serialized dataset.
const DatasetKey = "bolacomm_data"

// Store loads and saves the whole dataset as one blob and applies the annual
// point reset on every load. All access goes through a single mutex so each
// operation runs to completion before the next one starts.
type Store struct {
	slots storage.Slots
	log   *zap.Logger
	now   func() time.Time
	mu    sync.Mutex
}

// NewStore creates a store over the given slot backend.
func NewStore(slots storage.Slots, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{slots: slots, log: logger, now: time.Now}
}

// SetClock replaces the time source used for the reset year and timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// Now returns the store's current time.
func (s *Store) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now()
}

// Load returns the current dataset. A missing slot yields an empty dataset;
// a malformed one is set aside and treated as empty.
func (s *Store) Load(ctx context.Context) (*models.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

// Save overwrites the stored dataset.
func (s *Store) Save(ctx context.Context, ds *models.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx, ds)
}

// Update loads the dataset, applies fn and saves once. Nothing is written when fn fails.
// fn must not call back into the store.
func (s *Store) Update(ctx context.Context, fn func(ds *models.Dataset) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds, err := s.loadLocked(ctx)
	if err != nil {
		return err
	}
	if err := fn(ds); err != nil {
		return err
	}
	return s.saveLocked(ctx, ds)
}

func (s *Store) loadLocked(ctx context.Context) (*models.Dataset, error) {
	year := s.now().Year()

	raw, err := s.slots.Get(ctx, DatasetKey)
	if errors.Is(err, storage.ErrSlotNotFound) {
		return models.NewDataset(year), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	ds, err := decodeDataset(raw)
	if err != nil {
		s.log.Warn("stored dataset is malformed, starting empty", zap.Error(err), zap.Int("bytes", len(raw)))
		if berr := s.slots.Set(ctx, DatasetKey+".corrupt", raw); berr != nil {
			s.log.Error("failed to back up malformed dataset", zap.Error(berr))
		}
		return models.NewDataset(year), nil
	}

	if ds.LastResetYear < year {
		applyAnnualReset(ds, year)
		if err := s.saveLocked(ctx, ds); err != nil {
			return nil, fmt.Errorf("persist annual reset: %w", err)
		}
		s.log.Info("annual point reset applied", zap.Int("year", year), zap.Int("members", len(ds.Members)))
	}
	return ds, nil
}

func (s *Store) saveLocked(ctx context.Context, ds *models.Dataset) error {
	ds.Version = models.DatasetVersion
	b, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	if err := s.slots.Set(ctx, DatasetKey, b); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}
	return nil
}

func decodeDataset(raw []byte) (*models.Dataset, error) {
	var ds models.Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, err
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	if ds.Members == nil {
		ds.Members = []models.Member{}
	}
	if ds.Activities == nil {
		ds.Activities = []models.PointActivity{}
	}
	ds.Version = models.DatasetVersion
	return &ds, nil
}

// applyAnnualReset zeroes every member's points, clears the ledger and advances the year.
func applyAnnualReset(ds *models.Dataset, year int) {
	for i := range ds.Members {
		ds.Members[i].Points = 0
	}
	ds.Activities = []models.PointActivity{}
	ds.LastResetYear = year
}
