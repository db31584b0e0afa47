package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalougata/klgt-portal/models"
)

func TestLoad_EmptySlot(t *testing.T) {
	store, _ := newTestStore(t)
	ds, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ds.Members)
	assert.Empty(t, ds.Activities)
	assert.Equal(t, 2025, ds.LastResetYear)
}

func TestLoad_AnnualReset(t *testing.T) {
	store, slots := newTestStore(t)
	ctx := context.Background()

	ds := models.NewDataset(2024)
	ds.Members = []models.Member{{ID: "KLGT-A", Name: "A", Points: 12}, {ID: "KLGT-B", Name: "B", Points: -4}}
	ds.Activities = []models.PointActivity{{ID: "1", MemberID: "KLGT-A", Points: 12, Reason: "x"}}
	require.NoError(t, store.Save(ctx, ds))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2025, got.LastResetYear)
	assert.Empty(t, got.Activities)
	for _, m := range got.Members {
		assert.Zero(t, m.Points)
	}

	// the reset is persisted before returning
	raw, err := slots.Get(ctx, DatasetKey)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"lastResetYear":2025`)

	// a second load in the same year keeps new points
	require.NoError(t, store.Update(ctx, func(ds *models.Dataset) error {
		ds.Members[0].Points = 7
		return nil
	}))
	again, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, again.Members[0].Points)
}

func TestLoad_CorruptBlobFailsClosed(t *testing.T) {
	store, slots := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, slots.Set(ctx, DatasetKey, []byte(`{"members": [oops`)))

	ds, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, ds.Members)

	backup, err := slots.Get(ctx, DatasetKey+".corrupt")
	require.NoError(t, err)
	assert.Equal(t, `{"members": [oops`, string(backup))

	// not overwritten until the next write
	raw, err := slots.Get(ctx, DatasetKey)
	require.NoError(t, err)
	assert.Equal(t, `{"members": [oops`, string(raw))
}

func TestLoad_InvalidShapeFailsClosed(t *testing.T) {
	store, slots := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, slots.Set(ctx, DatasetKey,
		[]byte(`{"members":[{"id":"A"},{"id":"A"}],"activities":[],"lastResetYear":2025}`)))

	ds, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, ds.Members)
}

func TestLoad_LegacyBlobWithoutVersion(t *testing.T) {
	store, slots := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, slots.Set(ctx, DatasetKey,
		[]byte(`{"members":[{"id":"KLGT-A","name":"A","points":3}],"activities":null,"lastResetYear":2025}`)))

	ds, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, ds.Members, 1)
	assert.Equal(t, 3, ds.Members[0].Points)
	assert.NotNil(t, ds.Activities)
	assert.Equal(t, models.DatasetVersion, ds.Version)
}

func TestUpdate_NoWriteOnError(t *testing.T) {
	store, slots := newTestStore(t)
	ctx := context.Background()

	err := store.Update(ctx, func(ds *models.Dataset) error {
		ds.Members = append(ds.Members, models.Member{ID: "KLGT-X"})
		return validationError("nope")
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = slots.Get(ctx, DatasetKey)
	assert.Error(t, err, "nothing is written when the mutation fails")
}

func TestSetClock(t *testing.T) {
	store, _ := newTestStore(t)
	next := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return next })
	assert.Equal(t, next, store.Now())
}
