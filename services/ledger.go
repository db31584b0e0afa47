package services

import (
	"context"

	"github.com/kalougata/klgt-portal/models"
)

// RecentActivityLimit is the size of the admin activity feed.
const RecentActivityLimit = 10

// ProfileActivityLimit is the number of activities shown on a member profile.
const ProfileActivityLimit = 5

// Ledger is the append-only log of point changes, kept most-recent-first.
type Ledger struct {
	store *Store
}

func NewLedger(store *Store) *Ledger {
	return &Ledger{store: store}
}

// Append records an activity at the head of the ledger.
func (l *Ledger) Append(ctx context.Context, a models.PointActivity) error {
	if a.MemberID == "" {
		return validationError("memberId wajib diisi")
	}
	return l.store.Update(ctx, func(ds *models.Dataset) error {
		prependActivity(ds, a)
		return nil
	})
}

// ForMember returns the activities of one member in ledger order.
func (l *Ledger) ForMember(ctx context.Context, memberID string) ([]models.PointActivity, error) {
	ds, err := l.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return activitiesFor(ds, NormalizeID(memberID)), nil
}

// Recent returns the first n entries of the ledger.
func (l *Ledger) Recent(ctx context.Context, n int) ([]models.PointActivity, error) {
	ds, err := l.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		n = 0
	}
	if n > len(ds.Activities) {
		n = len(ds.Activities)
	}
	out := make([]models.PointActivity, n)
	copy(out, ds.Activities[:n])
	return out, nil
}

func prependActivity(ds *models.Dataset, a models.PointActivity) {
	ds.Activities = append([]models.PointActivity{a}, ds.Activities...)
}

func activitiesFor(ds *models.Dataset, memberID string) []models.PointActivity {
	out := []models.PointActivity{}
	for _, a := range ds.Activities {
		if a.MemberID == memberID {
			out = append(out, a)
		}
	}
	return out
}
