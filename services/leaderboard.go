package services

import (
	"context"
	"sort"

	"github.com/kalougata/klgt-portal/models"
)

// Standing is one leaderboard row.
type Standing struct {
	Rank   int           `json:"rank"`
	Member models.Member `json:"member"`
}

// Leaderboard ranks all members by points, highest first. Members with equal
// points keep their registration order and get consecutive ranks.
func Leaderboard(ctx context.Context, store *Store) ([]Standing, error) {
	ds, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	members := make([]models.Member, len(ds.Members))
	copy(members, ds.Members)
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].Points > members[j].Points
	})

	out := make([]Standing, len(members))
	for i, m := range members {
		out[i] = Standing{Rank: i + 1, Member: m.Public()}
	}
	return out, nil
}
