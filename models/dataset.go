package models

import "fmt"

// DatasetVersion is the schema version written by this build.
const DatasetVersion = 1

// Dataset is the whole persisted application state, stored as one blob.
// Members keep insertion order; Activities are most-recent-first.
type Dataset struct {
	Version       int             `json:"version"`
	Members       []Member        `json:"members"`
	Activities    []PointActivity `json:"activities"`
	LastResetYear int             `json:"lastResetYear"`
}

// NewDataset returns an empty dataset tagged with year.
func NewDataset(year int) *Dataset {
	return &Dataset{
		Version:       DatasetVersion,
		Members:       []Member{},
		Activities:    []PointActivity{},
		LastResetYear: year,
	}
}

// Validate checks the structural shape of a decoded dataset.
// Blobs written before versioning carry version 0 and are accepted.
func (d *Dataset) Validate() error {
	if d.Version < 0 || d.Version > DatasetVersion {
		return fmt.Errorf("unsupported dataset version %d", d.Version)
	}
	if d.LastResetYear <= 0 {
		return fmt.Errorf("invalid lastResetYear %d", d.LastResetYear)
	}
	seen := make(map[string]bool, len(d.Members))
	for i, m := range d.Members {
		if m.ID == "" {
			return fmt.Errorf("member %d has empty id", i)
		}
		if seen[m.ID] {
			return fmt.Errorf("duplicate member id %s", m.ID)
		}
		seen[m.ID] = true
	}
	for i, a := range d.Activities {
		if a.MemberID == "" {
			return fmt.Errorf("activity %d has empty memberId", i)
		}
	}
	return nil
}

// MemberIndex returns the position of the member with id, or -1.
func (d *Dataset) MemberIndex(id string) int {
	for i := range d.Members {
		if d.Members[i].ID == id {
			return i
		}
	}
	return -1
}
