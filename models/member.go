package models

// Position is the role tag shown on a member's badge.
type Position string

const (
	PositionGoalkeeper   Position = "Goalkeeper"
	PositionDefender     Position = "Defender"
	PositionActiveMember Position = "Anggota Aktif"
	PositionForward      Position = "Forward"
)

// Valid reports whether p is one of the known role tags.
func (p Position) Valid() bool {
	switch p {
	case PositionGoalkeeper, PositionDefender, PositionActiveMember, PositionForward:
		return true
	}
	return false
}

// Member represents a registered community member. Field names follow the
// browser storage blob so exported datasets stay interchangeable.
type Member struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	MotherName  string   `json:"motherName"`
	PhoneNumber string   `json:"phoneNumber"`
	Position    Position `json:"position"`
	Points      int      `json:"points"`
	JoinedAt    string   `json:"joinedAt"`
	AvatarURL   string   `json:"avatarUrl"`
	Bio         string   `json:"bio"`
	LoginCode   string   `json:"loginCode"`
	BirthDate   string   `json:"birthDate"`
}

// Public returns a copy of the member without credential or recovery data.
func (m Member) Public() Member {
	m.LoginCode = ""
	m.MotherName = ""
	return m
}
