package models

// PointActivity records a single signed point change for a member.
type PointActivity struct {
	ID        string `json:"id"`
	MemberID  string `json:"memberId"`
	Points    int    `json:"points"`
	Reason    string `json:"reason"`
	Timestamp string `json:"timestamp"`
}
