package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "andi", "KLGT-ANDI"},
		{"spaces removed", "  Budi  Santoso ", "KLGT-BUDISANTOSO"},
		{"tabs removed", "a\tb", "KLGT-AB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveID("KLGT", tt.in, nil))
		})
	}
}

func TestDeriveID_Collision(t *testing.T) {
	taken := func(id string) bool { return id == "KLGT-ANDI" }
	assert.Regexp(t, `^KLGT-ANDI-\d{3}$`, DeriveID("KLGT", "Andi", taken))
	assert.Equal(t, "KLGT-BUDI", DeriveID("KLGT", "Budi", taken))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "KLGT-ANDI", NormalizeID(" klgt-andi "))
	assert.Equal(t, "SITI AMINAH", NormalizeName(" siti aminah"))
}
