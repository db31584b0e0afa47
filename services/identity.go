package services

import (
	"fmt"
	"math/rand"
	"strings"
	"unicode"
)

// DeriveID builds a member id from a display name: "<TAG>-" followed by the
// uppercased name with all whitespace removed. When exists reports the id as
// taken, a random three-digit suffix is appended once; the result is not re-checked.
func DeriveID(tag, name string, exists func(id string) bool) string {
	id := tag + "-" + compactName(name)
	if exists != nil && exists(id) {
		id = fmt.Sprintf("%s-%03d", id, rand.Intn(1000))
	}
	return id
}

func compactName(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, strings.ToUpper(strings.TrimSpace(name)))
}

// NormalizeID applies the comparison form used for member ids.
func NormalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// NormalizeName applies the stored form of member and mother names.
func NormalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
