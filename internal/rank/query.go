package rank

import (
	"strings"
	"unicode/utf8"

	"github.com/kamusis/orient-cli/internal/profile"
)

const (
	maxQueryBytes = 512
	maxInterests  = 3
	fallbackQuery = "orientation formation"
)

// BuildQuery assembles the similarity query from the objective, the
// preferred domains, up to three interests and the requested cities.
// The result is whitespace-normalized and at most 512 bytes.
func BuildQuery(p profile.StudentProfile, cities []string) string {
	var parts []string
	parts = append(parts, p.Objective)
	parts = append(parts, p.PreferredDomains...)
	interests := p.Interests
	if len(interests) > maxInterests {
		interests = interests[:maxInterests]
	}
	parts = append(parts, interests...)
	parts = append(parts, cities...)

	q := strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
	if q == "" {
		return fallbackQuery
	}
	if len(q) > maxQueryBytes {
		q = q[:maxQueryBytes]
		for !utf8.ValidString(q) {
			q = q[:len(q)-1]
		}
		q = strings.TrimSpace(q)
	}
	return q
}
