package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// CanonicalText returns the text used for embeddings generation.
func CanonicalText(e Entry) string {
	parts := []string{
		"formation: " + e.Name,
		"etablissement: " + e.Institution + " (" + e.City + ")",
		"type: " + string(e.Category),
	}
	if e.Domain != "" {
		parts = append(parts, "domaine: "+e.Domain)
	}
	if e.Text != "" {
		parts = append(parts, "description: "+e.Text)
	}
	if len(e.Outcomes) > 0 {
		parts = append(parts, "debouches: "+strings.Join(e.Outcomes, ", "))
	}
	if len(e.Skills) > 0 {
		parts = append(parts, "competences: "+strings.Join(e.Skills, ", "))
	}
	return strings.Join(parts, "\n")
}

// TextHash returns a sha256 hash (hex) of the canonical text.
func TextHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
