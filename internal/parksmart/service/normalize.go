package service

import "strings"

// Plate length bounds after normalization.
const (
	minPlateLen = 6
	maxPlateLen = 12
)

// NormalizePlate canonicalizes raw recognized text: uppercase, strip every
// character outside [A-Z0-9], reject when the result is shorter than 6 or
// longer than 12 characters. Idempotent — normalizing an already-normalized
// plate returns it unchanged.
func NormalizePlate(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}

	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range strings.ToUpper(raw) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	plate := b.String()
	if len(plate) < minPlateLen || len(plate) > maxPlateLen {
		return "", false
	}
	return plate, true
}
