package models

import "strings"

// NormalizeKey converts free text to its canonical key form: lowercase,
// every run of characters outside [a-z0-9] becomes a single underscore,
// leading/trailing underscores trimmed. Pure and total; "" stays "".
func NormalizeKey(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))

	prevSep := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			prevSep = false
			continue
		}
		if !prevSep {
			b.WriteByte('_')
			prevSep = true
		}
	}
	return strings.Trim(b.String(), "_")
}

// CanonicalKey derives the store identity for a card from the fixed ordered
// field subset: year, set, player, card number. Empty fields are skipped.
//
// Two distinct physical cards can reduce to the same key; the store treats
// the key as best-effort identity, not as a uniqueness guarantee.
func CanonicalKey(year, set, player, number string) string {
	parts := make([]string, 0, 4)
	for _, raw := range []string{year, set, player, number} {
		if p := NormalizeKey(raw); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "_")
}
