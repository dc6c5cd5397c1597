// Package joincode generates and normalizes the short human-readable codes
// that identify groups.
package joincode

import (
	"math/rand/v2"
	"strings"
)

// Alphabet is the 32-symbol set codes are drawn from. Visually ambiguous
// characters (0/O, 1/I) are excluded.
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// DefaultLength is the standard join code length.
const DefaultLength = 6

// Generate returns a code of DefaultLength characters.
func Generate() string {
	return GenerateN(DefaultLength)
}

// GenerateN returns a code of n characters drawn independently and uniformly
// from Alphabet. Codes are not cryptographically secure; uniqueness is
// enforced by the store, not by the generator.
func GenerateN(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = Alphabet[rand.IntN(len(Alphabet))]
	}
	return string(b)
}

// Normalize trims surrounding whitespace and uppercases a user-supplied code.
// All lookups go through the normalized form.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Valid reports whether a normalized code is non-empty and drawn entirely
// from Alphabet.
func Valid(code string) bool {
	if code == "" {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !strings.ContainsRune(Alphabet, rune(code[i])) {
			return false
		}
	}
	return true
}
