// Package slugx generates the URL path segments used by the public data
// endpoints: random slugs for users and documents, and name-derived slugs
// for groups.
package slugx

import (
	"math/rand/v2"
	"strings"
	"unicode"
)

const slugAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

const (
	minRandomLen = 8
	maxRandomLen = 15
)

// Random returns a random slug of 8-15 lowercase alphanumeric characters.
func Random() string {
	n := minRandomLen + rand.IntN(maxRandomLen-minRandomLen+1)

	var b strings.Builder
	b.Grow(n)
	for range n {
		b.WriteByte(slugAlphabet[rand.IntN(len(slugAlphabet))])
	}
	return b.String()
}

// Slugify lowercases text and replaces every non-alphanumeric rune with a
// hyphen. Returns "" for empty input.
func Slugify(text string) string {
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLower(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}
