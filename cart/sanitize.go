package cart

import (
	"strings"
	"unicode"
)

const maxNameLength = 100

// SanitizeName strips control and markup characters from a product
// display name and caps its length. Product names arrive from the
// catalog boundary and are echoed back into API responses, so they are
// cleaned where they enter the cart.
func SanitizeName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsControl(r):
			return -1
		case r == '<' || r == '>':
			return -1
		}
		return r
	}, name)
	cleaned = strings.TrimSpace(cleaned)
	runes := []rune(cleaned)
	if len(runes) > maxNameLength {
		cleaned = string(runes[:maxNameLength])
	}
	return cleaned
}
