package domain

import "strings"

// NormalizePhone converts a raw phone string to the canonical +7XXXXXXXXXX
// form used as the unique user key. Accepted raw shapes: bare 10-digit
// (9XXXXXXXXX), 11-digit with leading 8 or 7, and already-canonical +7
// numbers, with any punctuation in between. Everything else is rejected.
func NormalizePhone(raw string) (string, error) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	cleaned := digits.String()

	switch {
	case len(cleaned) == 11 && cleaned[0] == '8':
		cleaned = "7" + cleaned[1:]
	case len(cleaned) == 10 && cleaned[0] != '7':
		cleaned = "7" + cleaned
	}

	if len(cleaned) != 11 || cleaned[0] != '7' {
		return "", ErrInvalidPhone
	}
	return "+" + cleaned, nil
}
