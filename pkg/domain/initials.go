package domain

import (
	"strings"
	"unicode"

	dErrors "presence/pkg/domain-errors"
)

const maxInitialsLength = 10

// Initials identifies a team member across the roster, leave bookings and
// attendance records. Upstream systems disagree on casing and padding, so
// every comparison goes through Key.
//
// Usage: construct via ParseInitials at trust boundaries; the zero value
// means "no person".
type Initials string

// NormalizeInitials is the single normalization rule for person identifiers:
// surrounding whitespace is dropped and the result is lower-cased.
func NormalizeInitials(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ParseInitials validates an identifier from external input. The display
// form keeps the caller's casing but loses surrounding whitespace.
func ParseInitials(s string) (Initials, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "initials are required")
	}
	if len(trimmed) > maxInitialsLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "initials must be at most 10 characters")
	}
	for _, r := range trimmed {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "initials must be letters or digits")
		}
	}
	return Initials(trimmed), nil
}

// Key is the normalized comparison key.
func (i Initials) Key() string {
	return NormalizeInitials(string(i))
}

// Matches reports whether raw refers to the same person.
func (i Initials) Matches(raw string) bool {
	return i.Key() != "" && i.Key() == NormalizeInitials(raw)
}

func (i Initials) String() string {
	return strings.TrimSpace(string(i))
}

// IsNil returns true when no person is identified.
func (i Initials) IsNil() bool {
	return i.Key() == ""
}
