// Package valueobject holds validation helpers shared by the aggregate domain packages.
package valueobject

import (
	"strings"
	"unicode/utf8"

	"multi-tenant-crm/backend/internal/platform/errs"
)

// MaxTextLength is the maximum length, in characters, of names and titles.
const MaxTextLength = 255

// Text trims raw and validates it as a required name or title. Empty input returns empty;
// input longer than max characters returns *errs.TooLongError for field.
func Text(field, raw string, max int, empty error) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", empty
	}
	if n := utf8.RuneCountInString(s); n > max {
		return "", &errs.TooLongError{Field: field, Max: max, Length: n}
	}
	return s, nil
}

// Verbatim validates raw like Text but returns it unmodified. Blank input returns empty.
func Verbatim(field, raw string, max int, empty error) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", empty
	}
	if n := utf8.RuneCountInString(raw); n > max {
		return "", &errs.TooLongError{Field: field, Max: max, Length: n}
	}
	return raw, nil
}

// OptionalText is Text for optional fields: nil stays nil.
func OptionalText(field string, raw *string, max int, empty error) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	s, err := Text(field, *raw, max, empty)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
