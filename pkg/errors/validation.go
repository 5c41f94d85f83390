package errors

import (
	"strings"
	"unicode"
)

// ValidateNodeName validates a node name for a graph definition.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters or whitespace
//   - Maximum length of 256 characters
//
// Definition files address nodes by name in table keys, so names must stay
// printable and unambiguous.
func ValidateNodeName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "node name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidName, "node name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "node name %q contains control characters", name)
		}
		if unicode.IsSpace(r) {
			return New(ErrCodeInvalidName, "node name %q contains whitespace", name)
		}
	}

	return nil
}

// ValidateSourceSpec validates a raw source specification before it is stored
// on a node definition. Resolution happens later; this only rejects inputs
// that no resolver could ever accept.
func ValidateSourceSpec(spec string) error {
	if strings.TrimSpace(spec) == "" {
		return New(ErrCodeInvalidInput, "source specification cannot be empty")
	}

	for _, r := range spec {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "source specification %q contains invalid characters", spec)
		}
	}

	return nil
}
