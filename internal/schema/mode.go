package schema

import (
	"fmt"
	"strings"
)

// Mode selects how document writes are checked against their template.
type Mode string

const (
	// ModeLenient checks top-level document fields and value shapes only.
	ModeLenient Mode = "lenient"
	// ModeStrict additionally validates variables against the compiled schema.
	ModeStrict Mode = "strict"
)

// ParseMode accepts "lenient", "strict" or "" (lenient), case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeLenient:
		return ModeLenient, nil
	case ModeStrict:
		return ModeStrict, nil
	}
	return "", fmt.Errorf("unknown validation mode %q (want lenient or strict)", s)
}
