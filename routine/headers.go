package routine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrHeaderValidation is wrapped by every rejection reason ValidateHeaders returns.
var ErrHeaderValidation = errors.New("routine: invalid header")

const (
	maxHeaderKeyLen   = 100
	maxHeaderValueLen = 4096
)

// forbiddenHeaders are header names that would let a caller smuggle a
// credential through headers_json instead of the dedicated auth_mode/
// secret_ref fields. Grounded on
// original_source/api/src/security.py's FORBIDDEN_HEADERS set.
var forbiddenHeaders = map[string]bool{
	"authorization": true,
	"cookie":        true,
	"set-cookie":    true,
	"x-api-key":     true,
	"x-auth-token":  true,
}

// tokenChar reports whether r is a valid RFC-7230 "token" character.
func tokenChar(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	switch r {
	case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}
	return false
}

// ValidateHeaders rejects any header map that is malformed or carries an
// auth-bearing header name, per spec.md §6. It is a pure function: no I/O,
// no state.
func ValidateHeaders(headers map[string]string) error {
	for key, value := range headers {
		if key == "" {
			return fmt.Errorf("%w: empty header name", ErrHeaderValidation)
		}
		if len(key) > maxHeaderKeyLen {
			return fmt.Errorf("%w: header name %q exceeds %d characters", ErrHeaderValidation, key, maxHeaderKeyLen)
		}
		if len(value) > maxHeaderValueLen {
			return fmt.Errorf("%w: header %q value exceeds %d characters", ErrHeaderValidation, key, maxHeaderValueLen)
		}
		for _, r := range key {
			if !tokenChar(r) {
				return fmt.Errorf("%w: header name %q contains an invalid character", ErrHeaderValidation, key)
			}
		}
		if forbiddenHeaders[strings.ToLower(key)] {
			return fmt.Errorf("%w: header %q is reserved for authentication", ErrHeaderValidation, key)
		}
		if strings.ContainsAny(value, "\r\n") {
			return fmt.Errorf("%w: header %q value contains CRLF", ErrHeaderValidation, key)
		}
	}
	return nil
}
