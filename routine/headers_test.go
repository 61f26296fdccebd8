package routine

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateHeaders(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		wantErr bool
	}{
		{"nil map", nil, false},
		{"empty map", map[string]string{}, false},
		{"plain header", map[string]string{"X-Custom": "value"}, false},
		{"empty name", map[string]string{"": "value"}, true},
		{"forbidden authorization", map[string]string{"Authorization": "Bearer xyz"}, true},
		{"forbidden case-insensitive", map[string]string{"AUTHORIZATION": "x"}, true},
		{"forbidden cookie", map[string]string{"Cookie": "a=b"}, true},
		{"forbidden x-api-key", map[string]string{"X-Api-Key": "secret"}, true},
		{"invalid char in name", map[string]string{"X Custom": "value"}, true},
		{"CRLF in value", map[string]string{"X-Custom": "a\r\nInjected: yes"}, true},
		{"name too long", map[string]string{strings.Repeat("a", 101): "value"}, true},
		{"value too long", map[string]string{"X-Custom": strings.Repeat("a", 4097)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHeaders(tt.headers)
			if tt.wantErr && err == nil {
				t.Fatalf("ValidateHeaders(%v) = nil, want error", tt.headers)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("ValidateHeaders(%v) = %v, want nil", tt.headers, err)
			}
			if tt.wantErr && !errors.Is(err, ErrHeaderValidation) {
				t.Fatalf("ValidateHeaders(%v) error = %v, want wrapping ErrHeaderValidation", tt.headers, err)
			}
		})
	}
}
