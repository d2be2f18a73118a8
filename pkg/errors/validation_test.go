package errors

import (
	"strings"
	"testing"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid relative", "examples/bubble.toml", false},
		{"valid absolute", "/tmp/tree.zt", false},
		{"valid parent", "../model.json", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 5000), true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateTreeID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "6ba7b810-9dad-11d1-80b4-00c04fd430c8", false},

		{"empty", "", true},
		{"garbage", "not-a-uuid", true},
		{"truncated", "6ba7b810-9dad-11d1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ValidateTreeID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateTreeID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && id.String() != tt.input {
				t.Errorf("ValidateTreeID(%q) = %s", tt.input, id)
			}
		})
	}
}

func TestValidateLimit(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    uint64
		wantErr bool
	}{
		{"default", "", 42, false},
		{"zero", "0", 0, false},
		{"number", "150", 150, false},
		{"spaces", " 7 ", 7, false},

		{"negative", "-1", 0, true},
		{"word", "far", 0, true},
		{"too large", "18446744073709551615", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateLimit(tt.input, 42)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateLimit(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidLimit) {
				t.Errorf("ValidateLimit(%q) returned wrong error code: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ValidateLimit(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateSeed(t *testing.T) {
	tests := []struct {
		input string
		code  Code
	}{
		{"0", ""},
		{"3", ""},
		{"4", ErrCodeSeedNotFound},
		{"-1", ErrCodeSeedNotFound},
		{"x", ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ValidateSeed(tt.input, 4)
			if got := GetCode(err); got != tt.code {
				t.Errorf("ValidateSeed(%q) code = %q, want %q", tt.input, got, tt.code)
			}
		})
	}
}

func TestValidateFormat(t *testing.T) {
	got, err := ValidateFormat(".TOML", "toml", "json")
	if err != nil || got != "toml" {
		t.Errorf("ValidateFormat(.TOML) = %q, %v", got, err)
	}
	if _, err := ValidateFormat("yaml", "toml", "json"); !Is(err, ErrCodeInvalidFormat) {
		t.Errorf("ValidateFormat(yaml) error = %v", err)
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidWorkload,
		ErrCodeInvalidFormat,
		ErrCodeInvalidPath,
		ErrCodeInvalidLimit,
		ErrCodeNotFound,
		ErrCodeTreeNotFound,
		ErrCodeSeedNotFound,
		ErrCodeCorruptStore,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
