package runner

import (
	"errors"
	"strings"
	"testing"
)

func TestSanitizeInput_SizeLimit(t *testing.T) {
	limit := DefaultMaxInputSize

	tests := []struct {
		name      string
		inputSize int
		wantErr   bool
	}{
		{"Under Limit", limit - 1, false},
		{"Exact Limit", limit, false},
		{"Over Limit", limit + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := strings.Repeat("1", tt.inputSize)
			_, err := SanitizeInput(input)
			if tt.wantErr != (err != nil) {
				t.Errorf("SanitizeInput() size=%d err=%v, wantErr=%v", tt.inputSize, err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeInput_EnvOverride(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "4")

	if _, err := SanitizeInput("1234"); err != nil {
		t.Errorf("unexpected error at limit: %v", err)
	}
	if _, err := SanitizeInput("12345"); !errors.Is(err, ErrInputTooLarge) {
		t.Errorf("expected ErrInputTooLarge, got %v", err)
	}
	if _, err := SanitizeInputLimit("12345", 10); err != nil {
		t.Errorf("explicit limit should win over env: %v", err)
	}
}

func TestSanitizeInput_ControlChars(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Normal Keys", "12+3=", "12+3="},
		{"Safe Controls", "1\t2", "1\t2"},
		{"ANSI Code", "\x1b[31m7\x1b[0m", "[31m7[0m"},
		{"Null Byte", "4\x005", "45"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeInput(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("SanitizeInput(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSanitizeInput_InvalidUTF8(t *testing.T) {
	if _, err := SanitizeInput("1\xff2"); !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("expected ErrInvalidUTF8, got %v", err)
	}
}
