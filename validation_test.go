package main

import (
	"strings"
	"testing"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty falls back", in: "", want: "anon"},
		{name: "whitespace only falls back", in: "   ", want: "anon"},
		{name: "trimmed", in: "  ada  ", want: "ada"},
		{name: "control characters stripped", in: "a\x00b\nc", want: "abc"},
		{name: "only control characters falls back", in: "\x00\x1f", want: "anon"},
		{name: "clamped to 32 runes", in: strings.Repeat("x", 50), want: strings.Repeat("x", 32)},
		{name: "unicode kept", in: "Zoë ☁️", want: "Zoë ☁️"},
	}
	for _, tc := range tests {
		if got := sanitizeName(tc.in); got != tc.want {
			t.Fatalf("%s: sanitizeName(%q) = %q, want %q", tc.name, tc.in, got, tc.want)
		}
	}
}
