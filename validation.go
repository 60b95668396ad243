package main

import (
	"strings"
	"unicode"
)

const (
	maxNameRunes = 32
	defaultName  = "anon"
)

// sanitizeName makes a player-supplied name safe to store and display. Names
// are untrusted but only displayed, so this trims, strips control characters,
// clamps the length, and falls back to a default rather than rejecting.
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)

	cleaned := make([]rune, 0, len(name))
	for _, r := range name {
		if unicode.IsControl(r) {
			continue
		}
		cleaned = append(cleaned, r)
		if len(cleaned) == maxNameRunes {
			break
		}
	}

	if len(cleaned) == 0 {
		return defaultName
	}
	return string(cleaned)
}
