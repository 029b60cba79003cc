package helpers

import (
	"strings"

	"github.com/google/uuid"
)

// Add this function to generate UUIDs
func GenerateUUID() string {
	return uuid.New().String()
}

// BoolFromText parses a configuration boolean attribute. Only the first
// character of the text is tested, case-insensitively, against 't'; any
// other leading character is falsy.
func BoolFromText(text string) bool {
	if text == "" {
		return false
	}
	return strings.EqualFold(text[:1], "t")
}

// BoolToText renders a boolean in the form the reader expects back.
func BoolToText(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
