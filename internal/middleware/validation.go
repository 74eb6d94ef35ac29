package middleware

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ValidateQuery validates a chat query.
func ValidateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return errors.New("query cannot be empty")
	}
	if len(query) > 100000 { // ~100KB limit
		return errors.New("query exceeds maximum length")
	}
	if !utf8.ValidString(query) {
		return errors.New("query must be valid UTF-8")
	}
	return nil
}

// ValidateSessionID validates a session identifier.
func ValidateSessionID(id string) error {
	if len(id) == 0 {
		return errors.New("session ID cannot be empty")
	}
	if len(id) > 128 {
		return errors.New("session ID exceeds maximum length")
	}
	if !utf8.ValidString(id) {
		return errors.New("session ID must be valid UTF-8")
	}
	return nil
}

// ValidateFilename validates an uploaded filename.
func ValidateFilename(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("filename cannot be empty")
	}
	if len(name) > 256 {
		return errors.New("filename exceeds maximum length")
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, "/\\") {
		return errors.New("filename must not contain path separators")
	}
	return nil
}
