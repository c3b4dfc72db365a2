package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// channelIDRegex matches channel identifiers such as "instagram_post" or "a4-flyer".
var channelIDRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// ValidateChannelID validates a channel identifier.
//
// Channel IDs end up in generated filenames and cache keys, so the accepted
// alphabet is lowercase ASCII letters, digits, underscore and dash, and the
// length is capped at 64 characters.
func ValidateChannelID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "channel id cannot be empty")
	}
	if len(id) > 64 {
		return New(ErrCodeInvalidInput, "channel id too long (max 64 characters)")
	}
	if !channelIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid channel id: %q", id)
	}
	return nil
}

// ValidateLayoutName validates a human-readable layout name.
// Any printable text is accepted; names are sanitized before use in filenames.
func ValidateLayoutName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidName, "layout name cannot be empty")
	}
	if len(name) > 200 {
		return New(ErrCodeInvalidName, "layout name too long (max 200 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "layout name contains control characters")
		}
	}
	return nil
}

// ValidateArtifactID validates an artifact identifier received from a client.
// It rejects anything that could escape a storage directory.
func ValidateArtifactID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "artifact id cannot be empty")
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "artifact id too long (max 128 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "artifact id contains invalid characters")
		}
	}
	for _, pattern := range []string{"..", "/", "\\", "\x00"} {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidInput, "artifact id contains invalid characters: %q", pattern)
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	return nil
}
