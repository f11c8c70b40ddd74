package logger

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Length caps for values copied from requests into log fields
const (
	MaxPathLength          = 500
	MaxUserIDLength        = 128
	MaxErrorMessageLength  = 1000
	MaxGeneralStringLength = 2000
)

// SanitizePath prepares a request path for logging
func SanitizePath(path string) string {
	return SanitizeString(path, MaxPathLength)
}

// SanitizeString repairs invalid UTF-8, drops control characters and cuts
// s to maxLength bytes on a rune boundary. Line breaks and tabs become
// spaces so a value cannot forge a log line.
func SanitizeString(s string, maxLength int) string {
	if s == "" {
		return ""
	}
	if maxLength <= 0 {
		maxLength = MaxGeneralStringLength
	}
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}

	var b strings.Builder
	b.Grow(min(len(s), maxLength+3))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			r = ' '
		case !unicode.IsPrint(r):
			continue
		}
		if b.Len()+utf8.RuneLen(r) > maxLength {
			b.WriteString("...")
			break
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SanitizeError prepares an error message for logging
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeString(err.Error(), MaxErrorMessageLength)
}

// SanitizeUserID prepares a user identifier for logging
func SanitizeUserID(userID string) string {
	return SanitizeString(userID, MaxUserIDLength)
}
