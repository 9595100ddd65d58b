package naming

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// fileNameReplacer strips filesystem-reserved characters (Windows and Unix).
var fileNameReplacer = strings.NewReplacer(
	"<", "",
	">", "",
	":", "",
	"\"", "",
	"/", "",
	"\\", "",
	"|", "",
	"?", "",
	"*", "",
)

// SanitizeFileName normalizes a name to NFC, removes reserved characters, and
// trims surrounding whitespace and dots. Sanitizing is idempotent. An empty
// result means nothing usable survived; callers choose their own fallback.
func SanitizeFileName(name string) string {
	sanitized := norm.NFC.String(name)
	sanitized = fileNameReplacer.Replace(sanitized)
	return strings.Trim(sanitized, " .")
}

// TruncateFileName shortens a filename to maxLength bytes while preserving the
// extension. Names already within the limit are returned unchanged.
func TruncateFileName(name string, maxLength int) string {
	if maxLength <= 0 || len(name) <= maxLength {
		return name
	}
	ext := ""
	if idx := strings.LastIndexByte(name, '.'); idx > 0 {
		ext = name[idx:]
	}
	stem := strings.TrimSuffix(name, ext)
	available := maxLength - len(ext)
	if available <= 0 {
		return cutAtRune(name, maxLength)
	}
	if len(stem) > available {
		stem = cutAtRune(stem, available)
	}
	return stem + ext
}

// cutAtRune trims s to at most limit bytes without splitting a rune.
func cutAtRune(s string, limit int) string {
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
