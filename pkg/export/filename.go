package export

import (
	"strings"
	"time"
)

// DateLayout is the date format used in generated filenames.
const DateLayout = "2006-01-02"

// SanitizeName replaces every character that is not an ASCII letter or
// digit with an underscore.
func SanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Filename builds "{sanitized name}_{channel}_{YYYY-MM-DD}.{ext}".
func Filename(name, ch string, date time.Time, ext string) string {
	return SanitizeName(name) + "_" + ch + "_" + date.Format(DateLayout) + "." + ext
}

// ArchiveName builds "{sanitized name}_{YYYY-MM-DD}.zip".
func ArchiveName(name string, date time.Time) string {
	return SanitizeName(name) + "_" + date.Format(DateLayout) + ".zip"
}
