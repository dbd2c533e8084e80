// Package clean normalizes the untrusted URL and text fields that come back
// from the forum API before they reach the UI.
package clean

import (
	"fmt"
	"strings"
	"time"
)

// imageSuffixes is the allow-list of file extensions treated as displayable.
// Matching is case-sensitive.
var imageSuffixes = []string{
	".jpg", ".jpeg", ".png", ".gif", ".eps", ".tiff", ".raw",
	".pdf", ".psd", ".bmp", ".webp", ".svg", ".amp", ".xcf",
	".jfif", ".pjpeg", ".pjp",
}

// IsDisplayableImageURL reports whether u ends with an allow-listed image
// extension or carries a format=jpg / format=png query hint.
func IsDisplayableImageURL(u string) bool {
	for _, suffix := range imageSuffixes {
		if strings.HasSuffix(u, suffix) {
			return true
		}
	}
	return strings.Contains(u, "format=jpg") || strings.Contains(u, "format=png")
}

// UnescapeAmpersand replaces every HTML-escaped "&amp;" with "&".
// An absent (empty) URL yields "".
func UnescapeAmpersand(u string) string {
	if u == "" {
		return ""
	}
	return strings.ReplaceAll(u, "&amp;", "&")
}

// StripQuery drops the query string, if any.
func StripQuery(u string) string {
	if i := strings.IndexByte(u, '?'); i >= 0 {
		return u[:i]
	}
	return u
}

// IsAbsolute is the loose "looks like a URL" test used for community icons.
func IsAbsolute(u string) bool {
	return strings.Contains(u, "http")
}

// Slug turns a title into the cosmetic path segment used in item links.
// Runs of characters outside [a-z0-9] collapse into a single '-'.
func Slug(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	dash := false
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash {
			b.WriteByte('-')
			dash = true
		}
	}
	return b.String()
}

// RelativeTime renders created (unix seconds) relative to now.
// A unit is used only once more than one of it has elapsed, so 90 seconds
// is still "just now" and 47 hours is "47 hours ago".
func RelativeTime(created int64, now time.Time) string {
	seconds := now.Unix() - created
	units := []struct {
		size int64
		name string
	}{
		{31536000, "years"},
		{2592000, "months"},
		{86400, "days"},
		{3600, "hours"},
		{60, "minutes"},
	}
	for _, u := range units {
		if n := seconds / u.size; n > 1 {
			return fmt.Sprintf("%d %s ago", n, u.name)
		}
	}
	return "just now"
}

// Truncate shortens s to max runes, adding "..." when it cuts.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
