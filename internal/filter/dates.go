package filter

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// isoPrefix recognizes literals that should parse as absolute dates.
	isoPrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

	// relativeDate matches "now", optionally followed by a signed integer
	// and a unit letter. Without a unit the offset is in days.
	relativeDate = regexp.MustCompile(`^now(?:([+-]\d+)([smhdwMy])?)?$`)
)

// dateLayouts are tried in order for ISO-prefixed literals.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ResolveDate converts a date literal to an absolute instant. It accepts
// ISO-8601 date/time strings, the literal "now", and relative tokens such
// as "now+7d" or "now-1w". The second return value is false for
// unrecognized tokens; callers treat that as a non-match rather than an
// error since dates resolve lazily at comparison time.
func ResolveDate(token string) (time.Time, bool) {
	return resolveDateAt(token, time.Now())
}

// resolveDateAt is ResolveDate with an injectable clock.
func resolveDateAt(token string, now time.Time) (time.Time, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return time.Time{}, false
	}

	if isoPrefix.MatchString(token) {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, token); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	}

	m := relativeDate.FindStringSubmatch(token)
	if m == nil {
		return time.Time{}, false
	}
	if m[1] == "" {
		return now, true
	}

	n, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, false
	}

	switch m[2] {
	case "s":
		return now.Add(time.Duration(n) * time.Second), true
	case "m":
		return now.Add(time.Duration(n) * time.Minute), true
	case "h":
		return now.Add(time.Duration(n) * time.Hour), true
	case "w":
		return now.AddDate(0, 0, 7*n), true
	case "M":
		return now.AddDate(0, n, 0), true
	case "y":
		return now.AddDate(n, 0, 0), true
	default:
		// Unit omitted or "d": days.
		return now.AddDate(0, 0, n), true
	}
}
