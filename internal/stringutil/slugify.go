package stringutil

import (
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases name and joins its alphanumeric runs with hyphens.
func Slugify(name string) string {
	s := strings.ToLower(name)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// FileName builds "<slug>-<part>-<part>.<ext>" for exported files. Empty
// parts are skipped and an empty board name falls back to "shopweek".
func FileName(board, ext string, parts ...string) string {
	segments := []string{Slugify(board)}
	if segments[0] == "" {
		segments[0] = "shopweek"
	}
	for _, p := range parts {
		if s := Slugify(p); s != "" {
			segments = append(segments, s)
		}
	}
	return strings.Join(segments, "-") + "." + strings.TrimPrefix(ext, ".")
}
