// Package brand derives canonical brand keys from raw site identifiers.
package brand

import (
	"strings"

	"github.com/brandscope/logoharvest/internal/logo"
)

// Normalize derives a BrandKey from a raw site identifier. It is pure and
// total: malformed input yields a best-effort lowercase key, never an error.
//
// The host portion is isolated by stripping the scheme, credentials, path,
// and port; the key is the leftmost host segment before the first '-', '_'
// or '.', lower-cased. Brand names in the dataset are overwhelmingly
// recoverable from that leading segment, which makes this the cheapest
// possible first-pass filter before any network work.
func Normalize(raw string) logo.BrandKey {
	host := hostOf(raw)
	if i := strings.IndexAny(host, "-_."); i >= 0 {
		host = host[:i]
	}
	return logo.BrandKey(host)
}

func hostOf(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	if i := strings.LastIndex(s, "@"); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.Index(s, ":"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimPrefix(s, "www.")
	return s
}
