// Package urlutil implements the URL normalization rules in spec.md
// section 4.7: dav-scheme stripping and endpoint+path joining.
package urlutil

import "strings"

// NormalizeScheme strips a leading "dav:" prefix, or rewrites a bare
// leading "dav" scheme to "http", leaving the underlying http(s) scheme
// for the actual request. dav/dav:http/dav:https all normalize to their
// plain http(s) equivalents; no WebDAV methods are ever issued.
func NormalizeScheme(rawURL string) string {
	switch {
	case strings.HasPrefix(rawURL, "dav:http://"), strings.HasPrefix(rawURL, "dav:https://"):
		return strings.TrimPrefix(rawURL, "dav:")
	case strings.HasPrefix(rawURL, "dav://"):
		return "http://" + strings.TrimPrefix(rawURL, "dav://")
	default:
		return rawURL
	}
}

// BuildURL concatenates the (already scheme-normalized) endpoint base with
// a relative path, ensuring exactly one "/" between them and encoding
// spaces in path as "+".
func BuildURL(base, path string) string {
	base = strings.TrimRight(base, "/")
	path = strings.TrimLeft(path, "/")
	path = strings.ReplaceAll(path, " ", "+")
	return base + "/" + path
}
