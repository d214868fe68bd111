package crawler

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/JakeFAU/clubs-crawler/internal/hash/sha256"
)

// ListingURL substitutes a partition letter into the listing URL template.
func ListingURL(base *url.URL, letter string) string {
	ref := &url.URL{Path: "/clubs/" + strings.ToLower(letter) + "/"}
	return base.ResolveReference(ref).String()
}

// ResolveURL resolves ref against base. Absolute refs are returned normalized.
func ResolveURL(base *url.URL, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty url reference")
	}
	parsed, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", ref, err)
	}
	if base == nil {
		if !parsed.IsAbs() {
			return "", fmt.Errorf("relative url %q without base", ref)
		}
		return parsed.String(), nil
	}
	return base.ResolveReference(parsed).String(), nil
}

// FilenameFromURL derives a local filename from the basename of the URL
// path, ignoring any query string. URLs without a usable basename get a
// stable hash-derived name.
func FilenameFromURL(raw string) string {
	trimmed := raw
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "asset_" + sha256.Short([]byte(raw), 16)
	}
	base := path.Base(u.Path)
	switch base {
	case "", ".", "/", "..":
		return "asset_" + sha256.Short([]byte(raw), 16)
	}
	return base
}
