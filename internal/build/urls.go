package build

import (
	"net/url"
	"path"
	"strings"
)

// isExternal reports whether ref points outside the site: it has a scheme or
// host, is root-absolute, or is a bare fragment.
func isExternal(ref string) bool {
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "/") {
		return true
	}
	u, err := url.Parse(ref)
	if err != nil {
		return true
	}
	return u.Scheme != "" || u.Host != ""
}

// relativeURL returns the link from the page written at fromDest to the
// site-root relative URL to. A trailing slash on to is kept.
func relativeURL(fromDest, to string) string {
	if isExternal(to) {
		return to
	}
	trailing := strings.HasSuffix(to, "/")

	from := splitPath(path.Dir(fromDest))
	target := splitPath(to)

	common := 0
	for common < len(from) && common < len(target) && from[common] == target[common] {
		common++
	}

	parts := make([]string, 0, len(from)-common+len(target)-common)
	for range from[common:] {
		parts = append(parts, "..")
	}
	parts = append(parts, target[common:]...)

	rel := strings.Join(parts, "/")
	switch {
	case rel == "":
		return "./"
	case trailing:
		return rel + "/"
	default:
		return rel
	}
}

// rootPrefix is the relative path from the page at dest to the site root,
// ending in a slash.
func rootPrefix(dest string) string {
	depth := len(splitPath(path.Dir(dest)))
	if depth == 0 {
		return "./"
	}
	return strings.Repeat("../", depth)
}

// assetURL resolves an extra_css or extra_javascript entry for the page at
// dest.
func assetURL(dest, asset string) string {
	if isExternal(asset) {
		return asset
	}
	return rootPrefix(dest) + strings.TrimPrefix(asset, "./")
}

func splitPath(p string) []string {
	p = path.Clean("/" + p)
	if p == "/" {
		return nil
	}
	return strings.Split(p[1:], "/")
}
