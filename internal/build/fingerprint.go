package build

import (
	"bytes"
	"os"
	"strings"

	"github.com/inful/mdfp"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/element-docs-builder/internal/site"
)

const fingerprintMarker = `<meta name="source-fingerprint" content="`

// sourceFingerprint hashes a page's front matter and Markdown as read from
// disk, before any plugin rewrote it.
func sourceFingerprint(page *site.Page) (string, error) {
	fields := make(map[string]any, len(page.Meta))
	for k, v := range page.Meta {
		if k == mdfp.FingerprintField {
			continue
		}
		fields[k] = v
	}

	frontmatter := ""
	if len(fields) > 0 {
		// yaml.v3 sorts map keys, so equal metadata serializes identically.
		serialized, err := yaml.Marshal(fields)
		if err != nil {
			return "", err
		}
		frontmatter = strings.TrimSuffix(string(serialized), "\n")
	}
	return mdfp.CalculateFingerprintFromParts(frontmatter, page.Markdown), nil
}

// renderedFingerprint returns the source fingerprint recorded in a rendered
// page, or "" when there is none.
func renderedFingerprint(dest string) string {
	data, err := os.ReadFile(dest)
	if err != nil {
		return ""
	}
	i := bytes.Index(data, []byte(fingerprintMarker))
	if i < 0 {
		return ""
	}
	rest := data[i+len(fingerprintMarker):]
	end := bytes.IndexByte(rest, '"')
	if end < 0 {
		return ""
	}
	return string(rest[:end])
}
