package build

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/inful/mdfp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/element-docs-builder/internal/site"
)

func TestSourceFingerprint(t *testing.T) {
	page := func(meta map[string]any, md string) *site.Page {
		p := site.NewPage(site.NewFile("a.md", "/docs", "/site", true))
		p.Meta = meta
		p.Markdown = md
		return p
	}

	base, err := sourceFingerprint(page(map[string]any{"title": "A", "tags": []any{"x"}}, "body"))
	require.NoError(t, err)
	require.NotEmpty(t, base)

	same, err := sourceFingerprint(page(map[string]any{"tags": []any{"x"}, "title": "A", mdfp.FingerprintField: "old"}, "body"))
	require.NoError(t, err)
	assert.Equal(t, base, same)

	body, err := sourceFingerprint(page(map[string]any{"title": "A", "tags": []any{"x"}}, "other body"))
	require.NoError(t, err)
	assert.NotEqual(t, base, body)

	meta, err := sourceFingerprint(page(map[string]any{"title": "B", "tags": []any{"x"}}, "body"))
	require.NoError(t, err)
	assert.NotEqual(t, base, meta)
}

func TestRenderedFingerprint(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
		return p
	}

	assert.Equal(t, "abc123", renderedFingerprint(write("ok.html", `<head><meta name="source-fingerprint" content="abc123"></head>`)))
	assert.Empty(t, renderedFingerprint(write("none.html", "<head></head>")))
	assert.Empty(t, renderedFingerprint(write("cut.html", `<meta name="source-fingerprint" content="abc`)))
	assert.Empty(t, renderedFingerprint(filepath.Join(dir, "missing.html")))
}
