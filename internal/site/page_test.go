package site

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitMeta(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantMeta map[string]any
		wantBody string
	}{
		{name: "no front matter", input: "# Title\n", wantMeta: map[string]any{}, wantBody: "# Title\n"},
		{name: "yaml block", input: "---\ntitle: Hi\n---\nbody\n", wantMeta: map[string]any{"title": "Hi"}, wantBody: "body\n"},
		{name: "empty block", input: "---\n---\nbody\n", wantMeta: map[string]any{}, wantBody: "body\n"},
		{name: "crlf", input: "---\r\ntitle: Hi\r\n---\r\nbody\r\n", wantMeta: map[string]any{"title": "Hi"}, wantBody: "body\r\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, body, err := SplitMeta([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.wantMeta, meta)
			assert.Equal(t, tt.wantBody, string(body))
		})
	}
}

func TestSplitMeta_MissingClose(t *testing.T) {
	_, _, err := SplitMeta([]byte("---\ntitle: x\nbody\n"))
	require.True(t, errors.Is(err, ErrMissingClosingDelimiter))
}

func TestPage_ReadSourceTitles(t *testing.T) {
	docs := t.TempDir()
	write := func(name, content string) *File {
		full := filepath.Join(docs, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o600))
		return NewFile(name, docs, "/out", true)
	}

	tests := []struct {
		name  string
		file  *File
		title string
	}{
		{name: "meta", file: write("meta.md", "---\ntitle: From Meta\n---\n# Heading\n"), title: "From Meta"},
		{name: "heading", file: write("heading.md", "intro\n\n# The Heading #\n"), title: "The Heading"},
		{name: "filename", file: write("getting_started.md", "text only\n"), title: "Getting started"},
		{name: "home", file: write("index.md", "text only\n"), title: "Home"},
		{name: "section index", file: write("api-docs/index.md", "text\n"), title: "Api docs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := NewPage(tt.file)
			require.NoError(t, page.ReadSource())
			assert.Equal(t, tt.title, page.Title)
		})
	}
}

func TestPage_NavTitleWins(t *testing.T) {
	docs := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(docs, "a.md"), []byte("# Heading\nbody"), 0o600))

	page := NewPage(NewFile("a.md", docs, "/out", true))
	page.Title = "Nav Title"
	require.NoError(t, page.ReadSource())
	assert.Equal(t, "Nav Title", page.Title)
	assert.Equal(t, "# Heading\nbody", page.Markdown)
}
