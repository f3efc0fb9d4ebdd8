package site

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFile_DestinationAndURL(t *testing.T) {
	tests := []struct {
		src      string
		dirURLs  bool
		wantDest string
		wantURL  string
	}{
		{src: "index.md", dirURLs: true, wantDest: "index.html", wantURL: "./"},
		{src: "index.md", dirURLs: false, wantDest: "index.html", wantURL: "index.html"},
		{src: "foo.md", dirURLs: true, wantDest: "foo/index.html", wantURL: "foo/"},
		{src: "foo.md", dirURLs: false, wantDest: "foo.html", wantURL: "foo.html"},
		{src: "guide/README.md", dirURLs: true, wantDest: "guide/index.html", wantURL: "guide/"},
		{src: "guide/intro.md", dirURLs: true, wantDest: "guide/intro/index.html", wantURL: "guide/intro/"},
		{src: "docs-builder.css", dirURLs: true, wantDest: "docs-builder.css", wantURL: "docs-builder.css"},
		{src: "img/a b.png", dirURLs: false, wantDest: "img/a b.png", wantURL: "img/a%20b.png"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			f := NewFile(tt.src, "/src", "/out", tt.dirURLs)
			assert.Equal(t, tt.wantDest, f.DestPath)
			assert.Equal(t, tt.wantURL, f.URL)
			assert.Equal(t, filepath.Join("/out", filepath.FromSlash(tt.wantDest)), f.AbsDestPath())
		})
	}
}

func TestFile_FSSource(t *testing.T) {
	fsys := fstest.MapFS{"docs-builder.js": {Data: []byte("console.log(1)")}}
	dest := t.TempDir()
	f := NewFSFile("docs-builder.js", fsys, dest, true)

	assert.False(t, f.IsDocumentation())
	assert.Empty(t, f.AbsSrcPath())

	data, err := f.ReadSource()
	require.NoError(t, err)
	assert.Equal(t, "console.log(1)", string(data))

	require.NoError(t, f.CopyToDest())
	copied, err := os.ReadFile(filepath.Join(dest, "docs-builder.js"))
	require.NoError(t, err)
	assert.Equal(t, "console.log(1)", string(copied))
}

func TestFiles_AppendGetAndFilter(t *testing.T) {
	files := NewFiles(
		NewFile("index.md", "/src", "/out", true),
		NewFile("style.css", "/src", "/out", true),
	)
	files.Append(NewFile("guide.md", "/src", "/out", true))
	files.Append(NewFile("style.css", "/other", "/out", true))

	require.Equal(t, 3, files.Len())
	got, ok := files.Get("style.css")
	require.True(t, ok)
	assert.Equal(t, "/other", got.SrcDir)

	_, ok = files.Get("missing.md")
	assert.False(t, ok)

	var docs []string
	for _, f := range files.Documentation() {
		docs = append(docs, f.SrcPath)
	}
	assert.Equal(t, []string{"index.md", "guide.md"}, docs)
	require.Len(t, files.Static(), 1)
}

func TestDiscover(t *testing.T) {
	docs := t.TempDir()
	for _, p := range []string{"b.md", "index.md", "a/z.md", "a/index.md", "img/logo.png", ".hidden/x.md", ".DS_Store"} {
		full := filepath.Join(docs, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
		require.NoError(t, os.WriteFile(full, []byte("x"), 0o600))
	}

	files, err := Discover(docs, "/out", true)
	require.NoError(t, err)

	var got []string
	for _, f := range files.All() {
		got = append(got, f.SrcPath)
	}
	assert.Equal(t, []string{"index.md", "a/index.md", "a/z.md", "b.md", "img/logo.png"}, got)
}
