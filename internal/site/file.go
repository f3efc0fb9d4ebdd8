// Package site models the documentation sources and their build outputs.
package site

import (
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// File is one source file and where it lands in the built site.
//
// SrcPath and DestPath are slash separated and relative to their roots. A
// file is read either from SrcDir on disk or from SrcFS when the file ships
// embedded in the binary.
type File struct {
	SrcPath          string
	SrcDir           string
	SrcFS            fs.FS
	DestDir          string
	UseDirectoryURLs bool
	DestPath         string
	URL              string
}

// NewFile registers a file located at srcDir/srcPath.
func NewFile(srcPath, srcDir, destDir string, useDirectoryURLs bool) *File {
	f := &File{
		SrcPath:          path.Clean(filepath.ToSlash(srcPath)),
		SrcDir:           srcDir,
		DestDir:          destDir,
		UseDirectoryURLs: useDirectoryURLs,
	}
	f.DestPath = destPath(f.SrcPath, useDirectoryURLs)
	f.URL = fileURL(f.DestPath, useDirectoryURLs)
	return f
}

// NewFSFile registers a file read from fsys at srcPath.
func NewFSFile(srcPath string, fsys fs.FS, destDir string, useDirectoryURLs bool) *File {
	f := NewFile(srcPath, "", destDir, useDirectoryURLs)
	f.SrcFS = fsys
	return f
}

// IsDocumentation reports whether the file is a Markdown page.
func (f *File) IsDocumentation() bool {
	return isMarkdown(f.SrcPath)
}

// Name is the file name without its extension.
func (f *File) Name() string {
	base := path.Base(f.SrcPath)
	return strings.TrimSuffix(base, path.Ext(base))
}

// AbsSrcPath is the on-disk source location. It is empty for embedded files.
func (f *File) AbsSrcPath() string {
	if f.SrcFS != nil || f.SrcDir == "" {
		return ""
	}
	return filepath.Join(f.SrcDir, filepath.FromSlash(f.SrcPath))
}

// AbsDestPath is the output location.
func (f *File) AbsDestPath() string {
	return filepath.Join(f.DestDir, filepath.FromSlash(f.DestPath))
}

// Open opens the source for reading.
func (f *File) Open() (io.ReadCloser, error) {
	if f.SrcFS != nil {
		return f.SrcFS.Open(f.SrcPath)
	}
	if f.SrcDir == "" {
		return nil, fmt.Errorf("file %s has no source root", f.SrcPath)
	}
	return os.Open(f.AbsSrcPath())
}

// ReadSource returns the full source content.
func (f *File) ReadSource() ([]byte, error) {
	if f.SrcFS != nil {
		return fs.ReadFile(f.SrcFS, f.SrcPath)
	}
	if f.SrcDir == "" {
		return nil, fmt.Errorf("file %s has no source root", f.SrcPath)
	}
	return os.ReadFile(f.AbsSrcPath())
}

// CopyToDest copies a static file to its output location.
func (f *File) CopyToDest() error {
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	dest := f.AbsDestPath()
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return err
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func isMarkdown(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// destPath maps a page to dir/index.html (directory URLs) or name.html.
// index and README pages always become the index of their directory.
func destPath(src string, useDirectoryURLs bool) string {
	if !isMarkdown(src) {
		return src
	}
	dir := path.Dir(src)
	base := path.Base(src)
	stem := strings.TrimSuffix(base, path.Ext(base))

	switch {
	case stem == "index" || stem == "README":
		return path.Join(dir, "index.html")
	case useDirectoryURLs:
		return path.Join(dir, stem, "index.html")
	default:
		return path.Join(dir, stem+".html")
	}
}

func fileURL(dest string, useDirectoryURLs bool) string {
	u := dest
	dir, file := path.Split(dest)
	if useDirectoryURLs && file == "index.html" {
		if dir == "" {
			dir = "./"
		}
		u = dir
	}
	return (&url.URL{Path: u}).EscapedPath()
}
