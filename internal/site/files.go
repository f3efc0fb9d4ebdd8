package site

import (
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Files is the ordered set of files that make up a site. Appending a file
// with a source path already present replaces the earlier entry in place.
type Files struct {
	files []*File
}

// NewFiles returns a set holding files in order.
func NewFiles(files ...*File) *Files {
	s := &Files{}
	for _, f := range files {
		s.Append(f)
	}
	return s
}

// Append adds f to the set.
func (s *Files) Append(f *File) {
	for i, existing := range s.files {
		if existing.SrcPath == f.SrcPath {
			s.files[i] = f
			return
		}
	}
	s.files = append(s.files, f)
}

// Get returns the file with the given source path.
func (s *Files) Get(srcPath string) (*File, bool) {
	srcPath = path.Clean(filepath.ToSlash(srcPath))
	for _, f := range s.files {
		if f.SrcPath == srcPath {
			return f, true
		}
	}
	return nil, false
}

// All returns every file in order.
func (s *Files) All() []*File {
	return append([]*File(nil), s.files...)
}

// Len returns the number of files.
func (s *Files) Len() int { return len(s.files) }

// Documentation returns the Markdown pages.
func (s *Files) Documentation() []*File {
	var out []*File
	for _, f := range s.files {
		if f.IsDocumentation() {
			out = append(out, f)
		}
	}
	return out
}

// Static returns every file that is copied as-is.
func (s *Files) Static() []*File {
	var out []*File
	for _, f := range s.files {
		if !f.IsDocumentation() {
			out = append(out, f)
		}
	}
	return out
}

// Discover walks docsDir and registers every file below it. Hidden files and
// directories are skipped. Within a directory the index page sorts first.
func Discover(docsDir, siteDir string, useDirectoryURLs bool) (*Files, error) {
	var paths []string
	err := filepath.WalkDir(docsDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == docsDir {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(docsDir, p)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(paths, func(i, j int) bool {
		return sortKey(paths[i]) < sortKey(paths[j])
	})

	files := &Files{}
	for _, p := range paths {
		files.Append(NewFile(p, docsDir, siteDir, useDirectoryURLs))
	}
	return files, nil
}

// sortKey orders index pages ahead of their siblings.
func sortKey(p string) string {
	dir, base := path.Split(p)
	stem := strings.TrimSuffix(base, path.Ext(base))
	if isMarkdown(base) && (stem == "index" || stem == "README") {
		return dir + "\x00" + base
	}
	return p
}
