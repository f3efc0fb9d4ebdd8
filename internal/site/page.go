package site

import (
	"bytes"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter is returned when a page opens a YAML front
// matter block but never closes it.
var ErrMissingClosingDelimiter = errors.New("yaml front matter start delimiter found but closing delimiter is missing")

var h1Re = regexp.MustCompile(`(?m)^#[ \t]+(.+?)[ \t#]*$`)

// Page is a Markdown file being rendered.
type Page struct {
	File     *File
	Title    string
	Meta     map[string]any
	Markdown string
	Content  string
}

// NewPage wraps a documentation file.
func NewPage(file *File) *Page {
	return &Page{File: file, Meta: map[string]any{}}
}

// ReadSource loads the page source, strips its front matter into Meta and
// derives a title when none was set from the navigation.
func (p *Page) ReadSource() error {
	raw, err := p.File.ReadSource()
	if err != nil {
		return fmt.Errorf("read %s: %w", p.File.SrcPath, err)
	}
	meta, body, err := SplitMeta(raw)
	if err != nil {
		return fmt.Errorf("front matter in %s: %w", p.File.SrcPath, err)
	}
	p.Meta = meta
	p.Markdown = string(body)
	if p.Title == "" {
		p.Title = p.deriveTitle()
	}
	return nil
}

// IsHomepage reports whether the page is the site root.
func (p *Page) IsHomepage() bool {
	return p.File.DestPath == "index.html"
}

func (p *Page) deriveTitle() string {
	if t, ok := p.Meta["title"].(string); ok && strings.TrimSpace(t) != "" {
		return strings.TrimSpace(t)
	}
	if m := h1Re.FindStringSubmatch(p.Markdown); m != nil {
		return strings.TrimSpace(m[1])
	}
	if p.IsHomepage() {
		return "Home"
	}
	name := p.File.Name()
	if name == "index" || name == "README" {
		name = path.Base(path.Dir(p.File.SrcPath))
	}
	return TitleFromName(name)
}

// TitleFromName turns a file stem such as getting_started into "Getting started".
func TitleFromName(name string) string {
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	name = strings.TrimSpace(name)
	if name == "" {
		return name
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:]
}

// SplitMeta separates a leading `---` delimited YAML block from the body.
// A document without such a block has empty meta and an unchanged body.
func SplitMeta(content []byte) (map[string]any, []byte, error) {
	nl := "\n"
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		nl = "\r\n"
	}
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return map[string]any{}, content, nil
	}

	rest := content[len(open):]
	var block, body []byte
	switch {
	case bytes.HasPrefix(rest, open):
		body = rest[len(open):]
	default:
		idx := bytes.Index(rest, []byte(nl+"---"+nl))
		if idx < 0 {
			return nil, nil, ErrMissingClosingDelimiter
		}
		block = rest[:idx+len(nl)]
		body = rest[idx+len(nl)+len(open):]
	}

	meta := map[string]any{}
	if len(bytes.TrimSpace(block)) > 0 {
		if err := yaml.Unmarshal(block, &meta); err != nil {
			return nil, nil, err
		}
		if meta == nil {
			meta = map[string]any{}
		}
	}
	return meta, body, nil
}
