package build

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/element-docs-builder/internal/markdown"
	"git.home.luguber.info/inful/element-docs-builder/internal/site"
)

// Runs after every extension treeprocessor.
const linkRewritePriority = 0

// linkRewriter points links between source files at their built URLs,
// relative to the page being rendered.
type linkRewriter struct {
	page  *site.Page
	files *site.Files
}

func (r linkRewriter) Run(root *html.Node) error {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			key := ""
			switch n.DataAtom {
			case atom.A:
				key = "href"
			case atom.Img:
				key = "src"
			}
			if key != "" {
				if v, ok := markdown.Attr(n, key); ok {
					if out, ok := r.rewrite(v); ok {
						markdown.SetAttr(n, key, out)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return nil
}

func (r linkRewriter) rewrite(ref string) (string, bool) {
	target, u, ok := resolveRef(r.page.File.SrcPath, ref)
	if !ok {
		return "", false
	}
	f, ok := r.files.Get(target)
	if !ok {
		return "", false
	}
	out := relativeURL(r.page.File.DestPath, f.URL)
	if u.RawQuery != "" {
		out += "?" + u.RawQuery
	}
	if u.Fragment != "" {
		out += "#" + u.EscapedFragment()
	}
	return out, true
}

// resolveRef maps a relative link found in the page at srcPath to the source
// path it names.
func resolveRef(srcPath, ref string) (string, *url.URL, bool) {
	if isExternal(ref) {
		return "", nil, false
	}
	u, err := url.Parse(ref)
	if err != nil || u.Path == "" {
		return "", nil, false
	}
	return path.Join(path.Dir(srcPath), u.Path), u, true
}

// missingPageLinks lists the Markdown links of a page that name a page not
// in files.
func missingPageLinks(page *site.Page, source string, files *site.Files) ([]string, error) {
	links, err := markdown.ExtractLinks([]byte(source))
	if err != nil {
		return nil, err
	}
	var warnings []string
	for _, link := range links {
		if link.Kind == markdown.LinkKindAuto {
			continue
		}
		target, _, ok := resolveRef(page.File.SrcPath, link.Destination)
		if !ok || !isMarkdownPath(target) {
			continue
		}
		if _, found := files.Get(target); !found {
			warnings = append(warnings, fmt.Sprintf("page %s links to %s, which is not found in the documentation files", page.File.SrcPath, link.Destination))
		}
	}
	return warnings, nil
}

func isMarkdownPath(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".md", ".markdown":
		return true
	}
	return false
}
