package build

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path"
	"strings"

	"git.home.luguber.info/inful/element-docs-builder/internal/config"
	"git.home.luguber.info/inful/element-docs-builder/internal/site"
	"git.home.luguber.info/inful/element-docs-builder/internal/version"
)

//go:embed layout.html
var defaultLayout string

// Layout renders a converted page into a complete HTML document.
type Layout struct {
	tmpl *template.Template
}

// DefaultLayout returns the built-in page layout.
func DefaultLayout() *Layout {
	return &Layout{tmpl: template.Must(template.New("layout").Parse(defaultLayout))}
}

// LoadLayout parses a custom layout file. It receives the same data as the
// built-in layout and may call the "nav" template it defines.
func LoadLayout(file string) (*Layout, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	base, err := template.New("layout").Parse(defaultLayout)
	if err != nil {
		return nil, err
	}
	tmpl, err := base.New("custom").Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse layout %s: %w", file, err)
	}
	return &Layout{tmpl: tmpl}, nil
}

// PageView is the data a layout renders.
type PageView struct {
	SiteName        string
	SiteDescription string
	Version         string
	Title           string
	IsHomepage      bool
	Content         template.HTML
	Root            string
	CSS             []string
	JS              []string
	Nav             []NavLink
	Meta            map[string]any
	Extra           map[string]any

	// Fingerprint identifies the page source the document was rendered from.
	Fingerprint string
}

// NavLink is one navigation entry as seen from the page being rendered.
type NavLink struct {
	Title    string
	URL      string
	Active   bool
	Children []NavLink
}

// Render writes the page document to w.
func (l *Layout) Render(w io.Writer, view PageView) error {
	return l.tmpl.Execute(w, view)
}

func newPageView(cfg *config.Config, page *site.Page, nav []navNode) PageView {
	dest := page.File.DestPath
	view := PageView{
		SiteName:        cfg.SiteName,
		SiteDescription: cfg.SiteDescription,
		Version:         version.Version,
		Title:           page.Title,
		IsHomepage:      page.IsHomepage(),
		Root:            rootPrefix(dest),
		Meta:            page.Meta,
		Extra:           cfg.Extra,
	}
	// Content is HTML rendered by the Markdown engine.
	view.Content = template.HTML(page.Content) //nolint:gosec // rendered page body
	for _, css := range cfg.ExtraCSS {
		view.CSS = append(view.CSS, assetURL(dest, css))
	}
	for _, js := range cfg.ExtraJavascript {
		view.JS = append(view.JS, assetURL(dest, js))
	}
	view.Nav, _ = navLinks(nav, page)
	return view
}

// navNode is a navigation entry with a site-root relative URL. Sections have
// no URL.
type navNode struct {
	Title    string
	URL      string
	SrcPath  string
	key      string
	Children []navNode
}

// buildNav resolves the configured navigation against the site files. An
// empty nav lists every page, nested by directory.
func buildNav(cfg *config.Config, files *site.Files, pages map[string]*site.Page) ([]navNode, []string) {
	if len(cfg.Nav) == 0 {
		return autoNav(files, pages), nil
	}
	var warnings []string
	var resolve func(config.Nav) []navNode
	resolve = func(items config.Nav) []navNode {
		out := make([]navNode, 0, len(items))
		for _, item := range items {
			if item.IsSection() {
				out = append(out, navNode{Title: item.Title, Children: resolve(item.Children)})
				continue
			}
			if isExternal(item.Path) {
				out = append(out, navNode{Title: firstNonEmpty(item.Title, item.Path), URL: item.Path})
				continue
			}
			src := path.Clean(strings.TrimPrefix(item.Path, "./"))
			f, ok := files.Get(src)
			if !ok {
				warnings = append(warnings, fmt.Sprintf("nav entry %q is not found in the documentation files", item.Path))
				continue
			}
			title := item.Title
			if title == "" {
				if p, ok := pages[f.SrcPath]; ok {
					title = p.Title
				} else {
					title = site.TitleFromName(f.Name())
				}
			}
			out = append(out, navNode{Title: title, URL: f.URL, SrcPath: f.SrcPath})
		}
		return out
	}
	return resolve(cfg.Nav), warnings
}

func autoNav(files *site.Files, pages map[string]*site.Page) []navNode {
	var root []navNode
	for _, f := range files.Documentation() {
		title := site.TitleFromName(f.Name())
		if p, ok := pages[f.SrcPath]; ok {
			title = p.Title
		}

		level := &root
		for _, dir := range splitPath(path.Dir(f.SrcPath)) {
			idx := -1
			for i := range *level {
				if (*level)[i].key == dir && (*level)[i].URL == "" {
					idx = i
					break
				}
			}
			if idx < 0 {
				*level = append(*level, navNode{Title: site.TitleFromName(dir), key: dir})
				idx = len(*level) - 1
			}
			level = &(*level)[idx].Children
		}
		*level = append(*level, navNode{Title: title, URL: f.URL, SrcPath: f.SrcPath})
	}
	return root
}

// navLinks converts nodes to links relative to page and reports whether the
// page is among them.
func navLinks(nodes []navNode, page *site.Page) ([]NavLink, bool) {
	if len(nodes) == 0 {
		return nil, false
	}
	links := make([]NavLink, 0, len(nodes))
	found := false
	for _, n := range nodes {
		link := NavLink{Title: n.Title}
		if n.URL != "" {
			link.URL = relativeURL(page.File.DestPath, n.URL)
		}
		if n.SrcPath != "" && n.SrcPath == page.File.SrcPath {
			link.Active = true
		}
		children, childActive := navLinks(n.Children, page)
		link.Children = children
		if childActive {
			link.Active = true
		}
		found = found || link.Active
		links = append(links, link)
	}
	return links, found
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
