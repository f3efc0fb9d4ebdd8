package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Markdown converts page source to HTML through three ordered stages.
//
// Preprocessors see the raw lines, Treeprocessors see the rendered element
// tree and Postprocessors see the serialized HTML. Each registry runs its
// items by descending priority. A Markdown value is not safe for concurrent
// use; build one per page.
type Markdown struct {
	Preprocessors  *Registry[Preprocessor]
	Treeprocessors *Registry[Treeprocessor]
	Postprocessors *Registry[Postprocessor]
	Stash          *HTMLStash

	extenders  []goldmark.Extender
	extensions []string
	engine     goldmark.Markdown
}

// New builds an engine and lets every extension register its processors.
func New(extensions ...Extension) (*Markdown, error) {
	md := &Markdown{
		Preprocessors:  NewRegistry[Preprocessor](),
		Treeprocessors: NewRegistry[Treeprocessor](),
		Postprocessors: NewRegistry[Postprocessor](),
		Stash:          &HTMLStash{},
	}
	md.Preprocessors.Register(PreprocessorFunc(normalizeWhitespace), "normalize_whitespace", 30)
	md.Postprocessors.Register(rawHTMLPostprocessor{stash: md.Stash}, "raw_html", 30)

	for _, ext := range extensions {
		if ext == nil {
			continue
		}
		name := ExtensionName(ext)
		if err := ext.Extend(md); err != nil {
			return nil, fmt.Errorf("extension %s: %w", name, err)
		}
		md.extensions = append(md.extensions, name)
	}

	md.engine = goldmark.New(
		goldmark.WithExtensions(md.extenders...),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)
	return md, nil
}

// AddExtender enables a goldmark extender for this engine. It only has an
// effect while extensions are being applied by New.
func (md *Markdown) AddExtender(ext goldmark.Extender) {
	md.extenders = append(md.extenders, ext)
}

// Extensions returns the names of the applied extensions in order.
func (md *Markdown) Extensions() []string {
	return append([]string(nil), md.extensions...)
}

// Convert renders source to HTML.
func (md *Markdown) Convert(source string) (string, error) {
	md.Stash.Reset()
	if strings.TrimSpace(source) == "" {
		return "", nil
	}

	lines := strings.Split(source, "\n")
	for _, e := range md.Preprocessors.entries {
		out, err := e.item.Run(lines)
		if err != nil {
			return "", fmt.Errorf("preprocessor %s: %w", e.name, err)
		}
		lines = out
	}

	var buf bytes.Buffer
	if err := md.engine.Convert([]byte(strings.Join(lines, "\n")), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	output := buf.String()

	if md.Treeprocessors.Len() > 0 {
		root, err := ParseFragment(output)
		if err != nil {
			return "", err
		}
		for _, e := range md.Treeprocessors.entries {
			if err := e.item.Run(root); err != nil {
				return "", fmt.Errorf("treeprocessor %s: %w", e.name, err)
			}
		}
		if output, err = RenderChildren(root); err != nil {
			return "", err
		}
	}

	for _, e := range md.Postprocessors.entries {
		out, err := e.item.Run(output)
		if err != nil {
			return "", fmt.Errorf("postprocessor %s: %w", e.name, err)
		}
		output = out
	}
	return strings.TrimSpace(output), nil
}

// normalizeWhitespace removes carriage returns and any stash markers a page
// could use to spoof a placeholder.
func normalizeWhitespace(lines []string) ([]string, error) {
	out := make([]string, len(lines))
	for i, line := range lines {
		line = strings.TrimRight(line, "\r")
		line = strings.NewReplacer("\x02", "", "\x03", "").Replace(line)
		out[i] = line
	}
	return out, nil
}
