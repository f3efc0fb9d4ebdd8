package elementdocs

import (
	stderrors "errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/element-docs-builder/internal/foundation/errors"
	"git.home.luguber.info/inful/element-docs-builder/internal/markdown"
)

const (
	// ExampleTag is the custom tag rewritten into a preview iframe.
	ExampleTag = "si-docs-component"

	// DefaultExampleHeight is used when the tag declares no height.
	DefaultExampleHeight = 204

	// exampleChrome is the viewer toolbar and editor height added to every preview.
	exampleChrome = 411

	// missingAttr stands in for a child attribute that was not set.
	missingAttr = "None"
)

// ExamplePreprocessor replaces <si-docs-component> tags with stashed preview
// iframes pointing at the example viewer under examplesBase.
type ExamplePreprocessor struct {
	*HTMLTagPreprocessor
	examplesBase string
	stash        *markdown.HTMLStash
}

// NewExamplePreprocessor builds the preprocessor. Converted iframes are
// stored in stash and replaced by its placeholders.
func NewExamplePreprocessor(examplesBase string, stash *markdown.HTMLStash) *ExamplePreprocessor {
	p := &ExamplePreprocessor{examplesBase: examplesBase, stash: stash}
	p.HTMLTagPreprocessor = NewHTMLTagPreprocessor(ExampleTag, p.convertTag)
	return p
}

func (p *ExamplePreprocessor) convertTag(markup string) (string, error) {
	iframe, err := RenderExample(p.examplesBase, markup)
	if err != nil {
		return "", err
	}
	return p.stash.Store(iframe), nil
}

// component is the parsed tag: its attributes and its direct children.
type component struct {
	attrs    []html.Attribute
	children [][]html.Attribute
}

func (c *component) attr(key string) (string, bool) {
	for _, a := range c.attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func childAttr(attrs []html.Attribute, key string) string {
	for _, a := range attrs {
		if a.Key == key {
			return a.Val
		}
	}
	return missingAttr
}

// RenderExample converts one <si-docs-component> tag to its iframe markup.
//
// The iframe's data-src is examplesBase#/viewer/editor?base=<base>&e=<id>...
// where the root example attribute contributes "id" and each child element
// contributes "example;heading".
func RenderExample(examplesBase, markup string) (string, error) {
	comp, err := parseComponent(markup)
	if err != nil {
		return "", errors.MarkdownError("invalid <" + ExampleTag + "> tag").
			WithCause(err).
			WithContext("markup", markup).
			Build()
	}

	var examples []string
	if root, ok := comp.attr("example"); ok && root != "" {
		examples = append(examples, root)
	}
	for _, child := range comp.children {
		examples = append(examples, childAttr(child, "example")+";"+childAttr(child, "heading"))
	}

	base, _ := comp.attr("base")
	query := url.Values{"base": {base}}
	if len(examples) > 0 {
		query["e"] = examples
	}

	height := DefaultExampleHeight
	if declared, ok := comp.attr("height"); ok && strings.TrimSpace(declared) != "" {
		height, err = strconv.Atoi(strings.TrimSpace(declared))
		if err != nil {
			return "", errors.MarkdownError("invalid height on <"+ExampleTag+"> tag").
				WithCause(err).
				WithContext("height", declared).
				Build()
		}
	}

	iframe := &html.Node{
		Type:     html.ElementNode,
		Data:     "iframe",
		DataAtom: atom.Iframe,
		Attr: []html.Attribute{
			{Key: "class", Val: "component-preview"},
			{Key: "data-src", Val: examplesBase + "#/viewer/editor?" + query.Encode()},
			{Key: "height", Val: strconv.Itoa(height+exampleChrome) + "px"},
			{Key: "width", Val: "100%"},
			{Key: "style", Val: "opacity: 0;"},
			{Key: "allowfullscreen", Val: "true"},
		},
	}

	var b strings.Builder
	if err := html.Render(&b, iframe); err != nil {
		return "", fmt.Errorf("render iframe: %w", err)
	}
	return b.String(), nil
}

// parseComponent tokenizes markup and returns the first ExampleTag element
// with the attributes of its direct child elements. Self-closing children
// and void elements such as <br> are honored, so neither nests.
func parseComponent(markup string) (*component, error) {
	z := html.NewTokenizer(strings.NewReader(markup))
	var comp *component
	depth := 0

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if stderrors.Is(z.Err(), io.EOF) {
				if comp == nil {
					return nil, fmt.Errorf("no <%s> element found", ExampleTag)
				}
				return comp, nil
			}
			return nil, z.Err()

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if comp == nil {
				if tok.Data != ExampleTag {
					continue
				}
				comp = &component{attrs: tok.Attr}
				if tt == html.SelfClosingTagToken {
					return comp, nil
				}
				depth = 1
				continue
			}
			if depth == 1 {
				comp.children = append(comp.children, tok.Attr)
			}
			if tt == html.StartTagToken && !isVoid(tok.DataAtom) {
				depth++
			}

		case html.EndTagToken:
			if comp == nil {
				continue
			}
			if tok := z.Token(); isVoid(tok.DataAtom) {
				continue
			}
			depth--
			if depth == 0 {
				return comp, nil
			}
		}
	}
}

// isVoid reports elements that never have an end tag.
func isVoid(a atom.Atom) bool {
	switch a {
	case atom.Area, atom.Base, atom.Br, atom.Col, atom.Embed, atom.Hr, atom.Img,
		atom.Input, atom.Keygen, atom.Link, atom.Meta, atom.Param, atom.Source,
		atom.Track, atom.Wbr:
		return true
	}
	return false
}
