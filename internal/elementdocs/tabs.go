package elementdocs

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/element-docs-builder/internal/markdown"
)

// tabSuffix marks an h2 as the start of a tab.
const tabSuffix = "---"

var (
	tabSuffixRe = regexp.MustCompile(`\s*---\s*$`)
	// Auto heading IDs keep the marker as dashes, optionally followed by a
	// duplicate counter.
	tabIDSuffixRe = regexp.MustCompile(`-{3,}(-\d+)?$`)
)

// TabTreeprocessor groups the top-level content following each "## Title ---"
// heading into a tab panel and appends a tab list controlling the panels.
//
// Content before the first such heading stays where it is. A page without
// tab headings is left unchanged.
type TabTreeprocessor struct{}

type tabGroup struct {
	title string
	nodes []*html.Node
}

func (TabTreeprocessor) Run(root *html.Node) error {
	var groups []*tabGroup
	var current *tabGroup

	for n := root.FirstChild; n != nil; n = n.NextSibling {
		if isTabHeading(n) {
			current = &tabGroup{title: stripTabSuffix(n)}
			markdown.SetAttr(n, "class", "tab-anchor")
			trimTabID(n)
			groups = append(groups, current)
		}
		if current != nil {
			current.nodes = append(current.nodes, n)
		}
	}
	if len(groups) == 0 {
		return nil
	}

	for _, g := range groups {
		for _, n := range g.nodes {
			root.RemoveChild(n)
		}
	}

	tablist := markdown.NewElement("div", "role", "tablist", "class", "tabs", "markdown", "0")
	for i, g := range groups {
		selected := "false"
		if i == 0 {
			selected = "true"
		}
		button := markdown.NewElement("button",
			"role", "tab",
			"aria-selected", selected,
			"aria-controls", panelID(i))
		button.AppendChild(&html.Node{Type: html.TextNode, Data: g.title})
		tablist.AppendChild(button)
	}
	root.AppendChild(tablist)

	for i, g := range groups {
		panel := markdown.NewElement("section", "id", panelID(i), "role", "tabpanel")
		if i > 0 {
			markdown.SetAttr(panel, "hidden", "true")
		}
		for _, n := range g.nodes {
			panel.AppendChild(n)
		}
		root.AppendChild(panel)
	}
	return nil
}

func panelID(i int) string {
	return "panel-" + strconv.Itoa(i)
}

func isTabHeading(n *html.Node) bool {
	if n.Type != html.ElementNode || n.Data != "h2" {
		return false
	}
	return strings.HasSuffix(strings.TrimRightFunc(markdown.TextContent(n), unicode.IsSpace), tabSuffix)
}

// stripTabSuffix removes the marker from the heading's last text node and
// returns the remaining heading text.
func stripTabSuffix(h *html.Node) string {
	if last := lastTextNode(h); last != nil {
		last.Data = tabSuffixRe.ReplaceAllString(last.Data, "")
	}
	return strings.TrimSpace(markdown.TextContent(h))
}

func trimTabID(h *html.Node) {
	id, ok := markdown.Attr(h, "id")
	if !ok {
		return
	}
	if trimmed := tabIDSuffixRe.ReplaceAllString(id, "$1"); trimmed != "" {
		markdown.SetAttr(h, "id", trimmed)
	}
}

func lastTextNode(n *html.Node) *html.Node {
	for c := n.LastChild; c != nil; c = c.PrevSibling {
		if c.Type == html.TextNode && strings.TrimSpace(c.Data) != "" {
			return c
		}
		if found := lastTextNode(c); found != nil {
			return found
		}
	}
	return nil
}
