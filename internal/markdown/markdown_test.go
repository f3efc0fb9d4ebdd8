package markdown

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

type funcExtension func(md *Markdown) error

func (f funcExtension) Extend(md *Markdown) error { return f(md) }

func TestConvert_Basic(t *testing.T) {
	md, err := New()
	require.NoError(t, err)

	out, err := md.Convert("# Hello\n\nworld\n")
	require.NoError(t, err)
	assert.Contains(t, out, `<h1 id="hello">Hello</h1>`)
	assert.Contains(t, out, "<p>world</p>")
}

func TestConvert_EmptySource(t *testing.T) {
	md, err := New()
	require.NoError(t, err)

	out, err := md.Convert("  \n\n")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestConvert_DefaultProcessors(t *testing.T) {
	md, err := New()
	require.NoError(t, err)

	assert.Equal(t, []string{"normalize_whitespace"}, md.Preprocessors.Names())
	assert.Equal(t, []string{"raw_html"}, md.Postprocessors.Names())
	assert.Equal(t, 0, md.Treeprocessors.Len())
}

func TestConvert_StashedHTMLIsRestoredVerbatim(t *testing.T) {
	ext := funcExtension(func(md *Markdown) error {
		md.Preprocessors.Register(PreprocessorFunc(func(lines []string) ([]string, error) {
			out := make([]string, 0, len(lines))
			for _, line := range lines {
				if line == "EMBED" {
					line = md.Stash.Store(`<iframe data-src="a?b=1&amp;c=2"></iframe>`)
				}
				out = append(out, line)
			}
			return out, nil
		}), "embed", 10)
		return nil
	})

	md, err := New(ext)
	require.NoError(t, err)

	out, err := md.Convert("before\n\nEMBED\n\nafter\n")
	require.NoError(t, err)
	assert.Contains(t, out, `<iframe data-src="a?b=1&amp;c=2"></iframe>`)
	assert.NotContains(t, out, "<p><iframe")
	assert.NotContains(t, out, stashStart)
	assert.Equal(t, 1, md.Stash.Len())
}

func TestConvert_StashIsResetBetweenConversions(t *testing.T) {
	md, err := New()
	require.NoError(t, err)
	md.Stash.Store("<b>x</b>")

	_, err = md.Convert("text")
	require.NoError(t, err)
	assert.Equal(t, 0, md.Stash.Len())
}

func TestConvert_PreprocessorsRunByPriority(t *testing.T) {
	var order []string
	record := func(name string) PreprocessorFunc {
		return func(lines []string) ([]string, error) {
			order = append(order, name)
			return lines, nil
		}
	}
	ext := funcExtension(func(md *Markdown) error {
		md.Preprocessors.Register(record("late"), "late", 5)
		md.Preprocessors.Register(record("early"), "early", 31)
		return nil
	})

	md, err := New(ext)
	require.NoError(t, err)
	_, err = md.Convert("x")
	require.NoError(t, err)
	assert.Equal(t, []string{"early", "late"}, order)
	assert.Equal(t, []string{"early", "normalize_whitespace", "late"}, md.Preprocessors.Names())
}

func TestConvert_TreeprocessorMutatesOutput(t *testing.T) {
	ext := funcExtension(func(md *Markdown) error {
		md.Treeprocessors.Register(TreeprocessorFunc(func(root *html.Node) error {
			for _, child := range Children(root) {
				if child.Data == "h2" {
					AddClass(child, "marked")
				}
			}
			return nil
		}), "mark", 10)
		return nil
	})

	md, err := New(ext)
	require.NoError(t, err)
	out, err := md.Convert("## Title\n\nbody\n")
	require.NoError(t, err)
	assert.Contains(t, out, `<h2 id="title" class="marked">Title</h2>`)
}

func TestConvert_ProcessorErrorsAreWrapped(t *testing.T) {
	boom := errors.New("boom")
	ext := funcExtension(func(md *Markdown) error {
		md.Preprocessors.Register(PreprocessorFunc(func([]string) ([]string, error) {
			return nil, boom
		}), "broken", 10)
		return nil
	})

	md, err := New(ext)
	require.NoError(t, err)
	_, err = md.Convert("x")
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "preprocessor broken")
}

func TestNew_ExtensionError(t *testing.T) {
	_, err := New(funcExtension(func(*Markdown) error { return errors.New("bad option") }))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad option")
}

func TestNormalizeWhitespace_StripsMarkers(t *testing.T) {
	out, err := normalizeWhitespace([]string{"a\r", "\x02edbstash:0\x03"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "edbstash:0"}, out)
}

func TestResolve(t *testing.T) {
	ext, err := Resolve("Tables", nil)
	require.NoError(t, err)
	assert.Equal(t, "tables", ExtensionName(ext))

	_, err = Resolve("does-not-exist", nil)
	require.ErrorIs(t, err, ErrUnknownExtension)

	_, err = Resolve("codehilite", map[string]any{"guess_lang": "yes"})
	require.Error(t, err)
}

func TestConvert_TablesExtension(t *testing.T) {
	ext, err := Resolve("tables", nil)
	require.NoError(t, err)
	md, err := New(ext)
	require.NoError(t, err)

	out, err := md.Convert("| a | b |\n|---|---|\n| 1 | 2 |\n")
	require.NoError(t, err)
	assert.Contains(t, out, "<table>")
	assert.Equal(t, []string{"tables"}, md.Extensions())
}

func TestTreeHelpers(t *testing.T) {
	root, err := ParseFragment(`<h2 id="a">One <em>two</em></h2><p>x</p>`)
	require.NoError(t, err)

	children := Children(root)
	require.Len(t, children, 2)
	assert.Equal(t, "One two", TextContent(children[0]))

	v, ok := Attr(children[0], "id")
	require.True(t, ok)
	assert.Equal(t, "a", v)

	SetAttr(children[0], "id", "b")
	children[1].Parent.RemoveChild(children[1])
	root.AppendChild(NewElement("hr", "class", "sep"))

	out, err := RenderChildren(root)
	require.NoError(t, err)
	assert.Equal(t, `<h2 id="b">One <em>two</em></h2><hr class="sep"/>`, out)
	assert.False(t, strings.Contains(out, "<p>"))
}

func TestIsPlaceholder(t *testing.T) {
	assert.True(t, IsPlaceholder(Placeholder(3)))
	assert.True(t, IsPlaceholder("  "+Placeholder(0)+"\n"))
	assert.False(t, IsPlaceholder("x"+Placeholder(0)))
}
