package elementdocs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/element-docs-builder/internal/markdown"
)

func TestNewExtension_Options(t *testing.T) {
	ext, err := NewExtension(map[string]any{"examples_base": "http://localhost:4200"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:4200", ext.(*Extension).ExamplesBase)

	ext, err = NewExtension(map[string]any{"examples_base": nil})
	require.NoError(t, err)
	assert.Equal(t, "", ext.(*Extension).ExamplesBase)

	_, err = NewExtension(map[string]any{"examples_base": 3})
	require.Error(t, err)

	_, err = NewExtension(map[string]any{"unknown": "x"})
	require.Error(t, err)
}

func TestExtension_RegisteredByName(t *testing.T) {
	for _, name := range []string{"element_docs", "md_extension_element_docs"} {
		ext, err := markdown.Resolve(name, nil)
		require.NoError(t, err, name)
		assert.Equal(t, ExtensionName, markdown.ExtensionName(ext))
	}
}

func TestExtension_RegistersProcessors(t *testing.T) {
	md, err := markdown.New(&Extension{})
	require.NoError(t, err)

	p, ok := md.Preprocessors.Priority("element_example")
	require.True(t, ok)
	assert.Equal(t, 10, p)

	p, ok = md.Treeprocessors.Priority("element_tabs")
	require.True(t, ok)
	assert.Equal(t, 10, p)

	assert.Equal(t, []string{"normalize_whitespace", "element_example"}, md.Preprocessors.Names())
}

func TestExtension_ConvertsPage(t *testing.T) {
	md, err := markdown.New(&Extension{ExamplesBase: "../demo/index.html"})
	require.NoError(t, err)

	src := strings.Join([]string{
		"# Buttons",
		"",
		"Intro text.",
		"",
		"## Overview ---",
		"",
		`<si-docs-component example="si-button/basic" height="100"></si-docs-component>`,
		"",
		"## Code ---",
		"",
		"Use `<si-docs-component>` tags.",
		"",
	}, "\n")

	out, err := md.Convert(src)
	require.NoError(t, err)

	assert.Contains(t, out, "<p>Intro text.</p>")
	assert.Contains(t, out, `<div role="tablist" class="tabs" markdown="0">`)
	assert.Contains(t, out, `aria-controls="panel-0">Overview</button>`)
	assert.Contains(t, out, `aria-controls="panel-1">Code</button>`)
	assert.Contains(t, out, `<h2 id="overview" class="tab-anchor">Overview</h2>`)
	assert.Contains(t, out, `<h2 id="code" class="tab-anchor">Code</h2>`)
	assert.Contains(t, out, `<section id="panel-1" role="tabpanel" hidden="true">`)
	assert.Contains(t, out, `<iframe class="component-preview" data-src="../demo/index.html#/viewer/editor?base=&amp;e=si-button%2Fbasic" height="511px" width="100%" style="opacity: 0;" allowfullscreen="true"></iframe>`)
	assert.Contains(t, out, "<code>&lt;si-docs-component&gt;</code>")
	assert.NotContains(t, out, "<p><iframe")

	panel0 := strings.Index(out, `<section id="panel-0"`)
	iframe := strings.Index(out, "<iframe")
	panel1 := strings.Index(out, `<section id="panel-1"`)
	assert.True(t, panel0 < iframe && iframe < panel1, "iframe should sit in the first panel")
}
