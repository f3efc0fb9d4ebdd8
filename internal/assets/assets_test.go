package assets

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/element-docs-builder/internal/config"
	"git.home.luguber.info/inful/element-docs-builder/internal/plugin"
	"git.home.luguber.info/inful/element-docs-builder/internal/site"
)

func testConfig(t *testing.T, directoryURLs bool) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte("site_name: Test\n"))
	require.NoError(t, err)
	cfg.SiteDir = filepath.Join(t.TempDir(), "site")
	cfg.UseDirectoryURLs = &directoryURLs
	return cfg
}

func TestOnConfigAppendsWithoutDedupe(t *testing.T) {
	p := New()
	cfg := testConfig(t, true)
	cfg.ExtraCSS = []string{"custom.css"}

	require.NoError(t, p.OnConfig(context.Background(), cfg))
	assert.Equal(t, []string{"custom.css", CSSFile}, cfg.ExtraCSS)
	assert.Equal(t, []string{JSFile}, cfg.ExtraJavascript)

	require.NoError(t, p.OnConfig(context.Background(), cfg))
	assert.Equal(t, []string{"custom.css", CSSFile, CSSFile}, cfg.ExtraCSS)
	assert.Equal(t, []string{JSFile, JSFile}, cfg.ExtraJavascript)
}

func TestOnFilesAddsEmbeddedAssets(t *testing.T) {
	for _, directoryURLs := range []bool{true, false} {
		p := New()
		cfg := testConfig(t, directoryURLs)
		files := site.NewFiles()

		require.NoError(t, p.OnFiles(context.Background(), files, cfg))
		require.Equal(t, 2, files.Len())

		css, ok := files.Get(CSSFile)
		require.True(t, ok)
		assert.Equal(t, CSSFile, css.DestPath)
		assert.Equal(t, CSSFile, css.URL)
		assert.False(t, css.IsDocumentation())

		body, err := css.ReadSource()
		require.NoError(t, err)
		assert.Contains(t, string(body), ".tab-anchor")

		js, ok := files.Get(JSFile)
		require.True(t, ok)
		body, err = js.ReadSource()
		require.NoError(t, err)
		assert.Contains(t, string(body), "dataset.src")
		assert.Contains(t, string(body), "iframe.component-preview")
	}
}

func TestAssetsCopyToSite(t *testing.T) {
	p := New()
	cfg := testConfig(t, true)
	files := site.NewFiles()
	require.NoError(t, p.OnFiles(context.Background(), files, cfg))

	for _, f := range files.Static() {
		require.NoError(t, f.CopyToDest())
		assert.FileExists(t, filepath.Join(cfg.SiteDir, f.DestPath))
	}
}

func TestFactoryRegistered(t *testing.T) {
	factory, ok := plugin.LookupFactory(PluginName)
	require.True(t, ok)

	p, err := factory(nil)
	require.NoError(t, err)
	assert.Equal(t, plugin.PluginTypeAssets, p.Metadata().Type)
	assert.NoError(t, p.Metadata().Validate())
	assert.Error(t, p.Validate(map[string]any{"unexpected": true}))

	_, isConfigHook := p.(plugin.ConfigHook)
	_, isFilesHook := p.(plugin.FilesHook)
	assert.True(t, isConfigHook && isFilesHook)
	assert.True(t, strings.HasPrefix(p.Metadata().Name, "element-docs"))
}
