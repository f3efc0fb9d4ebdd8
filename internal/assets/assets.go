// Package assets ships the stylesheet and script used by the tab and
// example markup, and the plugin that adds them to every site.
package assets

import (
	"context"
	"embed"
	"io/fs"

	"git.home.luguber.info/inful/element-docs-builder/internal/config"
	"git.home.luguber.info/inful/element-docs-builder/internal/logfields"
	"git.home.luguber.info/inful/element-docs-builder/internal/observability"
	"git.home.luguber.info/inful/element-docs-builder/internal/plugin"
	"git.home.luguber.info/inful/element-docs-builder/internal/site"
	"git.home.luguber.info/inful/element-docs-builder/internal/version"
)

const (
	// PluginName is the plugins list entry for this plugin.
	PluginName = "element-docs-assets"

	CSSFile = "docs-builder.css"
	JSFile  = "docs-builder.js"
)

//go:embed static/docs-builder.css static/docs-builder.js
var embedded embed.FS

// FS returns the embedded asset files at their site-relative paths.
func FS() fs.FS {
	sub, err := fs.Sub(embedded, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Plugin adds docs-builder.css and docs-builder.js to the site.
//
// The config hook appends to extra_css and extra_javascript without checking
// for existing entries, so running it twice lists each asset twice.
type Plugin struct {
	plugin.BasePlugin
	fsys fs.FS
}

// New returns the plugin serving the embedded assets.
func New() *Plugin {
	return &Plugin{fsys: FS()}
}

func (p *Plugin) Metadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{
		Name:        PluginName,
		Version:     version.Version,
		Type:        plugin.PluginTypeAssets,
		Description: "Adds the tab and example preview assets",
	}
}

func (p *Plugin) OnConfig(_ context.Context, cfg *config.Config) error {
	cfg.ExtraCSS = append(cfg.ExtraCSS, CSSFile)
	cfg.ExtraJavascript = append(cfg.ExtraJavascript, JSFile)
	return nil
}

func (p *Plugin) OnFiles(ctx context.Context, files *site.Files, cfg *config.Config) error {
	for _, name := range []string{CSSFile, JSFile} {
		files.Append(site.NewFSFile(name, p.fsys, cfg.SiteDir, cfg.DirectoryURLs()))
	}
	observability.DebugContext(ctx, "Registered asset files", logfields.Count(2))
	return nil
}

func init() {
	plugin.RegisterFactory(PluginName, func(map[string]any) (plugin.Plugin, error) {
		return New(), nil
	})
}
