// Package docsbuilder provides the element-docs-builder plugin, which installs
// the site assets and drives the Docs Composer from a single plugins entry.
package docsbuilder

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/element-docs-builder/internal/assets"
	"git.home.luguber.info/inful/element-docs-builder/internal/composer"
	"git.home.luguber.info/inful/element-docs-builder/internal/config"
	"git.home.luguber.info/inful/element-docs-builder/internal/logfields"
	"git.home.luguber.info/inful/element-docs-builder/internal/metrics"
	"git.home.luguber.info/inful/element-docs-builder/internal/plugin"
	"git.home.luguber.info/inful/element-docs-builder/internal/site"
	"git.home.luguber.info/inful/element-docs-builder/internal/version"
)

// PluginName is the plugins list entry for this plugin.
const PluginName = "element-docs-builder"

// Plugin runs the assets plugin and then the composer plugin for every hook
// either of them implements.
type Plugin struct {
	plugin.BasePlugin
	assets   *assets.Plugin
	composer *composer.Plugin
}

// New bundles the two plugins. opts configure the composer.
func New(env config.ComposerEnv, opts ...composer.Option) *Plugin {
	return &Plugin{
		assets:   assets.New(),
		composer: composer.New(env, opts...),
	}
}

func (p *Plugin) Metadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{
		Name:        PluginName,
		Version:     version.Version,
		Type:        plugin.PluginTypeBundle,
		Description: "Element docs assets and Docs Composer integration",
	}
}

func (p *Plugin) Assets() *assets.Plugin     { return p.assets }
func (p *Plugin) Composer() *composer.Plugin { return p.composer }

func (p *Plugin) SetRecorder(recorder metrics.Recorder) {
	p.composer.SetRecorder(recorder)
}

func (p *Plugin) OnStartup(ctx context.Context, command string, dirty bool) error {
	return p.composer.OnStartup(ctx, command, dirty)
}

func (p *Plugin) OnConfig(ctx context.Context, cfg *config.Config) error {
	if err := p.assets.OnConfig(ctx, cfg); err != nil {
		return err
	}
	return p.composer.OnConfig(ctx, cfg)
}

func (p *Plugin) OnFiles(ctx context.Context, files *site.Files, cfg *config.Config) error {
	return p.assets.OnFiles(ctx, files, cfg)
}

func (p *Plugin) OnPageMarkdown(ctx context.Context, markdown string, page *site.Page, cfg *config.Config, files *site.Files) (string, error) {
	return p.composer.OnPageMarkdown(ctx, markdown, page, cfg, files)
}

func (p *Plugin) OnPostBuild(ctx context.Context, cfg *config.Config) error {
	return p.composer.OnPostBuild(ctx, cfg)
}

func (p *Plugin) Close() error {
	return p.composer.Close()
}

func init() {
	plugin.RegisterFactory(PluginName, func(map[string]any) (plugin.Plugin, error) {
		env, warnings := config.ComposerFromEnv()
		for _, w := range warnings {
			slog.Warn(w, logfields.Plugin(PluginName))
		}
		return New(env), nil
	})
}
