// Package plugin defines the lifecycle contract between the site build and
// its plugins. A plugin implements any subset of the hook interfaces; the
// Dispatcher invokes them in this order for every build:
//
//	OnStartup (once per builder) -> OnConfig -> OnFiles -> OnPageMarkdown (per page) -> OnPostBuild
package plugin

import (
	"context"
	"fmt"
	"sort"

	"git.home.luguber.info/inful/element-docs-builder/internal/config"
	"git.home.luguber.info/inful/element-docs-builder/internal/metrics"
	"git.home.luguber.info/inful/element-docs-builder/internal/site"
)

// Plugin represents a build plugin with metadata.
type Plugin interface {
	// Metadata returns the plugin's metadata (name, version, type).
	Metadata() PluginMetadata

	// Validate checks the options given to the plugin in the plugins list.
	Validate(options map[string]any) error
}

// StartupHook runs once per builder, before the first build. command is
// "build" or "serve".
type StartupHook interface {
	OnStartup(ctx context.Context, command string, dirty bool) error
}

// ConfigHook may mutate the configuration. It runs at the start of every
// build, including every rebuild in serve mode.
type ConfigHook interface {
	OnConfig(ctx context.Context, cfg *config.Config) error
}

// FilesHook may add or replace files after the docs directory was enumerated.
type FilesHook interface {
	OnFiles(ctx context.Context, files *site.Files, cfg *config.Config) error
}

// PageMarkdownHook may rewrite a page's Markdown before it is converted.
type PageMarkdownHook interface {
	OnPageMarkdown(ctx context.Context, markdown string, page *site.Page, cfg *config.Config, files *site.Files) (string, error)
}

// PostBuildHook runs after every page and static file was written.
type PostBuildHook interface {
	OnPostBuild(ctx context.Context, cfg *config.Config) error
}

// MetricsAware plugins receive the builder's metrics recorder before the
// startup hook runs.
type MetricsAware interface {
	SetRecorder(recorder metrics.Recorder)
}

// PluginMetadata describes a plugin's identity.
type PluginMetadata struct {
	// Name is the identifier used in the plugins list (e.g. "element-docs-assets").
	Name string

	// Version is the semantic version (e.g. "v1.0.0").
	Version string

	// Type identifies the plugin category.
	Type PluginType

	// Description provides a human-readable summary of the plugin's purpose.
	Description string
}

// String returns a human-readable representation of the plugin metadata.
func (m PluginMetadata) String() string {
	return fmt.Sprintf("%s@%s (%s)", m.Name, m.Version, m.Type)
}

// Validate checks if the plugin metadata is valid.
func (m PluginMetadata) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("plugin name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("plugin version is required")
	}
	if !m.Type.IsValid() {
		return fmt.Errorf("invalid plugin type: %s", m.Type)
	}
	return nil
}

// BasePlugin provides a default Validate that accepts no options.
type BasePlugin struct{}

// Validate rejects unknown options.
func (BasePlugin) Validate(options map[string]any) error {
	if len(options) == 0 {
		return nil
	}
	keys := make([]string, 0, len(options))
	for key := range options {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return fmt.Errorf("unknown option %q", keys[0])
}
