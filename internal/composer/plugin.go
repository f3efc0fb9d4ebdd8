package composer

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/element-docs-builder/internal/config"
	"git.home.luguber.info/inful/element-docs-builder/internal/foundation/errors"
	"git.home.luguber.info/inful/element-docs-builder/internal/logfields"
	"git.home.luguber.info/inful/element-docs-builder/internal/metrics"
	"git.home.luguber.info/inful/element-docs-builder/internal/observability"
	"git.home.luguber.info/inful/element-docs-builder/internal/plugin"
	"git.home.luguber.info/inful/element-docs-builder/internal/site"
	"git.home.luguber.info/inful/element-docs-builder/internal/version"
)

// PluginName is the plugins list entry for this plugin.
const PluginName = "element-docs-composer"

// State is the progress of the plugin through a build.
type State int

const (
	StateUninitialized State = iota
	StateTypedocRun
	StateNavGenerated
	StateNavUnchanged
	StateForwarding
	StatePostBuildSaved
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateTypedocRun:
		return "typedoc_run"
	case StateNavGenerated:
		return "nav_generated"
	case StateNavUnchanged:
		return "nav_unchanged"
	case StateForwarding:
		return "forwarding"
	case StatePostBuildSaved:
		return "post_build_saved"
	default:
		return "unknown"
	}
}

// Plugin drives the docs composer through the build lifecycle.
//
// The engine generates the API documentation once per builder, on the first
// config hook. Later config hooks, such as rebuilds in serve mode, re-apply
// the generated navigation without calling the engine again. When
// DOCS_COMPOSER is not set every hook returns its input untouched.
type Plugin struct {
	plugin.BasePlugin

	env      config.ComposerEnv
	open     Opener
	recorder metrics.Recorder
	timeouts Timeouts
	getwd    func() (string, error)

	client        *Client
	configuration Configuration
	isServe       bool
	ranTypedoc    bool
	generatedNav  config.Nav
	extension     *Extension
	state         State
}

// Option customizes a Plugin.
type Option func(*Plugin)

// WithOpener replaces Open as the way the engine is loaded.
func WithOpener(open Opener) Option {
	return func(p *Plugin) { p.open = open }
}

// WithEngine uses engine instead of loading one.
func WithEngine(engine Engine) Option {
	return WithOpener(func(context.Context, config.ComposerEnv) (Engine, error) {
		return engine, nil
	})
}

// WithTimeouts overrides DefaultTimeouts.
func WithTimeouts(t Timeouts) Option {
	return func(p *Plugin) { p.timeouts = t }
}

// WithWorkingDir makes page paths relative to dir instead of the process
// working directory.
func WithWorkingDir(dir string) Option {
	return func(p *Plugin) {
		p.getwd = func() (string, error) { return dir, nil }
	}
}

// New creates the plugin for the given environment.
func New(env config.ComposerEnv, opts ...Option) *Plugin {
	p := &Plugin{
		env:      env,
		open:     Open,
		recorder: metrics.NoopRecorder{},
		timeouts: DefaultTimeouts(),
		getwd:    os.Getwd,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Plugin) Metadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{
		Name:        PluginName,
		Version:     version.Version,
		Type:        plugin.PluginTypeComposer,
		Description: "Forwards pages through the Docs Composer engine",
	}
}

func (p *Plugin) SetRecorder(recorder metrics.Recorder) {
	p.recorder = metrics.OrNoop(recorder)
}

// Enabled reports whether DOCS_COMPOSER turned the plugin on.
func (p *Plugin) Enabled() bool { return p.env.Enabled }

// State returns how far the plugin got.
func (p *Plugin) State() State { return p.state }

// Extension returns the installed Markdown extension, or nil.
func (p *Plugin) Extension() *Extension { return p.extension }

func (p *Plugin) OnStartup(_ context.Context, command string, _ bool) error {
	if !p.env.Enabled {
		return nil
	}
	p.isServe = command == "serve"
	return nil
}

func (p *Plugin) OnConfig(ctx context.Context, cfg *config.Config) error {
	if !p.env.Enabled {
		return nil
	}

	if p.ranTypedoc {
		if p.generatedNav != nil {
			cfg.Nav = p.generatedNav
		}
		if p.extension == nil && !hasExtension(cfg) {
			observability.WarnContext(ctx, "Docs Composer setup did not complete; pages are rendered without forwarding",
				slog.String("state", p.state.String()))
		}
		p.install(cfg)
		return nil
	}

	options, err := DecodeOptions(p.env.Options)
	if err != nil {
		return err
	}

	if p.client == nil {
		engine, err := p.open(ctx, p.env)
		if err != nil {
			return err
		}
		p.client = NewClient(engine, p.recorder, p.timeouts)
	}

	shouldWrite := !p.isServe && !p.env.GenerateDisabled()
	p.configuration, err = p.client.RunTypedoc(ctx, options, nil, shouldWrite, false, p.isServe)
	if err != nil {
		return err
	}
	p.ranTypedoc = true
	p.state = StateTypedocRun
	observability.InfoContext(ctx, "Docs Composer generated API documentation",
		slog.Bool("serve", p.isServe),
		slog.Bool("write", shouldWrite))

	p.state = StateNavUnchanged
	if p.env.GenerateRequested() {
		_, rawNav, err := p.client.GetGeneratedFiles(ctx, p.configuration)
		if err != nil {
			return err
		}
		var nav config.Nav
		if err := json.Unmarshal(rawNav, &nav); err != nil {
			return errors.ComposerError("generated navigation is not a valid nav tree").
				WithCause(err).
				WithContext("symbol", SymbolGetGeneratedFiles).
				Build()
		}
		cfg.Nav = nav
		p.generatedNav = nav
		p.state = StateNavGenerated
		observability.InfoContext(ctx, "Applied generated navigation", logfields.Count(len(nav.Paths())))
	}

	if hasExtension(cfg) {
		return nil
	}
	p.extension = NewExtension(p.client, p.configuration, p.isServe)
	p.install(cfg)
	return nil
}

func hasExtension(cfg *config.Config) bool {
	for _, ext := range cfg.MarkdownExtensions {
		if _, ok := ext.Instance.(*Extension); ok {
			return true
		}
	}
	return false
}

// install lists the plugin's extension in markdown_extensions unless an
// instance is listed already. A bare element_docs_composer entry receives
// the instance.
func (p *Plugin) install(cfg *config.Config) {
	if p.extension == nil {
		return
	}
	for i, ext := range cfg.MarkdownExtensions {
		if _, ok := ext.Instance.(*Extension); ok {
			return
		}
		if ext.Name == ExtensionName && ext.Instance == nil {
			cfg.MarkdownExtensions[i].Instance = p.extension
			return
		}
	}
	cfg.MarkdownExtensions = append(cfg.MarkdownExtensions, config.MarkdownExtension{
		Name:     ExtensionName,
		Instance: p.extension,
	})
}

func (p *Plugin) OnPageMarkdown(_ context.Context, markdown string, page *site.Page, _ *config.Config, _ *site.Files) (string, error) {
	if p.extension == nil {
		return markdown, nil
	}
	p.extension.SetCurrentFile(p.relativePath(page.File))
	p.state = StateForwarding
	return markdown, nil
}

func (p *Plugin) OnPostBuild(ctx context.Context, _ *config.Config) error {
	if !p.env.Enabled || p.extension == nil {
		return nil
	}
	if err := p.client.SaveLLMsTxt(ctx, p.configuration, "."); err != nil {
		return err
	}
	p.state = StatePostBuildSaved
	return nil
}

// Close stops the engine process, if one was started.
func (p *Plugin) Close() error {
	if p.client == nil {
		return nil
	}
	if c, ok := p.client.Engine().(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (p *Plugin) relativePath(f *site.File) string {
	abs := f.AbsSrcPath()
	if abs == "" {
		return f.SrcPath
	}
	wd, err := p.getwd()
	if err != nil {
		return abs
	}
	rel, err := filepath.Rel(wd, abs)
	if err != nil {
		return abs
	}
	return rel
}

// DecodeOptions parses DOCS_COMPOSER_OPTIONS. An empty value means no options.
func DecodeOptions(raw string) (map[string]any, error) {
	if raw == "" {
		return map[string]any{}, nil
	}
	var options map[string]any
	if err := json.Unmarshal([]byte(raw), &options); err != nil {
		return nil, errors.ConfigError("Invalid JSON in " + config.EnvComposerOptions + " environment variable").
			WithCause(err).
			Build()
	}
	if options == nil {
		options = map[string]any{}
	}
	return options, nil
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
