package plugin

import (
	"context"
	stderrors "errors"
	"time"

	"git.home.luguber.info/inful/element-docs-builder/internal/config"
	"git.home.luguber.info/inful/element-docs-builder/internal/foundation/errors"
	"git.home.luguber.info/inful/element-docs-builder/internal/logfields"
	"git.home.luguber.info/inful/element-docs-builder/internal/metrics"
	"git.home.luguber.info/inful/element-docs-builder/internal/observability"
	"git.home.luguber.info/inful/element-docs-builder/internal/site"
)

// Dispatcher fans lifecycle events out to the registered plugins that
// implement the matching hook. The first failing hook stops the event.
type Dispatcher struct {
	registry *Registry
	recorder metrics.Recorder
}

// NewDispatcher creates a dispatcher over registry.
func NewDispatcher(registry *Registry, recorder metrics.Recorder) *Dispatcher {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Dispatcher{registry: registry, recorder: metrics.OrNoop(recorder)}
}

// Registry returns the plugins the dispatcher calls.
func (d *Dispatcher) Registry() *Registry { return d.registry }

// Startup runs OnStartup on every plugin implementing StartupHook.
func (d *Dispatcher) Startup(ctx context.Context, command string, dirty bool) error {
	ctx = observability.WithCommand(ctx, command)
	for _, p := range d.registry.List() {
		h, ok := p.(StartupHook)
		if !ok {
			continue
		}
		if err := d.run(ctx, p, HookStartup, func(ctx context.Context) error {
			return h.OnStartup(ctx, command, dirty)
		}); err != nil {
			return err
		}
	}
	return nil
}

// Config runs OnConfig on every plugin implementing ConfigHook.
func (d *Dispatcher) Config(ctx context.Context, cfg *config.Config) error {
	for _, p := range d.registry.List() {
		h, ok := p.(ConfigHook)
		if !ok {
			continue
		}
		if err := d.run(ctx, p, HookConfig, func(ctx context.Context) error {
			return h.OnConfig(ctx, cfg)
		}); err != nil {
			return err
		}
	}
	return nil
}

// Files runs OnFiles on every plugin implementing FilesHook.
func (d *Dispatcher) Files(ctx context.Context, files *site.Files, cfg *config.Config) error {
	for _, p := range d.registry.List() {
		h, ok := p.(FilesHook)
		if !ok {
			continue
		}
		if err := d.run(ctx, p, HookFiles, func(ctx context.Context) error {
			return h.OnFiles(ctx, files, cfg)
		}); err != nil {
			return err
		}
	}
	return nil
}

// PageMarkdown threads the page Markdown through every PageMarkdownHook.
func (d *Dispatcher) PageMarkdown(ctx context.Context, markdown string, page *site.Page, cfg *config.Config, files *site.Files) (string, error) {
	ctx = observability.WithPage(ctx, page.File.SrcPath)
	for _, p := range d.registry.List() {
		h, ok := p.(PageMarkdownHook)
		if !ok {
			continue
		}
		if err := d.run(ctx, p, HookPageMarkdown, func(ctx context.Context) error {
			out, err := h.OnPageMarkdown(ctx, markdown, page, cfg, files)
			if err != nil {
				return err
			}
			markdown = out
			return nil
		}); err != nil {
			return "", err
		}
	}
	return markdown, nil
}

// PostBuild runs OnPostBuild on every plugin implementing PostBuildHook.
func (d *Dispatcher) PostBuild(ctx context.Context, cfg *config.Config) error {
	for _, p := range d.registry.List() {
		h, ok := p.(PostBuildHook)
		if !ok {
			continue
		}
		if err := d.run(ctx, p, HookPostBuild, func(ctx context.Context) error {
			return h.OnPostBuild(ctx, cfg)
		}); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) run(ctx context.Context, p Plugin, hook string, fn func(context.Context) error) error {
	name := p.Metadata().Name
	ctx = observability.WithHook(ctx, hook)

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	result := metrics.ResultSuccess
	switch {
	case err == nil:
	case stderrors.Is(err, context.DeadlineExceeded):
		result = metrics.ResultTimeout
	case stderrors.Is(err, context.Canceled):
		result = metrics.ResultCanceled
	default:
		result = metrics.ResultFatal
	}
	d.recorder.ObserveHookDuration(hook, name, elapsed, result)

	if err == nil {
		observability.DebugContext(ctx, "Plugin hook completed",
			logfields.Plugin(name),
			logfields.DurationMS(float64(elapsed.Microseconds())/1000))
		return nil
	}

	observability.ErrorContext(ctx, "Plugin hook failed",
		logfields.Plugin(name),
		logfields.Error(err))

	wrapped := NewPluginError(name, hook, err)
	if errors.IsClassified(err) {
		return wrapped
	}
	return errors.PluginError("plugin hook failed").
		WithCause(wrapped).
		WithContext("plugin", name).
		WithContext("hook", hook).
		Build()
}
