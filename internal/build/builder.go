package build

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/element-docs-builder/internal/config"
	"git.home.luguber.info/inful/element-docs-builder/internal/foundation/errors"
	"git.home.luguber.info/inful/element-docs-builder/internal/logfields"
	"git.home.luguber.info/inful/element-docs-builder/internal/markdown"
	"git.home.luguber.info/inful/element-docs-builder/internal/metrics"
	"git.home.luguber.info/inful/element-docs-builder/internal/observability"
	"git.home.luguber.info/inful/element-docs-builder/internal/plugin"
	"git.home.luguber.info/inful/element-docs-builder/internal/site"
)

// Build stages, used in logs.
const (
	StageConfig    = "config"
	StageFiles     = "files"
	StagePages     = "pages"
	StageStatic    = "static"
	StagePostBuild = "post_build"
)

// Options configure a Builder.
type Options struct {
	// ConfigFile is the mkdocs.yml-style configuration to load on every build.
	ConfigFile string

	// Command is "build" or "serve" and is passed to the startup hooks.
	Command string

	// Dirty keeps site_dir. Pages whose output was rendered from the same
	// source and static files older than their copy are skipped.
	Dirty bool

	// SiteDir overrides site_dir from the configuration.
	SiteDir string

	// Layout renders pages. Defaults to DefaultLayout().
	Layout *Layout

	// Recorder receives build, hook and composer metrics.
	Recorder metrics.Recorder

	// Registry replaces the plugins listed in the configuration.
	Registry *plugin.Registry
}

// Builder builds a site. It is safe to call Build repeatedly; concurrent
// calls are serialized.
type Builder struct {
	mu         sync.Mutex
	opts       Options
	recorder   metrics.Recorder
	layout     *Layout
	registry   *plugin.Registry
	dispatcher *plugin.Dispatcher
	started    bool
}

// NewBuilder creates a builder. Plugins are instantiated on the first build.
func NewBuilder(opts Options) *Builder {
	if opts.Command == "" {
		opts.Command = "build"
	}
	if opts.ConfigFile == "" {
		opts.ConfigFile = config.DefaultConfigFile
	}
	layout := opts.Layout
	if layout == nil {
		layout = DefaultLayout()
	}
	return &Builder{
		opts:     opts,
		recorder: metrics.OrNoop(opts.Recorder),
		layout:   layout,
		registry: opts.Registry,
	}
}

// Plugins returns the active plugins, or nil before the first build.
func (b *Builder) Plugins() *plugin.Registry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.registry
}

// Build runs one complete build.
func (b *Builder) Build(ctx context.Context) (*BuildResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	result := &BuildResult{BuildID: uuid.NewString(), StartTime: time.Now()}
	ctx = observability.WithBuildID(ctx, result.BuildID)
	ctx = observability.WithCommand(ctx, b.opts.Command)

	err := b.run(ctx, result)
	return b.finish(ctx, result, err)
}

func (b *Builder) run(ctx context.Context, result *BuildResult) error {
	ctx = observability.WithStage(ctx, StageConfig)
	cfg, err := config.Load(b.opts.ConfigFile)
	if err != nil {
		return classify(err, errors.ConfigError("failed to load configuration").
			WithContext("config_file", b.opts.ConfigFile), ErrConfig)
	}
	if b.opts.SiteDir != "" {
		abs, err := filepath.Abs(b.opts.SiteDir)
		if err != nil {
			return errors.ConfigError("invalid site directory").WithCause(err).Build()
		}
		cfg.SiteDir = abs
	}
	result.Config = cfg
	result.SiteDir = cfg.SiteDir

	if err := b.ensurePlugins(ctx, cfg); err != nil {
		return err
	}
	if err := b.dispatcher.Config(ctx, cfg); err != nil {
		return err
	}
	extensions, warnings, err := resolveExtensions(cfg.MarkdownExtensions)
	if err != nil {
		return err
	}
	b.warn(ctx, result, warnings...)

	ctx = observability.WithStage(ctx, StageFiles)
	files, err := site.Discover(cfg.DocsDir, cfg.SiteDir, cfg.DirectoryURLs())
	if err != nil {
		return errors.FileSystemError("failed to read documentation directory").
			WithCause(err).
			WithContext("docs_dir", cfg.DocsDir).
			Build()
	}
	if err := b.dispatcher.Files(ctx, files, cfg); err != nil {
		return err
	}
	observability.InfoContext(ctx, "Collected site files",
		slog.Int("pages", len(files.Documentation())),
		slog.Int("static", len(files.Static())))

	if !b.opts.Dirty {
		if err := cleanDir(cfg.SiteDir); err != nil {
			return errors.FileSystemError("failed to clean site directory").
				WithCause(err).
				WithContext("site_dir", cfg.SiteDir).
				Build()
		}
	}

	ctx = observability.WithStage(ctx, StagePages)
	if err := b.renderPages(ctx, cfg, files, extensions, result); err != nil {
		return err
	}

	ctx = observability.WithStage(ctx, StageStatic)
	for _, f := range files.Static() {
		if b.opts.Dirty && upToDate(f) {
			result.Skipped++
			continue
		}
		if err := f.CopyToDest(); err != nil {
			return errors.FileSystemError("failed to copy static file").
				WithCause(fmt.Errorf("%w: %w", ErrOutput, err)).
				WithContext("path", f.SrcPath).
				Build()
		}
		result.StaticFiles++
	}

	ctx = observability.WithStage(ctx, StagePostBuild)
	return b.dispatcher.PostBuild(ctx, cfg)
}

func (b *Builder) renderPages(ctx context.Context, cfg *config.Config, files *site.Files, extensions []markdown.Extension, result *BuildResult) error {
	pages := make(map[string]*site.Page)
	var ordered []*site.Page
	fingerprints := make(map[string]string)

	for _, f := range files.Documentation() {
		if err := ctx.Err(); err != nil {
			return err
		}
		pctx := observability.WithPage(ctx, f.SrcPath)
		page := site.NewPage(f)
		if err := page.ReadSource(); err != nil {
			return errors.FileSystemError("failed to read page").
				WithCause(fmt.Errorf("%w: %w", ErrPages, err)).
				WithContext("page", f.SrcPath).
				Build()
		}
		pages[f.SrcPath] = page

		fp, err := sourceFingerprint(page)
		if err != nil {
			return errors.MarkdownError("failed to fingerprint page").WithCause(err).WithContext("page", f.SrcPath).Build()
		}
		if b.opts.Dirty && renderedFingerprint(f.AbsDestPath()) == fp {
			result.Skipped++
			continue
		}
		fingerprints[f.SrcPath] = fp

		source, err := b.dispatcher.PageMarkdown(pctx, page.Markdown, page, cfg, files)
		if err != nil {
			return err
		}
		page.Markdown = source

		missing, err := missingPageLinks(page, source, files)
		if err != nil {
			return errors.MarkdownError("failed to scan page links").WithCause(err).WithContext("page", f.SrcPath).Build()
		}
		b.warn(pctx, result, missing...)

		content, err := convert(page, files, extensions)
		if err != nil {
			return classify(err, errors.MarkdownError("failed to convert page").WithContext("page", f.SrcPath), ErrPages)
		}
		page.Content = content
		ordered = append(ordered, page)
	}

	nav, warnings := buildNav(cfg, files, pages)
	b.warn(ctx, result, warnings...)

	for _, page := range ordered {
		view := newPageView(cfg, page, nav)
		view.Fingerprint = fingerprints[page.File.SrcPath]
		if err := b.writePage(page, view); err != nil {
			return errors.FileSystemError("failed to write page").
				WithCause(fmt.Errorf("%w: %w", ErrOutput, err)).
				WithContext("page", page.File.SrcPath).
				Build()
		}
	}
	result.Pages = len(ordered)
	b.recorder.AddPagesRendered(len(ordered))
	return nil
}

// convert runs the page through a fresh engine so processor state never
// leaks from one page into the next.
func convert(page *site.Page, files *site.Files, extensions []markdown.Extension) (string, error) {
	md, err := markdown.New(extensions...)
	if err != nil {
		return "", err
	}
	md.Treeprocessors.Register(linkRewriter{page: page, files: files}, "relpath", linkRewritePriority)
	return md.Convert(page.Markdown)
}

func (b *Builder) writePage(page *site.Page, view PageView) error {
	var buf bytes.Buffer
	if err := b.layout.Render(&buf, view); err != nil {
		return err
	}
	dest := page.File.AbsDestPath()
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return err
	}
	return os.WriteFile(dest, buf.Bytes(), 0o644) //nolint:gosec // public HTML output, non-sensitive
}

func (b *Builder) ensurePlugins(ctx context.Context, cfg *config.Config) error {
	if b.registry == nil {
		registry, skipped, err := plugin.FromConfig(cfg.Plugins)
		if err != nil {
			return errors.ConfigError("invalid plugins configuration").WithCause(err).Build()
		}
		for _, name := range skipped {
			observability.WarnContext(ctx, "Plugin is not available and is ignored", logfields.Plugin(name))
		}
		b.registry = registry
	}
	if b.dispatcher == nil {
		for _, p := range b.registry.List() {
			if aware, ok := p.(plugin.MetricsAware); ok {
				aware.SetRecorder(b.recorder)
			}
		}
		b.dispatcher = plugin.NewDispatcher(b.registry, b.recorder)
	}
	if !b.started {
		if err := b.dispatcher.Startup(ctx, b.opts.Command, b.opts.Dirty); err != nil {
			return err
		}
		b.started = true
	}
	return nil
}

func (b *Builder) warn(ctx context.Context, result *BuildResult, warnings ...string) {
	for _, w := range warnings {
		observability.WarnContext(ctx, w)
		result.Warnings = append(result.Warnings, w)
	}
}

func (b *Builder) finish(ctx context.Context, result *BuildResult, err error) (*BuildResult, error) {
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	b.recorder.ObserveBuildDuration(result.Duration)

	switch {
	case err == nil:
		result.Status = BuildStatusSuccess
		b.recorder.IncBuildOutcome(metrics.BuildOutcomeSuccess)
		observability.InfoContext(ctx, "Build completed",
			slog.Int("pages", result.Pages),
			slog.Int("static", result.StaticFiles),
			slog.Int("warnings", len(result.Warnings)),
			logfields.DurationMS(float64(result.Duration.Microseconds())/1000))
	case ctx.Err() != nil && (stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)):
		result.Status = BuildStatusCancelled
		b.recorder.IncBuildOutcome(metrics.BuildOutcomeCanceled)
		observability.WarnContext(ctx, "Build cancelled", logfields.Error(err))
	default:
		result.Status = BuildStatusFailed
		b.recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
		observability.ErrorContext(ctx, "Build failed", logfields.Error(err))
	}
	return result, err
}

// Close releases plugin resources such as the composer engine process.
func (b *Builder) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.registry == nil {
		return nil
	}
	var errs []error
	for _, p := range b.registry.List() {
		if c, ok := p.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close plugin %s: %w", p.Metadata().Name, err))
			}
		}
	}
	return stderrors.Join(errs...)
}

// resolveExtensions instantiates markdown_extensions in order. Entries a
// plugin installed carry their instance. Unknown names are reported and
// skipped, and a repeated name is only used once.
func resolveExtensions(list config.MarkdownExtensions) ([]markdown.Extension, []string, error) {
	var (
		extensions []markdown.Extension
		warnings   []string
		seen       = map[string]bool{}
	)
	for _, entry := range list {
		if seen[entry.Name] {
			continue
		}
		seen[entry.Name] = true

		if entry.Instance != nil {
			extensions = append(extensions, entry.Instance)
			continue
		}
		ext, err := markdown.Resolve(entry.Name, entry.Options)
		if stderrors.Is(err, markdown.ErrUnknownExtension) {
			warnings = append(warnings, fmt.Sprintf("markdown extension %q is not supported and is ignored", entry.Name))
			continue
		}
		if err != nil {
			return nil, nil, errors.ConfigError("invalid markdown extension").
				WithCause(err).
				WithContext("extension", entry.Name).
				Build()
		}
		extensions = append(extensions, ext)
	}
	return extensions, warnings, nil
}

// classify returns err unchanged when it already carries a category and
// otherwise wraps it, together with the stage sentinel, in builder.
func classify(err error, builder *errors.ErrorBuilder, sentinel error) error {
	if errors.IsClassified(err) {
		return err
	}
	return builder.WithCause(fmt.Errorf("%w: %w", sentinel, err)).Build()
}

// upToDate reports whether the static file f's output is at least as new as its source.
func upToDate(f *site.File) bool {
	src := f.AbsSrcPath()
	if src == "" {
		return false
	}
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false
	}
	destInfo, err := os.Stat(f.AbsDestPath())
	if err != nil {
		return false
	}
	return !destInfo.ModTime().Before(srcInfo.ModTime())
}

// cleanDir empties dir but keeps it, so a file server rooted there keeps
// serving across rebuilds.
func cleanDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if stderrors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
