// Package preview implements the serve command: it builds the site, serves
// site_dir over HTTP and rebuilds when the docs or the configuration change.
package preview

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/element-docs-builder/internal/build"
	ferrors "git.home.luguber.info/inful/element-docs-builder/internal/foundation/errors"
	"git.home.luguber.info/inful/element-docs-builder/internal/logfields"
	"git.home.luguber.info/inful/element-docs-builder/internal/metrics"
	"git.home.luguber.info/inful/element-docs-builder/internal/observability"
)

const (
	// DefaultAddr matches the address mkdocs serve listens on.
	DefaultAddr = "127.0.0.1:8000"

	// DefaultDebounce coalesces bursts of filesystem events into one rebuild.
	DefaultDebounce = 300 * time.Millisecond

	shutdownTimeout = 5 * time.Second
)

// Rebuild triggers, used as the metrics label.
const (
	TriggerDocs   = "docs"
	TriggerConfig = "config"
)

// Options configure a preview server.
type Options struct {
	Addr       string
	ConfigFile string
	Debounce   time.Duration

	// Metrics is mounted at /metrics when set.
	Metrics http.Handler

	Recorder metrics.Recorder
}

// buildStatus tracks the last build outcome for error display.
type buildStatus struct {
	mu           sync.RWMutex
	lastError    error
	hasGoodBuild bool
	siteDir      string
	docsDir      string
}

func (bs *buildStatus) record(result *build.BuildResult, err error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	if result != nil && result.Config != nil {
		bs.siteDir = result.Config.SiteDir
		bs.docsDir = result.Config.DocsDir
	}
	bs.lastError = err
	if err == nil {
		bs.hasGoodBuild = true
	}
}

func (bs *buildStatus) get() (err error, hasGoodBuild bool, siteDir, docsDir string) {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return bs.lastError, bs.hasGoodBuild, bs.siteDir, bs.docsDir
}

// Server serves a site and keeps it rebuilt.
type Server struct {
	builder  *build.Builder
	opts     Options
	recorder metrics.Recorder
	status   buildStatus

	readyOnce sync.Once
	ready     chan struct{}
	addr      string
}

// New creates a preview server around builder. The builder is reused for
// every rebuild so plugins keep their state between builds.
func New(builder *build.Builder, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	return &Server{
		builder:  builder,
		opts:     opts,
		recorder: metrics.OrNoop(opts.Recorder),
		ready:    make(chan struct{}),
	}
}

// Ready is closed once the server is listening and watching.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr is the address the server listens on. It is valid after Ready.
func (s *Server) Addr() string {
	return s.addr
}

// Run builds the site, serves it and rebuilds on change until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	result, err := s.builder.Build(ctx)
	s.status.record(result, err)
	if result == nil || result.Config == nil {
		return err
	}
	if err != nil {
		observability.ErrorContext(ctx, "Initial build failed; serving error page until the next successful build", logfields.Error(err))
	}
	_, _, _, docsDir := s.status.get()

	listener, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return ferrors.RuntimeError("failed to listen").WithCause(err).WithContext("addr", s.opts.Addr).Build()
	}
	srv := &http.Server{Handler: s.handler(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			observability.ErrorContext(ctx, "Preview server stopped", logfields.Error(err))
		}
	}()
	s.addr = listener.Addr().String()
	observability.InfoContext(ctx, "Preview server listening", slog.String("url", "http://"+s.addr+"/"))

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		_ = srv.Close()
		return ferrors.RuntimeError("failed to create file watcher").WithCause(err).Build()
	}
	defer func() { _ = watcher.Close() }()

	configFile, err := filepath.Abs(s.opts.ConfigFile)
	if err != nil {
		_ = srv.Close()
		return fmt.Errorf("resolve config file: %w", err)
	}
	// The directory is watched rather than the file so editors that replace
	// the file on save keep triggering rebuilds.
	if err := watcher.Add(filepath.Dir(configFile)); err != nil {
		observability.WarnContext(ctx, "Cannot watch configuration file", logfields.Path(configFile), logfields.Error(err))
	}
	addDirsRecursive(ctx, watcher, docsDir)

	rebuildReq, trigger := setupRebuildDebouncer(s.opts.Debounce)
	done := s.startRebuildWorker(ctx, watcher, rebuildReq)

	s.readyOnce.Do(func() { close(s.ready) })

	w := fileWatch{
		watcher:    watcher,
		configFile: configFile,
		docsDir:    s.docsDir,
		trigger:    trigger,
	}
	w.loop(ctx)

	return s.shutdown(ctx, srv, done)
}

func (s *Server) docsDir() string {
	_, _, _, dir := s.status.get()
	return dir
}

func (s *Server) handler() http.Handler {
	mux := http.NewServeMux()
	if s.opts.Metrics != nil {
		mux.Handle("/metrics", s.opts.Metrics)
	}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		lastErr, good, siteDir, _ := s.status.get()
		if !good {
			writeBuildError(w, lastErr)
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		http.FileServer(http.Dir(siteDir)).ServeHTTP(w, r)
	})
	return mux
}

func writeBuildError(w http.ResponseWriter, err error) {
	msg := "the site has not been built yet"
	if err != nil {
		msg = err.Error()
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = fmt.Fprintf(w, "<!DOCTYPE html>\n<title>Build failed</title>\n<h1>Build failed</h1>\n<pre>%s</pre>\n", html.EscapeString(msg))
}

// setupRebuildDebouncer returns the rebuild channel and a trigger that sends
// to it once no further trigger arrived for delay. The last trigger wins.
func setupRebuildDebouncer(delay time.Duration) (chan string, func(string)) {
	var mu sync.Mutex
	var timer *time.Timer
	rebuildReq := make(chan string, 1)

	trigger := func(reason string) {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(delay, func() {
			select {
			case rebuildReq <- reason:
			default:
			}
		})
	}
	return rebuildReq, trigger
}

// startRebuildWorker processes rebuild requests one at a time. The returned
// channel is closed when the worker exits.
func (s *Server) startRebuildWorker(ctx context.Context, watcher *fsnotify.Watcher, rebuildReq <-chan string) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case reason := <-rebuildReq:
				s.rebuild(ctx, watcher, reason)
			}
		}
	}()
	return done
}

func (s *Server) rebuild(ctx context.Context, watcher *fsnotify.Watcher, reason string) {
	_, _, _, oldDocs := s.status.get()
	observability.InfoContext(ctx, "Change detected; rebuilding site", slog.String("trigger", reason))
	s.recorder.IncRebuild(reason)

	result, err := s.builder.Build(ctx)
	s.status.record(result, err)
	if err != nil {
		observability.WarnContext(ctx, "Rebuild failed", logfields.Error(err))
		return
	}
	if _, _, _, docsDir := s.status.get(); docsDir != oldDocs {
		addDirsRecursive(ctx, watcher, docsDir)
	}
}

func (s *Server) shutdown(ctx context.Context, srv *http.Server, done <-chan struct{}) error {
	observability.InfoContext(ctx, "Shutting down preview server")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		observability.WarnContext(ctx, "HTTP server shutdown error", logfields.Error(err))
	}
	<-done
	return nil
}

// fileWatch turns filesystem events into rebuild triggers.
type fileWatch struct {
	watcher    *fsnotify.Watcher
	configFile string
	docsDir    func() string
	trigger    func(string)
}

func (w fileWatch) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ctx, ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			observability.WarnContext(ctx, "Watcher error", logfields.Error(err))
		}
	}
}

func (w fileWatch) handle(ctx context.Context, ev fsnotify.Event) {
	name := filepath.Clean(ev.Name)
	if name == w.configFile {
		w.trigger(TriggerConfig)
		return
	}
	if !within(w.docsDir(), name) || shouldIgnoreEvent(name) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(name); err == nil && fi.IsDir() {
			addDirsRecursive(ctx, w.watcher, name)
		}
	}
	observability.DebugContext(ctx, "File change detected", logfields.Path(name), slog.String("op", ev.Op.String()))
	w.trigger(TriggerDocs)
}

// within reports whether name is dir or below it.
func within(dir, name string) bool {
	if dir == "" {
		return false
	}
	rel, err := filepath.Rel(dir, name)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func addDirsRecursive(ctx context.Context, w *fsnotify.Watcher, root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := w.Add(path); err != nil {
				observability.WarnContext(ctx, "Watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}

// shouldIgnoreEvent returns true for filesystem events that should not trigger rebuilds.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	if strings.HasPrefix(base, ".") {
		return true
	}

	// Editor temp and swap files
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}

	return base == "Thumbs.db"
}
