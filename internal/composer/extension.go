package composer

import (
	"context"
	"strings"
	"sync"

	"git.home.luguber.info/inful/element-docs-builder/internal/logfields"
	"git.home.luguber.info/inful/element-docs-builder/internal/markdown"
	"git.home.luguber.info/inful/element-docs-builder/internal/observability"
)

const (
	// ExtensionName is the markdown_extensions entry the plugin installs.
	ExtensionName = "element_docs_composer"

	// Runs after snippet inclusion and before every other preprocessor.
	preprocessorPriority = 31
)

// Extension registers the composer preprocessor. The plugin creates a single
// instance per builder and tells it which page is being converted.
type Extension struct {
	client        *Client
	configuration Configuration
	isServe       bool

	mu              sync.Mutex
	currentFilePath string
}

// NewExtension forwards pages through client using configuration.
func NewExtension(client *Client, configuration Configuration, isServe bool) *Extension {
	return &Extension{
		client:        client,
		configuration: configuration,
		isServe:       isServe,
	}
}

func (*Extension) Name() string { return ExtensionName }

func (e *Extension) Extend(md *markdown.Markdown) error {
	md.Preprocessors.Register(&Preprocessor{ext: e}, ExtensionName, preprocessorPriority)
	return nil
}

// SetCurrentFile records the page about to be converted. path is relative to
// the working directory.
func (e *Extension) SetCurrentFile(path string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.currentFilePath = path
}

// CurrentFilePath is the path last given to SetCurrentFile.
func (e *Extension) CurrentFilePath() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentFilePath
}

// Preprocessor replaces the page source with the engine's rendition of it.
// The conversion carries no context; the client's BuildFile timeout bounds
// each call.
type Preprocessor struct {
	ext *Extension
}

func (p *Preprocessor) Run(lines []string) ([]string, error) {
	path := p.ext.CurrentFilePath()
	ctx := observability.WithPage(context.Background(), path)
	source := strings.Join(lines, "\n")

	out, err := p.ext.client.BuildFile(ctx, p.ext.configuration, source, path, p.ext.isServe)
	if err != nil {
		return nil, err
	}
	observability.DebugContext(ctx, "Composer rewrote page",
		logfields.Path(path),
		logfields.Count(len(out)))
	return strings.Split(out, "\n"), nil
}
