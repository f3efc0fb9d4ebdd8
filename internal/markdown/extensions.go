package markdown

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
)

// ErrUnknownExtension is returned by Resolve for names nobody registered.
var ErrUnknownExtension = errors.New("unknown markdown extension")

// Extension registers processors and extenders on an engine.
type Extension interface {
	Extend(md *Markdown) error
}

// NamedExtension is implemented by extensions that report their own name.
type NamedExtension interface {
	Extension
	Name() string
}

// ExtensionFactory builds an extension from its configuration options.
type ExtensionFactory func(options map[string]any) (Extension, error)

var (
	factoriesMu sync.RWMutex
	factories   = map[string]ExtensionFactory{}
)

// RegisterExtension makes factory resolvable under name. Later registrations
// replace earlier ones.
func RegisterExtension(name string, factory ExtensionFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[normalizeName(name)] = factory
}

// LookupExtension returns the factory registered under name.
func LookupExtension(name string) (ExtensionFactory, bool) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	f, ok := factories[normalizeName(name)]
	return f, ok
}

// ExtensionNames lists every registered name, sorted.
func ExtensionNames() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve builds the extension registered under name.
func Resolve(name string, options map[string]any) (Extension, error) {
	factory, ok := LookupExtension(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownExtension, name)
	}
	ext, err := factory(options)
	if err != nil {
		return nil, fmt.Errorf("configure extension %s: %w", name, err)
	}
	return ext, nil
}

// ExtensionName returns the reported name of ext or its Go type.
func ExtensionName(ext Extension) string {
	if named, ok := ext.(NamedExtension); ok {
		return named.Name()
	}
	return fmt.Sprintf("%T", ext)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// extenderExtension enables plain goldmark extenders.
type extenderExtension struct {
	name      string
	extenders []goldmark.Extender
}

func (e extenderExtension) Name() string { return e.name }

func (e extenderExtension) Extend(md *Markdown) error {
	for _, ext := range e.extenders {
		md.AddExtender(ext)
	}
	return nil
}

var builtinExtenders = map[string][]goldmark.Extender{
	"gfm":                 {extension.GFM},
	"table":               {extension.Table},
	"tables":              {extension.Table},
	"strikethrough":       {extension.Strikethrough},
	"pymdownx.tilde":      {extension.Strikethrough},
	"linkify":             {extension.Linkify},
	"autolink":            {extension.Linkify},
	"pymdownx.magiclink":  {extension.Linkify},
	"tasklist":            {extension.TaskList},
	"pymdownx.tasklist":   {extension.TaskList},
	"definition":          {extension.DefinitionList},
	"def_list":            {extension.DefinitionList},
	"footnote":            {extension.Footnote},
	"footnotes":           {extension.Footnote},
	"extra":               {extension.Table, extension.Footnote, extension.DefinitionList},
}

// highlightExtension enables syntax highlighting of fenced code blocks.
type highlightExtension struct {
	style string
	guess bool
}

func (highlightExtension) Name() string { return "codehilite" }

func (h highlightExtension) Extend(md *Markdown) error {
	md.AddExtender(highlighting.NewHighlighting(
		highlighting.WithStyle(h.style),
		highlighting.WithGuessLanguage(h.guess),
	))
	return nil
}

func newHighlightExtension(options map[string]any) (Extension, error) {
	ext := highlightExtension{style: "github"}
	for _, key := range []string{"pygments_style", "style"} {
		if v, ok := options[key]; ok {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("option %s must be a string", key)
			}
			ext.style = s
		}
	}
	if v, ok := options["guess_lang"]; ok {
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("option guess_lang must be a boolean")
		}
		ext.guess = b
	}
	return ext, nil
}

func init() {
	for name, exts := range builtinExtenders {
		name, exts := name, exts
		RegisterExtension(name, func(map[string]any) (Extension, error) {
			return extenderExtension{name: name, extenders: exts}, nil
		})
	}
	for _, name := range []string{"codehilite", "highlight", "pymdownx.highlight"} {
		RegisterExtension(name, newHighlightExtension)
	}
}
