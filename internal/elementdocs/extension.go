package elementdocs

import (
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/element-docs-builder/internal/logfields"
	"git.home.luguber.info/inful/element-docs-builder/internal/markdown"
)

const (
	// ExtensionName is the markdown_extensions entry enabling this package.
	ExtensionName = "element_docs"

	examplePriority = 10
	tabsPriority    = 10
)

// Extension registers the example preprocessor and the tab treeprocessor.
type Extension struct {
	// ExamplesBase prefixes every preview iframe URL, e.g.
	// "../../../demo/index.html" on the published site or
	// "http://localhost:4200" during development.
	ExamplesBase string
}

func (*Extension) Name() string { return ExtensionName }

func (e *Extension) Extend(md *markdown.Markdown) error {
	md.Preprocessors.Register(NewExamplePreprocessor(e.ExamplesBase, md.Stash), "element_example", examplePriority)
	md.Treeprocessors.Register(TabTreeprocessor{}, "element_tabs", tabsPriority)
	slog.Debug("Registered element docs processors",
		logfields.Extension(ExtensionName),
		logfields.Priority(examplePriority))
	return nil
}

// NewExtension builds the extension from its markdown_extensions options.
// The only option is examples_base.
func NewExtension(options map[string]any) (markdown.Extension, error) {
	ext := &Extension{}
	for key, value := range options {
		if value == nil {
			continue
		}
		switch key {
		case "examples_base":
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("examples_base must be a string, got %T", value)
			}
			ext.ExamplesBase = s
		default:
			return nil, fmt.Errorf("unknown option %q", key)
		}
	}
	return ext, nil
}

func init() {
	markdown.RegisterExtension(ExtensionName, NewExtension)
	markdown.RegisterExtension("md_extension_element_docs", NewExtension)
}
