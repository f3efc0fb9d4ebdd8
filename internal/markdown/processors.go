package markdown

import (
	"golang.org/x/net/html"
)

// Preprocessor rewrites the source lines before they are parsed.
type Preprocessor interface {
	Run(lines []string) ([]string, error)
}

// Treeprocessor mutates the rendered element tree. The root is a synthetic
// container element whose children are the top-level blocks of the page.
type Treeprocessor interface {
	Run(root *html.Node) error
}

// Postprocessor rewrites the serialized HTML.
type Postprocessor interface {
	Run(text string) (string, error)
}

// PreprocessorFunc adapts a function to Preprocessor.
type PreprocessorFunc func(lines []string) ([]string, error)

func (f PreprocessorFunc) Run(lines []string) ([]string, error) { return f(lines) }

// TreeprocessorFunc adapts a function to Treeprocessor.
type TreeprocessorFunc func(root *html.Node) error

func (f TreeprocessorFunc) Run(root *html.Node) error { return f(root) }

// PostprocessorFunc adapts a function to Postprocessor.
type PostprocessorFunc func(text string) (string, error)

func (f PostprocessorFunc) Run(text string) (string, error) { return f(text) }
