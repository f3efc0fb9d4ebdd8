package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/element-docs-builder/internal/markdown"
)

// MarkdownExtension names a Markdown extension and its options. Instance is
// set when a plugin installs an already configured extension at runtime.
type MarkdownExtension struct {
	Name     string
	Options  map[string]any
	Instance markdown.Extension
}

// MarkdownExtensions is the ordered markdown_extensions list.
type MarkdownExtensions []MarkdownExtension

// Names returns the configured extension names in order.
func (m MarkdownExtensions) Names() []string {
	names := make([]string, 0, len(m))
	for _, ext := range m {
		names = append(names, ext.Name)
	}
	return names
}

// Has reports whether an extension with name is listed.
func (m MarkdownExtensions) Has(name string) bool {
	for _, ext := range m {
		if ext.Name == name {
			return true
		}
	}
	return false
}

func (m *MarkdownExtension) UnmarshalYAML(node *yaml.Node) error {
	name, options, err := decodeNamedEntry(node, "markdown_extensions")
	if err != nil {
		return err
	}
	*m = MarkdownExtension{Name: name, Options: options}
	return nil
}

func (m MarkdownExtension) MarshalYAML() (any, error) {
	return encodeNamedEntry(m.Name, m.Options), nil
}

// PluginEntry names a plugin from the plugins list and its options.
type PluginEntry struct {
	Name    string
	Options map[string]any
}

// PluginEntries is the ordered plugins list.
type PluginEntries []PluginEntry

func (p *PluginEntry) UnmarshalYAML(node *yaml.Node) error {
	name, options, err := decodeNamedEntry(node, "plugins")
	if err != nil {
		return err
	}
	*p = PluginEntry{Name: name, Options: options}
	return nil
}

func (p PluginEntry) MarshalYAML() (any, error) {
	return encodeNamedEntry(p.Name, p.Options), nil
}

// decodeNamedEntry accepts "name" or "name: {options}".
func decodeNamedEntry(node *yaml.Node, field string) (string, map[string]any, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Value, nil, nil
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return "", nil, fmt.Errorf("line %d: %s entry must have exactly one key", node.Line, field)
		}
		name := node.Content[0].Value
		value := node.Content[1]
		if value.Kind == yaml.ScalarNode && value.ShortTag() == "!!null" {
			return name, nil, nil
		}
		options := map[string]any{}
		if err := value.Decode(&options); err != nil {
			return "", nil, fmt.Errorf("line %d: options for %s: %w", value.Line, name, err)
		}
		return name, options, nil
	default:
		return "", nil, fmt.Errorf("line %d: unsupported %s entry", node.Line, field)
	}
}

func encodeNamedEntry(name string, options map[string]any) any {
	if len(options) == 0 {
		return name
	}
	return map[string]map[string]any{name: options}
}
