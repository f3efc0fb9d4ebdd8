package config

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// NavItem is one navigation entry. A leaf carries a Path, a section carries
// Children. Title may be empty for a bare path entry.
type NavItem struct {
	Title    string
	Path     string
	Children Nav
}

// IsSection reports whether the item groups other entries.
func (n NavItem) IsSection() bool { return n.Children != nil }

// Nav is an ordered navigation tree accepting the MkDocs forms:
//
//	- index.md
//	- Home: index.md
//	- Guide:
//	    - guide/start.md
type Nav []NavItem

func (n *NavItem) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*n = NavItem{Path: node.Value}
		return nil
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return fmt.Errorf("line %d: nav entry must have exactly one key", node.Line)
		}
		title := node.Content[0].Value
		value := node.Content[1]
		switch value.Kind {
		case yaml.ScalarNode:
			*n = NavItem{Title: title, Path: value.Value}
		case yaml.SequenceNode:
			children := Nav{}
			if err := value.Decode(&children); err != nil {
				return err
			}
			*n = NavItem{Title: title, Children: children}
		default:
			return fmt.Errorf("line %d: nav entry %q must map to a path or a list", value.Line, title)
		}
		return nil
	default:
		return fmt.Errorf("line %d: unsupported nav entry", node.Line)
	}
}

func (n NavItem) MarshalYAML() (any, error) {
	if n.IsSection() {
		return map[string]Nav{n.Title: n.Children}, nil
	}
	if n.Title == "" {
		return n.Path, nil
	}
	return map[string]string{n.Title: n.Path}, nil
}

func (n *NavItem) UnmarshalJSON(data []byte) error {
	var path string
	if err := json.Unmarshal(data, &path); err == nil {
		*n = NavItem{Path: path}
		return nil
	}

	var entry map[string]json.RawMessage
	if err := json.Unmarshal(data, &entry); err != nil {
		return fmt.Errorf("nav entry: %w", err)
	}
	if len(entry) != 1 {
		return errors.New("nav entry must have exactly one key")
	}
	for title, raw := range entry {
		if err := json.Unmarshal(raw, &path); err == nil {
			*n = NavItem{Title: title, Path: path}
			return nil
		}
		children := Nav{}
		if err := json.Unmarshal(raw, &children); err != nil {
			return fmt.Errorf("nav entry %q: %w", title, err)
		}
		*n = NavItem{Title: title, Children: children}
	}
	return nil
}

func (n NavItem) MarshalJSON() ([]byte, error) {
	v, _ := n.MarshalYAML()
	return json.Marshal(v)
}

// Paths lists every leaf path in document order.
func (n Nav) Paths() []string {
	var out []string
	for _, item := range n {
		if item.IsSection() {
			out = append(out, item.Children.Paths()...)
			continue
		}
		out = append(out, item.Path)
	}
	return out
}
