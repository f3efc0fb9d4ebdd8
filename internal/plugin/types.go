package plugin

import "fmt"

// PluginType identifies the category of plugin.
type PluginType string

const (
	// PluginTypeAssets adds stylesheets, scripts and static files.
	PluginTypeAssets PluginType = "assets"

	// PluginTypeComposer forwards content through an external composition engine.
	PluginTypeComposer PluginType = "composer"

	// PluginTypeBundle groups several plugins behind one name.
	PluginTypeBundle PluginType = "bundle"
)

// IsValid returns true if the plugin type is recognized.
func (t PluginType) IsValid() bool {
	switch t {
	case PluginTypeAssets, PluginTypeComposer, PluginTypeBundle:
		return true
	default:
		return false
	}
}

// String returns the string representation of the plugin type.
func (t PluginType) String() string {
	return string(t)
}

// Hook names used in logs, metrics and errors.
const (
	HookStartup      = "startup"
	HookConfig       = "config"
	HookFiles        = "files"
	HookPageMarkdown = "page_markdown"
	HookPostBuild    = "post_build"
)

// PluginError represents an error that occurred within a plugin hook.
type PluginError struct {
	// PluginName identifies which plugin failed.
	PluginName string

	// Hook is the lifecycle hook that was running.
	Hook string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *PluginError) Error() string {
	return fmt.Sprintf("plugin %s failed during %s: %v", e.PluginName, e.Hook, e.Err)
}

// Unwrap returns the underlying error for error inspection.
func (e *PluginError) Unwrap() error {
	return e.Err
}

// NewPluginError creates a new plugin error.
func NewPluginError(pluginName, hook string, err error) *PluginError {
	return &PluginError{
		PluginName: pluginName,
		Hook:       hook,
		Err:        err,
	}
}
