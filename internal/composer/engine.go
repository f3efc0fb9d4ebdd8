// Package composer forwards documentation through the external docs composer
// engine. It provides the Engine contract, a timeout and metrics layer over
// it, the node-backed implementation, the Markdown preprocessor that rewrites
// every page, and the plugin that drives the engine across the build.
package composer

import (
	"context"
	"encoding/json"
)

// Configuration is the opaque handle returned by RunTypedoc. It is threaded
// through every later call of the same builder.
type Configuration struct {
	ID string
}

// Engine is the surface of the docs composer.
type Engine interface {
	// Version reports the engine version, or "" when it is unknown.
	Version(ctx context.Context) (string, error)

	// RunTypedoc generates the API documentation and returns the
	// configuration every other call needs.
	RunTypedoc(ctx context.Context, options map[string]any, path *string, shouldWrite, flag, isServe bool) (Configuration, error)

	// GetGeneratedFiles returns the generated file list and the navigation
	// tree, both as JSON.
	GetGeneratedFiles(ctx context.Context, cfg Configuration) (files, nav json.RawMessage, err error)

	// BuildFile rewrites the Markdown source of the page at path.
	BuildFile(ctx context.Context, cfg Configuration, source, path string, isServe bool, flags ...bool) (string, error)

	// SaveLLMsTxt writes the plain-text site summary into outputDir.
	SaveLLMsTxt(ctx context.Context, cfg Configuration, outputDir string) error
}
