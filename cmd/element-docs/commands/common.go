package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/element-docs-builder/internal/build"
	"git.home.luguber.info/inful/element-docs-builder/internal/foundation/errors"

	// Plugins and Markdown extensions resolvable from mkdocs.yml.
	_ "git.home.luguber.info/inful/element-docs-builder/internal/assets"
	_ "git.home.luguber.info/inful/element-docs-builder/internal/composer"
	_ "git.home.luguber.info/inful/element-docs-builder/internal/docsbuilder"
	_ "git.home.luguber.info/inful/element-docs-builder/internal/elementdocs"
)

// Global carries process-wide state into the commands.
type Global struct {
	// Context is canceled on SIGINT or SIGTERM.
	Context context.Context
}

func (g *Global) ctx() context.Context {
	if g == nil || g.Context == nil {
		return context.Background()
	}
	return g.Context
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"mkdocs.yml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" help:"Build the documentation site"`
	Serve ServeCmd `cmd:"" help:"Build, serve and rebuild the site on change"`
	Init  InitCmd  `cmd:"" help:"Create a starter configuration and docs directory"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadLayout returns nil, meaning the built-in layout, when file is empty.
func loadLayout(file string) (*build.Layout, error) {
	if file == "" {
		return nil, nil
	}
	layout, err := build.LoadLayout(file)
	if err != nil {
		return nil, errors.ConfigError("invalid layout").WithCause(err).WithContext("layout", file).Build()
	}
	return layout, nil
}
