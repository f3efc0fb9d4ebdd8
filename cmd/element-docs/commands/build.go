package commands

import (
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/element-docs-builder/internal/build"
	"git.home.luguber.info/inful/element-docs-builder/internal/foundation/errors"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Dirty   bool   `help:"Keep site_dir and skip pages and files unchanged since the last build"`
	SiteDir string `short:"d" name:"site-dir" help:"Directory to write the site to, overriding site_dir" type:"path"`
	Strict  bool   `short:"s" help:"Fail the build when it produced warnings"`
	Layout  string `name:"layout" help:"html/template file replacing the built-in page layout" type:"existingfile"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	layout, err := loadLayout(b.Layout)
	if err != nil {
		return err
	}
	builder := build.NewBuilder(build.Options{
		ConfigFile: root.Config,
		Command:    "build",
		Dirty:      b.Dirty,
		SiteDir:    b.SiteDir,
		Layout:     layout,
	})
	defer func() {
		if err := builder.Close(); err != nil {
			slog.Warn("Failed to release plugins", "error", err)
		}
	}()

	result, err := builder.Build(g.ctx())
	if err != nil {
		return err
	}
	if b.Strict && len(result.Warnings) > 0 {
		return errors.BuildError(fmt.Sprintf("aborted with %d warnings in strict mode", len(result.Warnings))).
			WithContext("warnings", result.Warnings).
			Build()
	}

	// Provide friendly user-facing messages on stdout.
	fmt.Printf("Built %d pages and %d files to %s in %s\n",
		result.Pages, result.StaticFiles, result.SiteDir, result.Duration.Round(time.Millisecond))
	return nil
}
