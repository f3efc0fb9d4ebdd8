package commands

import (
	"log/slog"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/element-docs-builder/internal/build"
	"git.home.luguber.info/inful/element-docs-builder/internal/metrics"
	"git.home.luguber.info/inful/element-docs-builder/internal/preview"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr   string `short:"a" name:"addr" default:"127.0.0.1:8000" help:"Address to serve the site and /metrics on"`
	Dirty  bool   `name:"dirty" help:"Skip pages and files unchanged since the last build"`
	Layout string `name:"layout" help:"html/template file replacing the built-in page layout" type:"existingfile"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	layout, err := loadLayout(s.Layout)
	if err != nil {
		return err
	}
	reg := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(reg)

	builder := build.NewBuilder(build.Options{
		ConfigFile: root.Config,
		Command:    "serve",
		Dirty:      s.Dirty,
		Recorder:   recorder,
		Layout:     layout,
	})
	defer func() {
		if err := builder.Close(); err != nil {
			slog.Warn("Failed to release plugins", "error", err)
		}
	}()

	srv := preview.New(builder, preview.Options{
		Addr:       s.Addr,
		ConfigFile: root.Config,
		Metrics:    metrics.HTTPHandler(reg),
		Recorder:   recorder,
	})
	return srv.Run(g.ctx())
}
