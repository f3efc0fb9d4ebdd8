package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/element-docs-builder/cmd/element-docs/commands"
	"git.home.luguber.info/inful/element-docs-builder/internal/foundation/errors"
	"git.home.luguber.info/inful/element-docs-builder/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("element-docs"),
		kong.Description("Build and preview Element component documentation sites."),
		kong.Vars{"version": version.Version},
		kong.UsageOnError(),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := parser.Run(&commands.Global{Context: ctx}, cli)
	cancel()

	errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}
