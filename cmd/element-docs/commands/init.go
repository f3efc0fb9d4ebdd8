package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/element-docs-builder/internal/config"
	"git.home.luguber.info/inful/element-docs-builder/internal/foundation/errors"
)

const starterPage = `# Welcome

## Overview ---

Start documenting your components here.

## Examples ---

<si-docs-component example="buttons/buttons"></si-docs-component>
`

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	return RunInit(root.Config, i.Force)
}

// RunInit writes a starter configuration and, when missing, docs/index.md
// next to it.
func RunInit(configPath string, force bool) error {
	fmt.Printf("Writing configuration to %s\n", configPath)
	if err := config.Init(configPath, force); err != nil {
		return errors.ConfigError("initialization failed").WithCause(err).Build()
	}

	index := filepath.Join(filepath.Dir(configPath), config.DefaultDocsDir, "index.md")
	if _, err := os.Stat(index); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(index), 0o750); err != nil {
		return errors.FileSystemError("failed to create docs directory").WithCause(err).Build()
	}
	if err := os.WriteFile(index, []byte(starterPage), 0o600); err != nil {
		return errors.FileSystemError("failed to write starter page").WithCause(err).Build()
	}
	fmt.Printf("Created %s\n", index)
	return nil
}
