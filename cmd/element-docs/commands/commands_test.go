package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/element-docs-builder/internal/config"
	ferrors "git.home.luguber.info/inful/element-docs-builder/internal/foundation/errors"
)

func run(t *testing.T, args ...string) error {
	t.Helper()
	cli := &CLI{}
	parser, err := kong.New(cli, kong.Vars{"version": "test"}, kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	return kctx.Run(&Global{Context: context.Background()}, cli)
}

func TestInitThenBuild(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "mkdocs.yml")

	require.NoError(t, run(t, "-c", cfgFile, "init"))
	require.FileExists(t, cfgFile)
	require.FileExists(t, filepath.Join(dir, "docs", "index.md"))

	cfg, err := config.Load(cfgFile)
	require.NoError(t, err)
	assert.Equal(t, "Element", cfg.SiteName)

	err = run(t, "-c", cfgFile, "init")
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
	require.NoError(t, run(t, "-c", cfgFile, "init", "--force"))

	out := filepath.Join(dir, "public")
	require.NoError(t, run(t, "-c", cfgFile, "build", "-d", out))
	index, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(index), `class="tab-anchor"`)
	assert.Contains(t, string(index), `<iframe class="component-preview"`)
	assert.FileExists(t, filepath.Join(out, "docs-builder.css"))
	assert.FileExists(t, filepath.Join(out, "docs-builder.js"))
}

func TestBuild_Strict(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "mkdocs.yml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("site_name: Strict\n"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "docs"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs", "index.md"), []byte("[gone](gone.md)\n"), 0o600))

	require.NoError(t, run(t, "-c", cfgFile, "build"))

	err := run(t, "-c", cfgFile, "build", "--strict")
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryBuild))
	assert.Equal(t, 11, ferrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestBuild_MissingConfigExitCode(t *testing.T) {
	err := run(t, "-c", filepath.Join(t.TempDir(), "mkdocs.yml"), "build")
	require.Error(t, err)
	assert.Equal(t, 7, ferrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}
