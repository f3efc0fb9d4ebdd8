package composer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"

	"git.home.luguber.info/inful/element-docs-builder/internal/composer/bridge"
	"git.home.luguber.info/inful/element-docs-builder/internal/config"
	"git.home.luguber.info/inful/element-docs-builder/internal/foundation/errors"
)

// MinimumVersion is the oldest engine release the plugin works with.
const MinimumVersion = "11.9.0"

// Opener loads the engine described by env.
type Opener func(ctx context.Context, env config.ComposerEnv) (Engine, error)

// NodeEngine runs the engine module in node through the bridge.
type NodeEngine struct {
	bridge *bridge.Bridge
}

// Open starts the engine module env.Entry with env.Node. A module that
// cannot be loaded or is older than MinimumVersion is a configuration error.
func Open(ctx context.Context, env config.ComposerEnv) (Engine, error) {
	b, err := bridge.Start(ctx, bridge.Options{Node: env.Node, Entry: env.Entry})
	if err != nil {
		return nil, errors.ConfigError(fmt.Sprintf(
			"failed to import Docs Composer: ensure it is installed and available in the environment and that you are running version %s or later",
			MinimumVersion)).
			WithCause(err).
			WithContext("entry", env.Entry).
			WithContext("node", env.Node).
			Build()
	}
	if err := CheckVersion(b.Version()); err != nil {
		_ = b.Close()
		return nil, err
	}
	return &NodeEngine{bridge: b}, nil
}

// CheckVersion rejects engine versions older than MinimumVersion. An empty
// version is accepted since not every build of the engine reports one.
func CheckVersion(v string) error {
	if v == "" {
		return nil
	}
	sv := "v" + strings.TrimPrefix(v, "v")
	if !semver.IsValid(sv) {
		return errors.ConfigError(fmt.Sprintf("unrecognized Docs Composer version %q", v)).Build()
	}
	if semver.Compare(sv, "v"+MinimumVersion) < 0 {
		return errors.ConfigError(fmt.Sprintf("Docs Composer %s is too old: version %s or later is required", v, MinimumVersion)).
			WithContext("version", v).
			Build()
	}
	return nil
}

func (e *NodeEngine) Version(context.Context) (string, error) {
	return e.bridge.Version(), nil
}

func (e *NodeEngine) RunTypedoc(ctx context.Context, options map[string]any, path *string, shouldWrite, flag, isServe bool) (Configuration, error) {
	if options == nil {
		options = map[string]any{}
	}
	raw, err := e.bridge.Call(ctx, SymbolRunTypedoc, options, path, shouldWrite, flag, isServe)
	if err != nil {
		return Configuration{}, err
	}
	var h bridge.Handle
	if err := json.Unmarshal(raw, &h); err != nil || h.ID == "" {
		return Configuration{}, fmt.Errorf("%s returned no configuration handle: %s", SymbolRunTypedoc, raw)
	}
	return Configuration{ID: h.ID}, nil
}

func (e *NodeEngine) GetGeneratedFiles(ctx context.Context, cfg Configuration) (json.RawMessage, json.RawMessage, error) {
	raw, err := e.bridge.Call(ctx, SymbolGetGeneratedFiles, handle(cfg))
	if err != nil {
		return nil, nil, err
	}
	var pair []json.RawMessage
	if err := json.Unmarshal(raw, &pair); err != nil || len(pair) != 2 {
		return nil, nil, fmt.Errorf("%s returned %s, want a [files, nav] pair", SymbolGetGeneratedFiles, raw)
	}
	return pair[0], pair[1], nil
}

func (e *NodeEngine) BuildFile(ctx context.Context, cfg Configuration, source, path string, isServe bool, flags ...bool) (string, error) {
	args := []any{handle(cfg), source, path, isServe}
	for _, f := range flags {
		args = append(args, f)
	}
	raw, err := e.bridge.Call(ctx, SymbolBuildFile, args...)
	if err != nil {
		return "", err
	}
	var out string
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%s returned %s, want a string", SymbolBuildFile, raw)
	}
	return out, nil
}

func (e *NodeEngine) SaveLLMsTxt(ctx context.Context, cfg Configuration, outputDir string) error {
	_, err := e.bridge.Call(ctx, SymbolSaveLLMsTxt, handle(cfg), outputDir)
	return err
}

// Close stops the node process.
func (e *NodeEngine) Close() error {
	return e.bridge.Close()
}

func handle(cfg Configuration) bridge.Handle {
	return bridge.Handle{ID: cfg.ID}
}
