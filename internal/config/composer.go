package config

import (
	"fmt"
	"os"
	"strings"
)

const (
	EnvComposer         = "DOCS_COMPOSER"
	EnvComposerGenerate = "DOCS_COMPOSER_GENERATE"
	EnvComposerOptions  = "DOCS_COMPOSER_OPTIONS"
	EnvComposerNode     = "DOCS_COMPOSER_NODE"
	EnvComposerEntry    = "DOCS_COMPOSER_ENTRY"

	DefaultComposerNode  = "node"
	DefaultComposerEntry = "./index.mjs"
)

// ComposerEnv is the composer switchboard read from the environment.
type ComposerEnv struct {
	Enabled bool
	// Generate is nil when DOCS_COMPOSER_GENERATE is unset.
	Generate *bool
	// Options is the raw JSON object from DOCS_COMPOSER_OPTIONS. It is decoded
	// by the composer plugin on the first config hook.
	Options string
	Node    string
	Entry   string
}

// GenerateRequested reports whether generated navigation was asked for.
func (c ComposerEnv) GenerateRequested() bool {
	return c.Generate != nil && *c.Generate
}

// GenerateDisabled reports whether generation was explicitly turned off.
func (c ComposerEnv) GenerateDisabled() bool {
	return c.Generate != nil && !*c.Generate
}

// ComposerFromEnv reads the composer settings from the process environment.
func ComposerFromEnv() (ComposerEnv, []string) {
	return ComposerFromLookup(os.LookupEnv)
}

// ComposerFromLookup reads the composer settings through lookup and returns
// warnings for values it had to ignore.
func ComposerFromLookup(lookup func(string) (string, bool)) (ComposerEnv, []string) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok {
			return v
		}
		return def
	}

	var warnings []string
	env := ComposerEnv{
		Enabled: IsTruthy(get(EnvComposer, "false")),
		Options: strings.TrimSpace(get(EnvComposerOptions, "{}")),
		Node:    get(EnvComposerNode, DefaultComposerNode),
		Entry:   get(EnvComposerEntry, DefaultComposerEntry),
	}
	if env.Options == "" {
		env.Options = "{}"
	}
	if env.Node == "" {
		env.Node = DefaultComposerNode
	}
	if env.Entry == "" {
		env.Entry = DefaultComposerEntry
	}

	raw := get(EnvComposerGenerate, "")
	switch {
	case raw == "":
	case IsTruthy(raw):
		v := true
		env.Generate = &v
	case IsFalsy(raw):
		v := false
		env.Generate = &v
	default:
		warnings = append(warnings, fmt.Sprintf("ignoring %s=%q: expected true|1|yes|y or false|0|no|n", EnvComposerGenerate, raw))
	}
	return env, warnings
}

// IsTruthy matches true, 1, yes and y.
func IsTruthy(v string) bool {
	switch v {
	case "true", "1", "yes", "y":
		return true
	}
	return false
}

// IsFalsy matches false, 0, no and n.
func IsFalsy(v string) bool {
	switch v {
	case "false", "0", "no", "n":
		return true
	}
	return false
}
