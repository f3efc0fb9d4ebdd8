// Package build runs a site build: it loads the configuration, dispatches the
// plugin lifecycle hooks, converts every page with the configured Markdown
// extensions and writes the result to site_dir.
//
// A Builder keeps its plugin instances across builds, so a serve session that
// rebuilds after each change talks to the same plugins every time. Startup
// hooks run once per Builder, every other hook once per build.
//
// The package also defines sentinel errors for the stage that failed. They
// are wrapped with context at the call site.
package build
