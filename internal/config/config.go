package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFile = "mkdocs.yml"
	DefaultDocsDir    = "docs"
	DefaultSiteDir    = "site"
)

// Config is the site configuration read from an mkdocs.yml-style file.
//
// Plugins receive a pointer to it during the config hooks and may mutate the
// asset lists, the navigation and the Markdown extensions.
type Config struct {
	SiteName           string             `yaml:"site_name"`
	SiteURL            string             `yaml:"site_url,omitempty"`
	SiteDescription    string             `yaml:"site_description,omitempty"`
	DocsDir            string             `yaml:"docs_dir"`
	SiteDir            string             `yaml:"site_dir"`
	UseDirectoryURLs   *bool              `yaml:"use_directory_urls,omitempty"`
	ExtraCSS           []string           `yaml:"extra_css"`
	ExtraJavascript    []string           `yaml:"extra_javascript"`
	Nav                Nav                `yaml:"nav,omitempty"`
	MarkdownExtensions MarkdownExtensions `yaml:"markdown_extensions,omitempty"`
	Plugins            PluginEntries      `yaml:"plugins,omitempty"`
	Extra              map[string]any     `yaml:"extra,omitempty"`

	// ConfigFile is the absolute path the configuration was loaded from.
	ConfigFile string `yaml:"-"`
}

// DirectoryURLs reports whether pages are written as dir/index.html.
func (c *Config) DirectoryURLs() bool {
	return c.UseDirectoryURLs == nil || *c.UseDirectoryURLs
}

// Load reads the configuration file, expands environment variables in it and
// applies defaults. Relative docs_dir and site_dir resolve against the
// directory of the configuration file.
func Load(configPath string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	cfg.ConfigFile = abs
	cfg.resolvePaths(filepath.Dir(abs))

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes configuration bytes after environment expansion and applies
// defaults. It does not validate or resolve paths.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.DocsDir == "" {
		cfg.DocsDir = DefaultDocsDir
	}
	if cfg.SiteDir == "" {
		cfg.SiteDir = DefaultSiteDir
	}
	if cfg.UseDirectoryURLs == nil {
		v := true
		cfg.UseDirectoryURLs = &v
	}
	if cfg.ExtraCSS == nil {
		cfg.ExtraCSS = []string{}
	}
	if cfg.ExtraJavascript == nil {
		cfg.ExtraJavascript = []string{}
	}
}

func (c *Config) resolvePaths(base string) {
	if !filepath.IsAbs(c.DocsDir) {
		c.DocsDir = filepath.Join(base, c.DocsDir)
	}
	if !filepath.IsAbs(c.SiteDir) {
		c.SiteDir = filepath.Join(base, c.SiteDir)
	}
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := Config{
		SiteName:        "Element",
		DocsDir:         DefaultDocsDir,
		SiteDir:         DefaultSiteDir,
		ExtraCSS:        []string{},
		ExtraJavascript: []string{},
		Nav: Nav{
			{Title: "Home", Path: "index.md"},
			{Title: "Components", Children: Nav{
				{Title: "Buttons", Path: "components/buttons.md"},
			}},
		},
		MarkdownExtensions: MarkdownExtensions{
			{Name: "tables"},
			{Name: "codehilite", Options: map[string]any{"guess_lang": false}},
			{Name: "element_docs", Options: map[string]any{"examples_base": "../../../demo/index.html"}},
		},
		Plugins: PluginEntries{{Name: "element-docs-builder"}},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
