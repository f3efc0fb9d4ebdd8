package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate checks the loaded configuration for values the build cannot work with.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if strings.TrimSpace(cfg.SiteName) == "" {
		return errors.New("site_name is required")
	}
	if err := validateDirs(cfg.DocsDir, cfg.SiteDir); err != nil {
		return err
	}
	seen := make(map[string]bool)
	for _, p := range cfg.Plugins {
		if p.Name == "" {
			return errors.New("plugin name cannot be empty")
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate plugin: %s", p.Name)
		}
		seen[p.Name] = true
	}
	for _, ext := range cfg.MarkdownExtensions {
		if ext.Name == "" && ext.Instance == nil {
			return errors.New("markdown extension name cannot be empty")
		}
	}
	return nil
}

func validateDirs(docsDir, siteDir string) error {
	docs := filepath.Clean(docsDir)
	site := filepath.Clean(siteDir)
	if docs == site {
		return fmt.Errorf("docs_dir and site_dir must differ: %s", docs)
	}
	if rel, err := filepath.Rel(docs, site); err == nil && !strings.HasPrefix(rel, "..") {
		return fmt.Errorf("site_dir %s must not be inside docs_dir %s", site, docs)
	}
	if rel, err := filepath.Rel(site, docs); err == nil && !strings.HasPrefix(rel, "..") {
		return fmt.Errorf("docs_dir %s must not be inside site_dir %s", docs, site)
	}
	return nil
}
