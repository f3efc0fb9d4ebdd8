package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/element-docs-builder/internal/config"
)

// Service is implemented by Builder. The preview server and the CLI only
// depend on this method.
type Service interface {
	// Build loads the configuration and writes the site. A failed build
	// still returns a result describing how far it got.
	Build(ctx context.Context) (*BuildResult, error)
}

// BuildResult contains the outcome of a build execution.
type BuildResult struct {
	// BuildID correlates the log lines of one build.
	BuildID string

	// Status indicates overall build outcome.
	Status BuildStatus

	// Config is the configuration after the config hooks ran. It is nil when
	// loading failed.
	Config *config.Config

	// SiteDir is the directory the site was written to.
	SiteDir string

	// Pages is the number of pages rendered.
	Pages int

	// StaticFiles is the number of files copied unchanged.
	StaticFiles int

	// Skipped counts outputs left alone by a dirty build because they were
	// newer than their sources.
	Skipped int

	// Warnings collects non-fatal problems such as links to missing pages.
	Warnings []string

	// Duration is the total build execution time.
	Duration time.Duration

	// StartTime is when the build started.
	StartTime time.Time

	// EndTime is when the build completed.
	EndTime time.Time
}

// BuildStatus represents the outcome of a build execution.
type BuildStatus string

const (
	// BuildStatusSuccess indicates the build completed successfully.
	BuildStatusSuccess BuildStatus = "success"

	// BuildStatusFailed indicates the build encountered an error.
	BuildStatusFailed BuildStatus = "failed"

	// BuildStatusCancelled indicates the build was cancelled.
	BuildStatusCancelled BuildStatus = "cancelled"
)

// IsTerminal returns true if the status represents a final state.
func (s BuildStatus) IsTerminal() bool {
	return s == BuildStatusSuccess || s == BuildStatusFailed || s == BuildStatusCancelled
}

// IsSuccess returns true if the build completed successfully.
func (s BuildStatus) IsSuccess() bool {
	return s == BuildStatusSuccess
}
