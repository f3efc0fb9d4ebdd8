// Package errors provides the classified error primitives used across element-docs-builder.
//
// Every failure that aborts a documentation build carries a category (config, composer,
// markdown, ...) and a severity so that the CLI can choose an exit code and the build log can
// explain what went wrong without string matching.
//
// Key features:
//   - ErrorCategory: Broad error classification (config, composer, markdown, build, etc.)
//   - ErrorSeverity: Impact level (fatal, error, warning, info)
//   - RetryStrategy: Retry behavior hint (never, immediate, backoff, user)
//   - ClassifiedError: Structured error with category, severity, and context
//   - ErrorBuilder: Fluent API for creating classified errors
//   - CLIErrorAdapter: exit codes and user-facing formatting
//
// Example usage:
//
//	err := errors.ComposerError("runTypedoc call failed").
//		WithContext("symbol", "runTypedoc").
//		WithCause(callErr).
//		Build()
package errors
