package composer

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"git.home.luguber.info/inful/element-docs-builder/internal/foundation/errors"
	"git.home.luguber.info/inful/element-docs-builder/internal/logfields"
	"git.home.luguber.info/inful/element-docs-builder/internal/metrics"
	"git.home.luguber.info/inful/element-docs-builder/internal/observability"
)

// Engine symbols, as exported by the engine module.
const (
	SymbolRunTypedoc        = "runTypedoc"
	SymbolGetGeneratedFiles = "getGeneratedFiles"
	SymbolBuildFile         = "buildFile"
	SymbolSaveLLMsTxt       = "saveLLMsTxt"
)

// Timeouts bound each engine call.
type Timeouts struct {
	RunTypedoc        time.Duration
	GetGeneratedFiles time.Duration
	BuildFile         time.Duration
	SaveLLMsTxt       time.Duration
}

// DefaultTimeouts returns the limits the engine is known to need.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		RunTypedoc:        5 * time.Minute,
		GetGeneratedFiles: 3 * time.Minute,
		BuildFile:         time.Minute,
		SaveLLMsTxt:       time.Minute,
	}
}

// Client applies a deadline to every engine call and records its duration.
// Failures are not retried.
type Client struct {
	engine   Engine
	recorder metrics.Recorder
	timeouts Timeouts
}

// NewClient wraps engine. A nil recorder disables metrics.
func NewClient(engine Engine, recorder metrics.Recorder, timeouts Timeouts) *Client {
	return &Client{engine: engine, recorder: metrics.OrNoop(recorder), timeouts: timeouts}
}

// Engine returns the wrapped engine.
func (c *Client) Engine() Engine { return c.engine }

func (c *Client) RunTypedoc(ctx context.Context, options map[string]any, path *string, shouldWrite, flag, isServe bool) (Configuration, error) {
	var cfg Configuration
	err := c.call(ctx, SymbolRunTypedoc, c.timeouts.RunTypedoc, func(ctx context.Context) error {
		var err error
		cfg, err = c.engine.RunTypedoc(ctx, options, path, shouldWrite, flag, isServe)
		return err
	})
	return cfg, err
}

func (c *Client) GetGeneratedFiles(ctx context.Context, cfg Configuration) (json.RawMessage, json.RawMessage, error) {
	var files, nav json.RawMessage
	err := c.call(ctx, SymbolGetGeneratedFiles, c.timeouts.GetGeneratedFiles, func(ctx context.Context) error {
		var err error
		files, nav, err = c.engine.GetGeneratedFiles(ctx, cfg)
		return err
	})
	return files, nav, err
}

func (c *Client) BuildFile(ctx context.Context, cfg Configuration, source, path string, isServe bool, flags ...bool) (string, error) {
	var out string
	err := c.call(ctx, SymbolBuildFile, c.timeouts.BuildFile, func(ctx context.Context) error {
		var err error
		out, err = c.engine.BuildFile(ctx, cfg, source, path, isServe, flags...)
		return err
	})
	return out, err
}

func (c *Client) SaveLLMsTxt(ctx context.Context, cfg Configuration, outputDir string) error {
	return c.call(ctx, SymbolSaveLLMsTxt, c.timeouts.SaveLLMsTxt, func(ctx context.Context) error {
		return c.engine.SaveLLMsTxt(ctx, cfg, outputDir)
	})
}

func (c *Client) call(ctx context.Context, symbol string, timeout time.Duration, fn func(context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := fn(callCtx)
	elapsed := time.Since(start)

	result := metrics.ResultSuccess
	switch {
	case err == nil:
	case stderrors.Is(err, context.DeadlineExceeded):
		result = metrics.ResultTimeout
	case stderrors.Is(err, context.Canceled):
		result = metrics.ResultCanceled
	default:
		result = metrics.ResultFatal
	}
	c.recorder.ObserveComposerCall(symbol, elapsed, result)

	if err == nil {
		observability.DebugContext(ctx, "Composer call completed",
			logfields.Symbol(symbol),
			logfields.DurationMS(float64(elapsed.Microseconds())/1000))
		return nil
	}
	if errors.IsClassified(err) {
		return err
	}
	if result == metrics.ResultTimeout {
		return errors.ComposerError(fmt.Sprintf("%s timed out after %s", symbol, timeout)).
			WithCause(err).
			WithContext("symbol", symbol).
			Build()
	}
	return errors.ComposerError(fmt.Sprintf("%s failed", symbol)).
		WithCause(err).
		WithContext("symbol", symbol).
		Build()
}
