package metrics

import "time"

// ResultLabel enumerates call result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFatal    ResultLabel = "fatal"
	ResultTimeout  ResultLabel = "timeout"
	ResultCanceled ResultLabel = "canceled"
)

// BuildOutcome is the final status of one site build.
type BuildOutcome string

const (
	BuildOutcomeSuccess  BuildOutcome = "success"
	BuildOutcomeFailed   BuildOutcome = "failed"
	BuildOutcomeCanceled BuildOutcome = "canceled"
)

// Recorder defines observability hooks for builds, plugin hooks and composer
// engine calls.
type Recorder interface {
	ObserveHookDuration(hook, plugin string, d time.Duration, result ResultLabel)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome BuildOutcome)
	AddPagesRendered(n int)
	ObserveComposerCall(symbol string, d time.Duration, result ResultLabel)
	IncRebuild(trigger string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveHookDuration(string, string, time.Duration, ResultLabel) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)                              {}
func (NoopRecorder) IncBuildOutcome(BuildOutcome)                                    {}
func (NoopRecorder) AddPagesRendered(int)                                            {}
func (NoopRecorder) ObserveComposerCall(string, time.Duration, ResultLabel)          {}
func (NoopRecorder) IncRebuild(string)                                               {}

// OrNoop returns r, or a NoopRecorder when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return NoopRecorder{}
	}
	return r
}
