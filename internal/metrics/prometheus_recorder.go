package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "element_docs"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	hookDuration     *prom.HistogramVec
	buildDuration    prom.Histogram
	buildOutcome     *prom.CounterVec
	pagesRendered    prom.Counter
	composerDuration *prom.HistogramVec
	composerResults  *prom.CounterVec
	rebuilds         *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		hookDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "hook_duration_seconds",
			Help:      "Duration of plugin lifecycle hooks",
			Buckets:   prom.DefBuckets,
		}, []string{"hook", "plugin", "result"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total site build duration",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Builds by final status",
		}, []string{"outcome"}),
		pagesRendered: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "pages_rendered_total",
			Help:      "Markdown pages rendered to HTML",
		}),
		composerDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "composer_call_duration_seconds",
			Help:      "Duration of composer engine calls",
			Buckets:   []float64{.05, .1, .5, 1, 5, 15, 30, 60, 180, 300},
		}, []string{"symbol"}),
		composerResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "composer_calls_total",
			Help:      "Composer engine calls by symbol and result",
		}, []string{"symbol", "result"}),
		rebuilds: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "preview_rebuilds_total",
			Help:      "Rebuilds triggered by the preview server",
		}, []string{"trigger"}),
	}
	reg.MustRegister(pr.hookDuration, pr.buildDuration, pr.buildOutcome, pr.pagesRendered,
		pr.composerDuration, pr.composerResults, pr.rebuilds)
	return pr
}

func (p *PrometheusRecorder) ObserveHookDuration(hook, plugin string, d time.Duration, result ResultLabel) {
	if p == nil || p.hookDuration == nil {
		return
	}
	p.hookDuration.WithLabelValues(hook, plugin, string(result)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcome) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) AddPagesRendered(n int) {
	if p == nil || p.pagesRendered == nil || n <= 0 {
		return
	}
	p.pagesRendered.Add(float64(n))
}

func (p *PrometheusRecorder) ObserveComposerCall(symbol string, d time.Duration, result ResultLabel) {
	if p == nil || p.composerDuration == nil {
		return
	}
	p.composerDuration.WithLabelValues(symbol).Observe(d.Seconds())
	p.composerResults.WithLabelValues(symbol, string(result)).Inc()
}

func (p *PrometheusRecorder) IncRebuild(trigger string) {
	if p == nil || p.rebuilds == nil {
		return
	}
	p.rebuilds.WithLabelValues(trigger).Inc()
}
