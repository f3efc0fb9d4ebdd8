package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveHookDuration("config", "element-docs-assets", 2*time.Millisecond, ResultSuccess)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncBuildOutcome(BuildOutcomeSuccess)
	pr.AddPagesRendered(3)
	pr.AddPagesRendered(-1)
	pr.ObserveComposerCall("runTypedoc", time.Second, ResultSuccess)
	pr.ObserveComposerCall("buildFile", time.Minute, ResultTimeout)
	pr.IncRebuild("fsnotify")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(mfs) == 0 {
		t.Fatalf("expected metrics, got none")
	}
	counters := map[string]float64{}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			if c := m.GetCounter(); c != nil {
				counters[mf.GetName()] += c.GetValue()
			}
		}
	}
	if got := counters["element_docs_pages_rendered_total"]; got != 3 {
		t.Fatalf("pages rendered = %v, want 3", got)
	}
	if got := counters["element_docs_composer_calls_total"]; got != 2 {
		t.Fatalf("composer calls = %v, want 2", got)
	}
}

func TestPrometheusRecorder_NilSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.ObserveBuildDuration(time.Second)
	pr.IncBuildOutcome(BuildOutcomeFailed)
	pr.AddPagesRendered(1)
	pr.ObserveComposerCall("x", time.Second, ResultFatal)
	pr.IncRebuild("x")
}

func TestHTTPHandler(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncBuildOutcome(BuildOutcomeSuccess)

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Result().Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(body), "element_docs_build_outcomes_total") {
		t.Fatalf("metrics output missing build outcomes:\n%s", body)
	}
}
