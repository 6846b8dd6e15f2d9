package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := New(func() float64 { return 0 }, func() float64 { return 0 })

	m.TasksSubmitted.Inc()
	m.TasksSubmitted.Inc()
	m.TasksCompleted.Inc()
	m.TasksFailed.Inc()

	if got := testutil.ToFloat64(m.TasksSubmitted); got != 2 {
		t.Errorf("submitted = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.TasksCompleted); got != 1 {
		t.Errorf("completed = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.TasksFailed); got != 1 {
		t.Errorf("failed = %v, want 1", got)
	}
}

func TestHandlerSamplesGaugesAtScrapeTime(t *testing.T) {
	depth := 0.0
	m := New(func() float64 { return depth }, func() float64 { return 3 })
	depth = 7

	recorder := httptest.NewRecorder()
	m.Handler().ServeHTTP(recorder, httptest.NewRequest("GET", "/metrics", nil))

	body := recorder.Body.String()
	if !strings.Contains(body, "dispatch_queue_depth 7") {
		t.Errorf("scrape missed the live queue depth:\n%s", body)
	}
	if !strings.Contains(body, "dispatch_busy_workers 3") {
		t.Errorf("scrape missed the busy-worker gauge:\n%s", body)
	}
	if !strings.Contains(body, "dispatch_task_duration_seconds") {
		t.Errorf("scrape missed the duration histogram:\n%s", body)
	}
}
