// Package metrics exposes the engine's Prometheus instrumentation on a
// private registry, so tests can build isolated instances.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	TasksSubmitted prometheus.Counter
	TasksCompleted prometheus.Counter
	TasksFailed    prometheus.Counter
	TaskDuration   prometheus.Histogram
}

// New builds the metric set. queueDepth and busyWorkers are sampled at
// scrape time from the live pool.
func New(queueDepth, busyWorkers func() float64) *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &Metrics{
		registry: registry,
		TasksSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_tasks_submitted_total",
			Help: "Total number of tasks submitted to the pool",
		}),
		TasksCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_tasks_completed_total",
			Help: "Total number of tasks that settled successfully",
		}),
		TasksFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_tasks_failed_total",
			Help: "Total number of tasks that settled with an error",
		}),
		TaskDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "dispatch_task_duration_seconds",
			Help:    "Wall time from submission to settlement",
			Buckets: prometheus.DefBuckets,
		}),
	}

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "dispatch_queue_depth",
		Help: "Tasks waiting for a free worker",
	}, queueDepth)
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "dispatch_busy_workers",
		Help: "Workers currently bound to a task",
	}, busyWorkers)

	return m
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
