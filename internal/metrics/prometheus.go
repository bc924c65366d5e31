// Package metrics instruments the TestRunner with Prometheus metrics,
// following the re-registerable pattern this repository's Prometheus
// wiring has always used: a package-level set of collectors bound to a
// swappable registerer so tests can run against an isolated registry
// instead of the global default.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TestExecutions *prometheus.CounterVec
	TestDuration   *prometheus.HistogramVec
	RunnerDuration prometheus.Histogram
	WorkerPoolSize prometheus.Gauge

	metricsMu         sync.RWMutex
	currentRegisterer prometheus.Registerer = prometheus.DefaultRegisterer
)

func init() {
	resetMetrics(prometheus.DefaultRegisterer)
}

// SetRegisterer sets a new registerer and reinitializes all metrics. It
// returns the previous registerer so it can be restored later. This
// function is thread-safe and designed for use in tests to provide
// isolated metric registries per test.
func SetRegisterer(registerer prometheus.Registerer) prometheus.Registerer {
	metricsMu.Lock()
	defer metricsMu.Unlock()

	previous := currentRegisterer
	if currentRegisterer != nil {
		unregisterAll(currentRegisterer)
	}
	currentRegisterer = registerer
	initializeMetrics(registerer)
	return previous
}

func resetMetrics(registerer prometheus.Registerer) {
	metricsMu.Lock()
	defer metricsMu.Unlock()

	if currentRegisterer != nil {
		unregisterAll(currentRegisterer)
	}
	currentRegisterer = registerer
	initializeMetrics(registerer)
}

// initializeMetrics creates all metrics using the provided registerer.
// This function must be called while holding metricsMu.
func initializeMetrics(registerer prometheus.Registerer) {
	factory := promauto.With(registerer)

	TestExecutions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sts_test_executions_total",
			Help: "Total number of statistical test executions by identity and outcome",
		},
		[]string{"test", "outcome"},
	)

	TestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sts_test_duration_seconds",
			Help:    "Duration of individual statistical test executions",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 20),
		},
		[]string{"test"},
	)

	RunnerDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sts_runner_duration_seconds",
			Help:    "Duration of a complete TestRunner run across all selected tests",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 20),
		},
	)

	WorkerPoolSize = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "sts_worker_pool_size",
			Help: "Configured worker pool size used by the runner's concurrent test execution",
		},
	)
}

func unregisterAll(registerer prometheus.Registerer) {
	if TestExecutions != nil {
		registerer.Unregister(TestExecutions)
	}
	if TestDuration != nil {
		registerer.Unregister(TestDuration)
	}
	if RunnerDuration != nil {
		registerer.Unregister(RunnerDuration)
	}
	if WorkerPoolSize != nil {
		registerer.Unregister(WorkerPoolSize)
	}
}

// RecordTestExecution records the outcome ("ok" or "errored") and
// duration of a single test execution.
func RecordTestExecution(test string, outcome string, duration time.Duration) {
	if duration < 0 {
		duration = 0
	}
	TestExecutions.WithLabelValues(test, outcome).Inc()
	TestDuration.WithLabelValues(test).Observe(duration.Seconds())
}

// RecordRunnerRun records the total duration of one TestRunner run.
func RecordRunnerRun(duration time.Duration) {
	if duration < 0 {
		duration = 0
	}
	RunnerDuration.Observe(duration.Seconds())
}

// SetWorkerPoolSize publishes the current worker pool size.
func SetWorkerPoolSize(size int) {
	WorkerPoolSize.Set(float64(size))
}
