// file: internal/metrics/metrics.go
// version: 2.0.0
// guid: 868ddd5e-8f05-4d03-a3e9-cd75d5efc15f

package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	upstreamRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "newsdeck",
		Name:      "upstream_requests_total",
		Help:      "Total number of upstream provider requests by source and outcome",
	}, []string{"source", "outcome"})
	upstreamDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "newsdeck",
		Name:      "upstream_request_duration_seconds",
		Help:      "Histogram of upstream request durations in seconds by source",
		Buckets:   prometheus.ExponentialBuckets(0.05, 1.6, 10),
	}, []string{"source"})

	cacheReads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "newsdeck",
		Name:      "cache_reads_total",
		Help:      "Cache reads by slot and result (hit, miss, expired, stale, corrupt)",
	}, []string{"slot", "result"})
	cacheWriteFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "newsdeck",
		Name:      "cache_write_failures_total",
		Help:      "Best-effort cache writes that failed to persist, by slot",
	}, []string{"slot"})

	feedOrigins = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "newsdeck",
		Name:      "feed_results_total",
		Help:      "News feed results by origin (live, cache, fallback, none)",
	}, []string{"origin"})

	taskStarted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "newsdeck",
		Name:      "tasks_started_total",
		Help:      "Supervised tasks started by slot",
	}, []string{"slot"})
	taskCompleted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "newsdeck",
		Name:      "tasks_completed_total",
		Help:      "Supervised tasks completed by slot",
	}, []string{"slot"})
	taskFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "newsdeck",
		Name:      "tasks_failed_total",
		Help:      "Supervised tasks failed by slot",
	}, []string{"slot"})
	taskCanceled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "newsdeck",
		Name:      "tasks_canceled_total",
		Help:      "Supervised tasks canceled or superseded by slot",
	}, []string{"slot"})
	taskDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "newsdeck",
		Name:      "task_duration_seconds",
		Help:      "Histogram of supervised task durations in seconds by slot",
		Buckets:   prometheus.ExponentialBuckets(0.05, 1.6, 10),
	}, []string{"slot"})
	resultsDiscarded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "newsdeck",
		Name:      "results_discarded_total",
		Help:      "Results dropped because their generation was superseded, by slot",
	}, []string{"slot"})

	activeTasksGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "newsdeck",
		Name:      "active_tasks",
		Help:      "Number of supervised tasks currently running",
	})
	sseClientsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "newsdeck",
		Name:      "sse_clients",
		Help:      "Number of connected server-sent event clients",
	})
	memoryAllocGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "newsdeck",
		Name:      "process_memory_alloc_bytes",
		Help:      "Current process memory allocation (runtime.Alloc)",
	})
	goroutinesGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "newsdeck",
		Name:      "process_goroutines",
		Help:      "Number of currently running goroutines",
	})
)

// Register initializes metrics with the global Prometheus registry (idempotent)
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(upstreamRequests, upstreamDuration, cacheReads, cacheWriteFailures, feedOrigins,
			taskStarted, taskCompleted, taskFailed, taskCanceled, taskDuration, resultsDiscarded,
			activeTasksGauge, sseClientsGauge, memoryAllocGauge, goroutinesGauge)
	})
}

// Upstream helpers
func IncUpstream(source, outcome string) { upstreamRequests.WithLabelValues(source, outcome).Inc() }
func ObserveUpstreamDuration(source string, d time.Duration) {
	upstreamDuration.WithLabelValues(source).Observe(d.Seconds())
}

// Cache helpers
func IncCacheRead(slot, result string)  { cacheReads.WithLabelValues(slot, result).Inc() }
func IncCacheWriteFailure(slot string)  { cacheWriteFailures.WithLabelValues(slot).Inc() }
func IncFeedOrigin(origin string)       { feedOrigins.WithLabelValues(origin).Inc() }
func IncResultDiscarded(slot string)    { resultsDiscarded.WithLabelValues(slot).Inc() }

// Task lifecycle helpers
func IncTaskStarted(slot string)   { taskStarted.WithLabelValues(slot).Inc() }
func IncTaskCompleted(slot string) { taskCompleted.WithLabelValues(slot).Inc() }
func IncTaskFailed(slot string)    { taskFailed.WithLabelValues(slot).Inc() }
func IncTaskCanceled(slot string)  { taskCanceled.WithLabelValues(slot).Inc() }
func ObserveTaskDuration(slot string, d time.Duration) {
	taskDuration.WithLabelValues(slot).Observe(d.Seconds())
}

// Gauges
func SetActiveTasks(n int)    { activeTasksGauge.Set(float64(n)) }
func SetSSEClients(n int)     { sseClientsGauge.Set(float64(n)) }
func SetMemoryAlloc(b uint64) { memoryAllocGauge.Set(float64(b)) }
func SetGoroutines(n int)     { goroutinesGauge.Set(float64(n)) }
