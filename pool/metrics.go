package pool

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for worker pools. All series
// carry a pool_name label so one Metrics instance can serve any number
// of pools registered against the same registry.
type Metrics struct {
	TasksSubmitted *prometheus.CounterVec
	TasksCompleted *prometheus.CounterVec
	TasksFailed    *prometheus.CounterVec
	TasksAborted   *prometheus.CounterVec
	TaskLatency    *prometheus.HistogramVec
	QueueSize      *prometheus.GaugeVec
	WorkerCount    *prometheus.GaugeVec
	IdleWorkers    *prometheus.GaugeVec
}

// NewMetrics creates and registers the pool metrics with the given
// registerer. Pass prometheus.DefaultRegisterer for the usual global
// registry, or a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TasksSubmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workerpool_tasks_submitted_total",
				Help: "Total number of tasks submitted to the pool",
			},
			[]string{"pool_name"},
		),
		TasksCompleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workerpool_tasks_completed_total",
				Help: "Total number of tasks completed successfully",
			},
			[]string{"pool_name"},
		),
		TasksFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workerpool_tasks_failed_total",
				Help: "Total number of tasks that returned an error or panicked",
			},
			[]string{"pool_name"},
		),
		TasksAborted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workerpool_tasks_aborted_total",
				Help: "Total number of queued tasks discarded without execution",
			},
			[]string{"pool_name"},
		),
		TaskLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "workerpool_task_duration_seconds",
				Help:    "Duration of task execution in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"pool_name"},
		),
		QueueSize: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "workerpool_queue_size",
				Help: "Current number of pending tasks in the queue",
			},
			[]string{"pool_name"},
		),
		WorkerCount: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "workerpool_worker_count",
				Help: "Current number of workers in the pool",
			},
			[]string{"pool_name"},
		),
		IdleWorkers: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "workerpool_idle_workers",
				Help: "Current number of workers parked waiting for work",
			},
			[]string{"pool_name"},
		),
	}
}

// RecordTaskSubmitted increments the submitted counter.
func (m *Metrics) RecordTaskSubmitted(poolName string) {
	m.TasksSubmitted.WithLabelValues(poolName).Inc()
}

// RecordTaskCompleted increments the completed counter.
func (m *Metrics) RecordTaskCompleted(poolName string) {
	m.TasksCompleted.WithLabelValues(poolName).Inc()
}

// RecordTaskFailed increments the failed counter.
func (m *Metrics) RecordTaskFailed(poolName string) {
	m.TasksFailed.WithLabelValues(poolName).Inc()
}

// RecordTasksAborted adds n discarded tasks to the aborted counter.
func (m *Metrics) RecordTasksAborted(poolName string, n int) {
	m.TasksAborted.WithLabelValues(poolName).Add(float64(n))
}

// ObserveTaskLatency records one task's execution duration.
func (m *Metrics) ObserveTaskLatency(poolName string, seconds float64) {
	m.TaskLatency.WithLabelValues(poolName).Observe(seconds)
}

// SetQueueSize sets the pending-task gauge.
func (m *Metrics) SetQueueSize(poolName string, size int) {
	m.QueueSize.WithLabelValues(poolName).Set(float64(size))
}

// SetWorkerCount sets the worker-count gauge.
func (m *Metrics) SetWorkerCount(poolName string, count int) {
	m.WorkerCount.WithLabelValues(poolName).Set(float64(count))
}

// SetIdleWorkers sets the idle-worker gauge.
func (m *Metrics) SetIdleWorkers(poolName string, count int) {
	m.IdleWorkers.WithLabelValues(poolName).Set(float64(count))
}
