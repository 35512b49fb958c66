package pool

import (
	"log/slog"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Option is a functional option for configuring a pool.
type Option func(*config)

type config struct {
	workers    int
	name       string
	logger     *slog.Logger
	limiter    *rate.Limiter
	metrics    *Metrics
	beforeTask func(workerID int)
	afterTask  func(workerID int, err error)
}

func defaultConfig() config {
	return config{
		workers: runtime.GOMAXPROCS(0),
		name:    "pool-" + uuid.NewString()[:8],
		logger:  slog.New(disabledHandler{}),
	}
}

// WithWorkers sets the initial number of workers. Zero is valid: the
// pool queues submissions and runs nothing until resized up. If not
// specified, defaults to runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(cfg *config) {
		if n >= 0 {
			cfg.workers = n
		}
	}
}

// WithName sets the pool's name, used in log records and as the metric
// label. If not specified, a short random name is generated.
func WithName(name string) Option {
	return func(cfg *config) {
		if name != "" {
			cfg.name = name
		}
	}
}

// WithLogger sets the structured logger for pool lifecycle events.
// If not specified, logging is disabled.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// WithRateLimit caps task throughput. tasksPerSecond is the sustained
// rate, burst the number of tasks allowed to start back to back. Workers
// wait on the limiter before starting each task. Useful for pools whose
// callables hit external services.
//
// Example:
//
//	WithRateLimit(10, 5) // 10 tasks/sec with a burst of 5
func WithRateLimit(tasksPerSecond float64, burst int) Option {
	return func(cfg *config) {
		if tasksPerSecond > 0 && burst > 0 {
			cfg.limiter = rate.NewLimiter(rate.Limit(tasksPerSecond), burst)
		}
	}
}

// WithMetrics attaches Prometheus instrumentation. The same Metrics
// instance may be shared by several pools; series are distinguished by
// the pool name label.
func WithMetrics(m *Metrics) Option {
	return func(cfg *config) {
		cfg.metrics = m
	}
}

// WithBeforeTask registers a hook invoked on the worker goroutine just
// before each task runs.
func WithBeforeTask(fn func(workerID int)) Option {
	return func(cfg *config) {
		cfg.beforeTask = fn
	}
}

// WithAfterTask registers a hook invoked on the worker goroutine after
// each task, with the task's error (nil on success, the recovered panic
// otherwise).
func WithAfterTask(fn func(workerID int, err error)) Option {
	return func(cfg *config) {
		cfg.afterTask = fn
	}
}
