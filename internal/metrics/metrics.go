// Package metrics provides Prometheus metrics for scheduling runs and the
// HTTP server.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/cpm"
	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/model"
)

// ScheduleRuns counts scheduling attempts by outcome.
var ScheduleRuns = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ganttloom",
	Name:      "schedule_runs_total",
	Help:      "Total scheduling runs by outcome.",
}, []string{"outcome"})

// ScheduleDuration tracks how long a full analysis takes.
var ScheduleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "ganttloom",
	Name:      "schedule_duration_seconds",
	Help:      "Time spent scheduling a project.",
	Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
})

// TasksScheduled is the task count of the most recent successful run.
var TasksScheduled = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "ganttloom",
	Name:      "tasks_scheduled",
	Help:      "Number of tasks in the last scheduled project.",
})

// ConstraintWarnings counts constraint conflicts by constraint kind.
var ConstraintWarnings = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ganttloom",
	Name:      "constraint_warnings_total",
	Help:      "Constraint conflicts reported by the scheduler.",
}, []string{"kind"})

// HTTPRequests counts API requests by route and status code.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ganttloom",
	Name:      "http_requests_total",
	Help:      "HTTP requests served.",
}, []string{"route", "code"})

// ObserveRun records one scheduling attempt.
func ObserveRun(res *cpm.Result, err error, elapsed time.Duration) {
	ScheduleDuration.Observe(elapsed.Seconds())
	ScheduleRuns.WithLabelValues(Outcome(err)).Inc()
	if err != nil || res == nil {
		return
	}
	TasksScheduled.Set(float64(len(res.Tasks)))
	for _, w := range res.Warnings {
		ConstraintWarnings.WithLabelValues(string(w.Kind)).Inc()
	}
}

// Outcome maps a scheduling error to a low-cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, model.ErrParse):
		return "parse_error"
	case errors.Is(err, model.ErrConfiguration):
		return "configuration_error"
	case errors.Is(err, model.ErrValidation):
		return "validation_error"
	case errors.Is(err, model.ErrCycle):
		return "cycle"
	case errors.Is(err, model.ErrEngineInvariant):
		return "invariant_violation"
	default:
		return "error"
	}
}
