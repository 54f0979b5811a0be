// Package metrics exposes Prometheus metrics for store operations and the
// HTTP API.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/meur/tierrank/internal/ranking"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels.
const (
	ResultOK         = "ok"
	ResultValidation = "validation"
	ResultNotFound   = "not_found"
	ResultConflict   = "conflict"
	ResultError      = "error"
)

// Recorder owns a private registry and the metrics registered on it.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry

	operations    *prometheus.CounterVec
	opDuration    *prometheus.HistogramVec
	lastRecompute prometheus.Gauge
	httpRequests  *prometheus.CounterVec
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithNamespace overrides the metric namespace (default "rankd").
func WithNamespace(ns string) Option {
	return func(r *Recorder) {
		if ns != "" {
			r.namespace = ns
		}
	}
}

// WithBuckets overrides the duration histogram buckets.
func WithBuckets(b []float64) Option {
	return func(r *Recorder) {
		if len(b) > 0 {
			r.buckets = b
		}
	}
}

// New creates a Recorder with its own registry.
func New(opts ...Option) *Recorder {
	r := &Recorder{
		namespace: "rankd",
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(r)
	}

	auto := promauto.With(r.registry)
	r.operations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Subsystem: "store",
		Name:      "operations_total",
		Help:      "Store operations by name and outcome",
	}, []string{"op", "result"})
	r.opDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: r.namespace,
		Subsystem: "store",
		Name:      "operation_duration_seconds",
		Help:      "Wall time of store operations including the transaction commit",
		Buckets:   r.buckets,
	}, []string{"op"})
	r.lastRecompute = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: r.namespace,
		Subsystem: "store",
		Name:      "last_recompute_items",
		Help:      "Number of items renumbered by the most recent recompute",
	})
	r.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route pattern, method and status code",
	}, []string{"route", "method", "status_code"})
	return r
}

// ObserveOperation records one store operation that began at started.
func (r *Recorder) ObserveOperation(op string, started time.Time, err error) {
	if r == nil {
		return
	}
	r.operations.WithLabelValues(op, Result(err)).Inc()
	r.opDuration.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

// SetRecomputed records the size of the latest recompute.
func (r *Recorder) SetRecomputed(n int) {
	if r == nil {
		return
	}
	r.lastRecompute.Set(float64(n))
}

// ObserveHTTP counts one served request.
func (r *Recorder) ObserveHTTP(route, method string, status int) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Result classifies err into a result label.
func Result(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, ranking.ErrValidation):
		return ResultValidation
	case errors.Is(err, ranking.ErrNotFound):
		return ResultNotFound
	case errors.Is(err, ranking.ErrConflict):
		return ResultConflict
	default:
		return ResultError
	}
}
