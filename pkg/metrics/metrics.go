package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics records request counts and latency per route.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics registers the request metrics on the provided registerer.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route, and status class.",
	}, []string{"method", "route", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	reg.MustRegister(requests, duration)
	return &HTTPMetrics{requests: requests, duration: duration}
}

// Observe records one served request.
func (h *HTTPMetrics) Observe(method, route, status string, elapsed time.Duration) {
	if h == nil || h.requests == nil {
		return
	}
	method = normalizeLabel(method)
	route = normalizeLabel(route)
	h.requests.WithLabelValues(method, route, normalizeLabel(status)).Inc()
	h.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// InferenceMetrics records conversation turn outcomes against the model runtime.
type InferenceMetrics struct {
	turns    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewInferenceMetrics registers the inference metrics on the provided registerer.
func NewInferenceMetrics(reg prometheus.Registerer) *InferenceMetrics {
	if reg == nil {
		return &InferenceMetrics{}
	}
	turns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inference_turns_total",
		Help: "Conversation turns by model and outcome.",
	}, []string{"model", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inference_duration_seconds",
		Help:    "Streamed inference latency in seconds.",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	}, []string{"model"})
	reg.MustRegister(turns, duration)
	return &InferenceMetrics{turns: turns, duration: duration}
}

// ObserveTurn records one completed turn. Outcome is "ok", "empty", or "error".
func (i *InferenceMetrics) ObserveTurn(model, outcome string, elapsed time.Duration) {
	if i == nil || i.turns == nil {
		return
	}
	model = normalizeLabel(model)
	i.turns.WithLabelValues(model, normalizeLabel(outcome)).Inc()
	i.duration.WithLabelValues(model).Observe(elapsed.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
