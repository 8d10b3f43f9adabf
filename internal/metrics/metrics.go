package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "callcenter_insights"

// Metrics holds all application metrics on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	queriesTotal     *prometheus.CounterVec
	fallbacksTotal   *prometheus.CounterVec
	llmRequestsTotal *prometheus.CounterVec
	llmRetriesTotal  prometheus.Counter
	llmDuration      prometheus.Histogram
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		queriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Analytics queries answered, by intent and answer source.",
		}, []string{"intent", "source"}),
		fallbacksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallbacks_total",
			Help:      "Free-form queries answered locally because the reasoning backend failed.",
		}, []string{"reason"}),
		llmRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Calls to the reasoning backend, by outcome.",
		}, []string{"outcome"}),
		llmRetriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_retries_total",
			Help:      "Backoff sleeps taken before retrying the reasoning backend.",
		}),
		llmDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "Wall time of reasoning backend calls, including throttling and retries.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.queriesTotal,
		m.fallbacksTotal,
		m.llmRequestsTotal,
		m.llmRetriesTotal,
		m.llmDuration,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

func (m *Metrics) ObserveQuery(intent, source string) {
	m.queriesTotal.WithLabelValues(intent, source).Inc()
}

func (m *Metrics) ObserveFallback(reason string) {
	m.fallbacksTotal.WithLabelValues(reason).Inc()
}

// ObserveLLM records one backend call; outcome is "ok" or an error kind.
func (m *Metrics) ObserveLLM(outcome string, d time.Duration) {
	m.llmRequestsTotal.WithLabelValues(outcome).Inc()
	m.llmDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveRetry() {
	m.llmRetriesTotal.Inc()
}

func (m *Metrics) ObserveHTTP(route, method string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
