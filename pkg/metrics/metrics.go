package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all procurement service metrics
type Metrics struct {
	serviceName string
	registry    *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Dispatch metrics
	EventsDispatched    *prometheus.CounterVec
	EventsEnqueued      *prometheus.CounterVec
	ListenerInvocations *prometheus.CounterVec
	ListenerFailures    *prometheus.CounterVec
	DispatchHistorySize prometheus.Gauge

	// MongoDB metrics
	MongoDBOperations        *prometheus.CounterVec
	MongoDBOperationDuration *prometheus.HistogramVec

	// Business metrics
	OrdersCreated   *prometheus.CounterVec
	InquiriesQuoted prometheus.Counter

	// Circuit breaker metrics
	CircuitBreakerState *prometheus.GaugeVec
}

// Config holds metrics configuration
type Config struct {
	ServiceName string
	Namespace   string
}

// DefaultConfig returns default metrics configuration
func DefaultConfig(serviceName string) *Config {
	return &Config{
		ServiceName: serviceName,
		Namespace:   "procurement",
	}
}

// New creates a new Metrics instance
func New(config *Config) *Metrics {
	registry := prometheus.NewRegistry()

	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{
		serviceName: config.ServiceName,
		registry:    registry,
	}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latencies",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)

	m.HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Name:      "http_requests_in_flight",
			Help:      "Current number of in-flight HTTP requests",
		},
	)

	m.EventsDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "events_dispatched_total",
			Help:      "Total number of dispatched domain events by outcome",
		},
		[]string{"event", "outcome"},
	)

	m.EventsEnqueued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "events_enqueued_total",
			Help:      "Total number of async events handed to the queue",
		},
		[]string{"topic", "status"},
	)

	m.ListenerInvocations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "listener_invocations_total",
			Help:      "Total number of synchronous listener invocations",
		},
		[]string{"listener", "event"},
	)

	m.ListenerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "listener_failures_total",
			Help:      "Total number of synchronous listener failures",
		},
		[]string{"listener", "event"},
	)

	m.DispatchHistorySize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Name:      "dispatch_history_size",
			Help:      "Current number of entries in the dispatch history",
		},
	)

	m.MongoDBOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "mongodb_operations_total",
			Help:      "Total number of MongoDB operations",
		},
		[]string{"collection", "operation", "status"},
	)

	m.MongoDBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "mongodb_operation_duration_seconds",
			Help:      "MongoDB operation latencies",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"collection", "operation"},
	)

	m.OrdersCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "orders_created_total",
			Help:      "Total number of orders created",
		},
		[]string{"currency"},
	)

	m.InquiriesQuoted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "inquiries_quoted_total",
			Help:      "Total number of inquiries quoted",
		},
	)

	m.CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.EventsDispatched,
		m.EventsEnqueued,
		m.ListenerInvocations,
		m.ListenerFailures,
		m.DispatchHistorySize,
		m.MongoDBOperations,
		m.MongoDBOperationDuration,
		m.OrdersCreated,
		m.InquiriesQuoted,
		m.CircuitBreakerState,
	)

	return m
}

// Handler returns an HTTP handler exposing the registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records a completed HTTP request
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(m.serviceName, method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(m.serviceName, method, path).Observe(duration.Seconds())
}

// RecordMongoDBOperation records a MongoDB operation
func (m *Metrics) RecordMongoDBOperation(collection, operation string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	m.MongoDBOperations.WithLabelValues(collection, operation, status).Inc()
	m.MongoDBOperationDuration.WithLabelValues(collection, operation).Observe(duration.Seconds())
}
