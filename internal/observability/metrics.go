package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/spec-kit/ticket-api/internal/domain"
)

// Metrics holds the Prometheus collectors for the service.
type Metrics struct {
	Registry *prometheus.Registry

	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	errors         *prometheus.CounterVec
	ticketsCreated prometheus.Counter
	statusChanges  *prometheus.CounterVec
}

// NewMetrics registers collectors on a dedicated registry, along with the
// Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ticket_api_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ticket_api_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ticket_api_http_errors_total",
			Help: "Failed HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		ticketsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "ticket_api_tickets_created_total",
			Help: "Tickets created.",
		}),
		statusChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ticket_api_ticket_status_changes_total",
			Help: "Ticket updates by resulting status.",
		}, []string{"status"}),
	}
}

// RecordRequest observes a completed request.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method string, status int) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
}

// TicketCreated counts a persisted ticket.
func (m *Metrics) TicketCreated() {
	if m == nil {
		return
	}
	m.ticketsCreated.Inc()
}

// TicketStatusChanged counts an applied status update.
func (m *Metrics) TicketStatusChanged(status domain.TicketStatus) {
	if m == nil {
		return
	}
	m.statusChanges.WithLabelValues(string(status)).Inc()
}
