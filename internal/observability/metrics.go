package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the prometheus collectors of one bot process.
type Metrics struct {
	Registry *prometheus.Registry

	ticketsOpened  *prometheus.CounterVec
	ticketsClosed  *prometheus.CounterVec
	ticketsActive  prometheus.Gauge
	claims         prometheus.Counter
	warnings       prometheus.Counter
	reviews        *prometheus.CounterVec
	commands       *prometheus.CounterVec
	queueJobs      *prometheus.HistogramVec
	sweepDuration  prometheus.Histogram
	httpRequests   *prometheus.CounterVec
	notifyFailures *prometheus.CounterVec
}

// NewMetrics registers every collector on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		ticketsOpened: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nuvix_tickets_opened_total",
			Help: "Tickets opened, by category.",
		}, []string{"category"}),
		ticketsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nuvix_tickets_closed_total",
			Help: "Tickets closed, by how they ended.",
		}, []string{"reason"}),
		ticketsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nuvix_tickets_active",
			Help: "Tickets currently open.",
		}),
		claims: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nuvix_ticket_claims_total",
			Help: "Ticket assignments.",
		}),
		warnings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nuvix_inactivity_warnings_total",
			Help: "Inactivity warnings sent.",
		}),
		reviews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nuvix_reviews_total",
			Help: "Reviews submitted, by stars.",
		}, []string{"stars"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nuvix_commands_total",
			Help: "Interactions handled, by name and outcome code.",
		}, []string{"command", "outcome"}),
		queueJobs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nuvix_queue_job_seconds",
			Help:    "Time spent running command queue jobs.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nuvix_sweep_seconds",
			Help:    "Inactivity sweep duration.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nuvix_http_requests_total",
			Help: "HTTP requests, by route, method and status.",
		}, []string{"path", "method", "status"}),
		notifyFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nuvix_notification_failures_total",
			Help: "Notifications that could not be delivered.",
		}, []string{"kind"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ticketsOpened, m.ticketsClosed, m.ticketsActive, m.claims, m.warnings,
		m.reviews, m.commands, m.queueJobs, m.sweepDuration, m.httpRequests, m.notifyFailures,
	)
	return m
}

// Nil receivers are allowed everywhere so tests can skip metrics.

func (m *Metrics) TicketOpened(category string) {
	if m == nil {
		return
	}
	m.ticketsOpened.WithLabelValues(category).Inc()
	m.ticketsActive.Inc()
}

func (m *Metrics) TicketClosed(reason string) {
	if m == nil {
		return
	}
	m.ticketsClosed.WithLabelValues(reason).Inc()
	m.ticketsActive.Dec()
}

// SetActiveTickets resets the gauge after loading the store.
func (m *Metrics) SetActiveTickets(n int) {
	if m == nil {
		return
	}
	m.ticketsActive.Set(float64(n))
}

func (m *Metrics) TicketClaimed() {
	if m == nil {
		return
	}
	m.claims.Inc()
}

func (m *Metrics) InactivityWarned() {
	if m == nil {
		return
	}
	m.warnings.Inc()
}

func (m *Metrics) ReviewSubmitted(stars string) {
	if m == nil {
		return
	}
	m.reviews.WithLabelValues(stars).Inc()
}

func (m *Metrics) RecordCommand(command, outcome string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(command, outcome).Inc()
}

func (m *Metrics) RecordJob(job string, duration time.Duration) {
	if m == nil {
		return
	}
	m.queueJobs.WithLabelValues(job).Observe(duration.Seconds())
}

func (m *Metrics) RecordSweep(duration time.Duration) {
	if m == nil {
		return
	}
	m.sweepDuration.Observe(duration.Seconds())
}

func (m *Metrics) RecordRequest(path, method, status string) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(path, method, status).Inc()
}

func (m *Metrics) NotificationFailed(kind string) {
	if m == nil {
		return
	}
	m.notifyFailures.WithLabelValues(kind).Inc()
}
