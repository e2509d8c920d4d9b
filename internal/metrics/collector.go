package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Prometheus struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestLatency  *prometheus.HistogramVec
	propagations    *prometheus.CounterVec
	propagationSize prometheus.Histogram
	postings        *prometheus.CounterVec
	postedLines     *prometheus.CounterVec
}

func NewPrometheus(namespace string) *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		requestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		propagations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "balance_propagations_total",
				Help:      "Balance propagation walks by stop reason",
			},
			[]string{"stop_reason"},
		),
		propagationSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "balance_propagation_ancestors",
				Help:      "Number of ancestors updated per propagation walk",
				Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
			},
		),
		postings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "journal_postings_total",
				Help:      "Journal entries posted or voided",
			},
			[]string{"action"},
		),
		postedLines: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "journal_posted_lines_total",
				Help:      "Journal lines applied to account balances",
			},
			[]string{"action"},
		),
	}

	p.registry.MustRegister(
		p.requests,
		p.requestLatency,
		p.propagations,
		p.propagationSize,
		p.postings,
		p.postedLines,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

func (p *Prometheus) RecordRequest(method, route string, status int, duration time.Duration) {
	p.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.requestLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (p *Prometheus) RecordPropagation(steps int, stopReason string) {
	p.propagations.WithLabelValues(stopReason).Inc()
	p.propagationSize.Observe(float64(steps))
}

func (p *Prometheus) RecordPosting(action string, lines int) {
	p.postings.WithLabelValues(action).Inc()
	p.postedLines.WithLabelValues(action).Add(float64(lines))
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
