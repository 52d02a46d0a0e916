package exporter

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kubernetes-reporting/atlas-billing-exporter/pkg/atlas"
)

const exporterSubsystem = "exporter"

type cycleMetrics struct {
	fetchErrors          *prometheus.CounterVec
	lastCycleSuccess     prometheus.Gauge
	lastSuccessTimestamp prometheus.Gauge
	cycleDuration        prometheus.Histogram
	lineItems            prometheus.Gauge
}

func newCycleMetrics() *cycleMetrics {
	m := &cycleMetrics{
		fetchErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: exporterSubsystem,
				Name:      "fetch_errors_total",
				Help:      "Number of failed pending invoice fetches by kind.",
			},
			[]string{"kind"},
		),
		lastCycleSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: exporterSubsystem,
			Name:      "last_cycle_success",
			Help:      "1 if the last fetch and aggregation succeeded, 0 otherwise.",
		}),
		lastSuccessTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: exporterSubsystem,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful fetch and aggregation.",
		}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: exporterSubsystem,
			Name:      "cycle_duration_seconds",
			Help:      "Time spent fetching and aggregating the pending invoice.",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}),
		lineItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: exporterSubsystem,
			Name:      "line_items",
			Help:      "Number of line items on the last fetched pending invoice.",
		}),
	}
	for _, kind := range atlas.AllErrorKinds {
		m.fetchErrors.WithLabelValues(string(kind)).Add(0)
	}
	return m
}

func (m *cycleMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.fetchErrors,
		m.lastCycleSuccess,
		m.lastSuccessTimestamp,
		m.cycleDuration,
		m.lineItems,
	}
}

type httpMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newHTTPMetrics() *httpMetrics {
	return &httpMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: exporterSubsystem,
				Name:      "http_requests_total",
				Help:      "Number of HTTP requests served by handler, method and status code.",
			},
			[]string{"handler", "method", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: exporterSubsystem,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by handler.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"handler"},
		),
	}
}

func (m *httpMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.requests, m.duration}
}

func registerAll(registerer prometheus.Registerer, collectors ...prometheus.Collector) error {
	for _, c := range collectors {
		if err := registerer.Register(c); err != nil {
			return err
		}
	}
	return nil
}
