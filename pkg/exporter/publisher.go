package exporter

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/kubernetes-reporting/atlas-billing-exporter/pkg/atlas"
	"github.com/kubernetes-reporting/atlas-billing-exporter/pkg/billing"
)

const namespace = "atlas_billing"

var itemLabels = []string{"cluster_name", "group_name", "sku"}

// Publisher exposes the most recently published aggregation as gauges. Each
// Publish replaces the previous snapshot, so meters that drop off the
// pending invoice stop being exported.
type Publisher struct {
	logger logrus.FieldLogger

	mu       sync.RWMutex
	snapshot *billing.Result

	totalDesc *prometheus.Desc
	rateDesc  *prometheus.Desc
}

var _ prometheus.Collector = (*Publisher)(nil)

func NewPublisher(logger logrus.FieldLogger) *Publisher {
	return &Publisher{
		logger: logger.WithField("component", "publisher"),
		totalDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "item", "cents_total"),
			"Total billed cents on the pending invoice per cluster and SKU.",
			itemLabels, nil,
		),
		rateDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "item", "cents_rate"),
			"Hourly billing rate per cluster and SKU over line items that ended in the last 30 hours.",
			itemLabels, nil,
		),
	}
}

// Publish records res as the current snapshot.
func (p *Publisher) Publish(res billing.Result) {
	p.mu.Lock()
	p.snapshot = &res
	p.mu.Unlock()
}

// Describe sends the super-set of all possible descriptors of metrics
// collected by this Collector.
func (p *Publisher) Describe(ch chan<- *prometheus.Desc) {
	ch <- p.totalDesc
	ch <- p.rateDesc
}

// Collect is called by the Prometheus registry when collecting metrics.
func (p *Publisher) Collect(ch chan<- prometheus.Metric) {
	p.mu.RLock()
	snapshot := p.snapshot
	p.mu.RUnlock()
	if snapshot == nil {
		return
	}

	seen := make(map[string]bool, len(snapshot.Totals))
	for _, key := range snapshot.Totals.Keys() {
		summary := snapshot.Totals[key]
		labels := summaryLabels(summary)
		if !p.firstSeen(seen, key, labels) {
			continue
		}
		ch <- prometheus.MustNewConstMetric(p.totalDesc, prometheus.GaugeValue, float64(summary.TotalPriceCents), labels...)
	}

	seen = make(map[string]bool, len(snapshot.Rates))
	for _, key := range snapshot.Rates.Keys() {
		summary := snapshot.Rates[key]
		rate, ok := summary.HourlyRate()
		if !ok {
			p.logger.WithField("key", key).Debugf("no hourly rate for %s, quantity is %v", key, summary.Quantity)
			continue
		}
		labels := summaryLabels(summary)
		if !p.firstSeen(seen, key, labels) {
			continue
		}
		ch <- prometheus.MustNewConstMetric(p.rateDesc, prometheus.GaugeValue, rate, labels...)
	}
}

// firstSeen guards against two keys mapping onto the same label set, for
// example a missing cluster name and an empty one. The registry rejects
// duplicate series, so only the first one is kept.
func (p *Publisher) firstSeen(seen map[string]bool, key string, labels []string) bool {
	id := strings.Join(labels, "\xff")
	if seen[id] {
		p.logger.WithField("key", key).Warnf("skipping %s, its labels collide with another key", key)
		return false
	}
	seen[id] = true
	return true
}

func summaryLabels(s *billing.Summary) []string {
	return []string{
		atlas.StringValue(s.ClusterName),
		atlas.StringValue(s.GroupName),
		s.SKU,
	}
}
