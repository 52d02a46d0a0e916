package exporter

import (
	"context"
	"fmt"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"k8s.io/apimachinery/pkg/util/clock"

	"github.com/kubernetes-reporting/atlas-billing-exporter/pkg/atlas"
	"github.com/kubernetes-reporting/atlas-billing-exporter/pkg/billing"
)

// Runner performs one fetch, aggregate and publish cycle.
type Runner interface {
	Run(ctx context.Context) (billing.Result, error)
}

// Exporter turns the pending invoice of one organization into gauges on a
// registry. It holds no aggregation state between cycles; every Run fetches
// and aggregates from scratch.
type Exporter struct {
	logger    logrus.FieldLogger
	fetcher   atlas.Fetcher
	publisher *Publisher
	clock     clock.Clock
	metrics   *cycleMetrics

	orgID   string
	timeout time.Duration
}

var _ Runner = (*Exporter)(nil)

// NewExporter registers the billing gauges and the exporter's own metrics on
// registerer.
func NewExporter(logger logrus.FieldLogger, fetcher atlas.Fetcher, registerer prometheus.Registerer, clock clock.Clock, orgID string, timeout time.Duration) (*Exporter, error) {
	logger = logger.WithFields(logrus.Fields{
		"component": "exporter",
		"org":       orgID,
	})
	e := &Exporter{
		logger:    logger,
		fetcher:   fetcher,
		publisher: NewPublisher(logger),
		clock:     clock,
		metrics:   newCycleMetrics(),
		orgID:     orgID,
		timeout:   timeout,
	}
	if err := registerAll(registerer, append(e.metrics.collectors(), e.publisher)...); err != nil {
		return nil, fmt.Errorf("unable to register billing metrics: %w", err)
	}
	return e, nil
}

// Run fetches the pending invoice, aggregates it and publishes the result.
// A fetch failure aborts the cycle, leaving the previously published
// snapshot in place.
func (e *Exporter) Run(ctx context.Context) (billing.Result, error) {
	start := e.clock.Now()
	defer func() {
		e.metrics.cycleDuration.Observe(e.clock.Since(start).Seconds())
	}()

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	invoice, err := e.fetcher.PendingInvoice(ctx, e.orgID)
	if err != nil {
		kind := atlas.Classify(err)
		e.metrics.fetchErrors.WithLabelValues(string(kind)).Inc()
		e.metrics.lastCycleSuccess.Set(0)
		e.logger.WithError(err).WithField("kind", kind).Error("unable to fetch pending invoice")
		return billing.Result{}, fmt.Errorf("unable to fetch pending invoice for org %s: %w", e.orgID, err)
	}
	e.logger.Debugf("invoice: %s", spew.Sprintf("%+v", invoice))

	now := e.clock.Now()
	res := billing.Aggregate(e.logger, invoice, now)
	e.publisher.Publish(res)

	e.metrics.lineItems.Set(float64(len(invoice.LineItems)))
	e.metrics.lastCycleSuccess.Set(1)
	e.metrics.lastSuccessTimestamp.Set(float64(now.Unix()))
	e.logger.WithFields(logrus.Fields{
		"invoice":   invoice.ID,
		"lineItems": len(invoice.LineItems),
		"totals":    len(res.Totals),
		"rates":     len(res.Rates),
	}).Debugf("published pending invoice")
	return res, nil
}
