package exporter

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubernetes-reporting/atlas-billing-exporter/pkg/atlas"
	"github.com/kubernetes-reporting/atlas-billing-exporter/pkg/billing"
)

func TestPublisherCollect(t *testing.T) {
	publisher := NewPublisher(testLogger)
	assert.Equal(t, 0, testutil.CollectAndCount(publisher), "nothing is exported before the first publish")

	publisher.Publish(billing.Aggregate(testLogger, newTestInvoice(), testNow))

	expected := `
# HELP atlas_billing_item_cents_total Total billed cents on the pending invoice per cluster and SKU.
# TYPE atlas_billing_item_cents_total gauge
atlas_billing_item_cents_total{cluster_name="",group_name="billing",sku="SUPPORT"} 4800
atlas_billing_item_cents_total{cluster_name="old",group_name="billing",sku="ATLAS_INSTANCE"} 1000
atlas_billing_item_cents_total{cluster_name="prod",group_name="billing",sku="ATLAS_INSTANCE"} 800
# HELP atlas_billing_item_cents_rate Hourly billing rate per cluster and SKU over line items that ended in the last 30 hours.
# TYPE atlas_billing_item_cents_rate gauge
atlas_billing_item_cents_rate{cluster_name="",group_name="billing",sku="SUPPORT"} 2
atlas_billing_item_cents_rate{cluster_name="prod",group_name="billing",sku="ATLAS_INSTANCE"} 1
`
	require.NoError(t, testutil.CollectAndCompare(publisher, strings.NewReader(expected)))
}

func TestPublisherReplacesSnapshot(t *testing.T) {
	publisher := NewPublisher(testLogger)
	publisher.Publish(billing.Aggregate(testLogger, newTestInvoice(), testNow))
	assert.Equal(t, 5, testutil.CollectAndCount(publisher))

	publisher.Publish(billing.Result{Totals: billing.Summaries{}, Rates: billing.Summaries{}})
	assert.Equal(t, 0, testutil.CollectAndCount(publisher))
}

func TestPublisherSkipsUndefinedRates(t *testing.T) {
	fresh := testNow.Add(-time.Hour).Format(time.RFC3339)
	invoice := &atlas.Invoice{LineItems: []atlas.LineItem{
		{ClusterName: strPtr("prod"), SKU: "FREE_TIER", Unit: "GB hours", Quantity: 0, TotalPriceCents: 0, EndDate: fresh},
	}}

	publisher := NewPublisher(testLogger)
	publisher.Publish(billing.Aggregate(testLogger, invoice, testNow))

	expected := `
# HELP atlas_billing_item_cents_total Total billed cents on the pending invoice per cluster and SKU.
# TYPE atlas_billing_item_cents_total gauge
atlas_billing_item_cents_total{cluster_name="prod",group_name="",sku="FREE_TIER"} 0
`
	require.NoError(t, testutil.CollectAndCompare(publisher, strings.NewReader(expected)))
}

func TestPublisherLabelCollision(t *testing.T) {
	fresh := testNow.Add(-time.Hour).Format(time.RFC3339)
	invoice := &atlas.Invoice{LineItems: []atlas.LineItem{
		{SKU: "SUPPORT", Unit: "days", Quantity: 1, TotalPriceCents: 100, EndDate: fresh},
		{ClusterName: strPtr(""), SKU: "SUPPORT", Unit: "days", Quantity: 1, TotalPriceCents: 200, EndDate: fresh},
	}}

	publisher := NewPublisher(testLogger)
	publisher.Publish(billing.Aggregate(testLogger, invoice, testNow))

	// "SUPPORT" sorts before "_SUPPORT" and wins
	expected := `
# HELP atlas_billing_item_cents_total Total billed cents on the pending invoice per cluster and SKU.
# TYPE atlas_billing_item_cents_total gauge
atlas_billing_item_cents_total{cluster_name="",group_name="",sku="SUPPORT"} 100
`
	require.NoError(t, testutil.CollectAndCompare(publisher, strings.NewReader(expected), "atlas_billing_item_cents_total"))
}
