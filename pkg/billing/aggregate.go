package billing

import (
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kubernetes-reporting/atlas-billing-exporter/pkg/atlas"
)

// FreshnessWindow is how recent a line item's end date must be for the item
// to count towards the current hourly rate.
const FreshnessWindow = 30 * time.Hour

var hourlyUnits = map[string]bool{
	"GB hours":     true,
	"server hours": true,
}

// Summary is the sum of every line item sharing a key. Descriptive fields
// come from the first line item seen for the key and are never updated.
type Summary struct {
	ClusterName     *string `json:"clusterName,omitempty"`
	GroupName       *string `json:"groupName,omitempty"`
	SKU             string  `json:"sku"`
	Unit            string  `json:"unit"`
	Quantity        float64 `json:"quantity"`
	TotalPriceCents int64   `json:"totalPriceCents"`
	EndDate         string  `json:"endDate"`
}

// HourlyRate returns the summary's price per hour in dollars. Day
// denominated units are converted to hours. ok is false when no finite rate
// exists, which happens when the quantity is zero.
func (s *Summary) HourlyRate() (rate float64, ok bool) {
	if s.Quantity == 0 {
		return 0, false
	}
	rate = float64(s.TotalPriceCents) / s.Quantity / 100.0
	if !hourlyUnits[s.Unit] {
		rate = rate / 24.0
	}
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, false
	}
	return rate, true
}

// Summaries maps a line item key to its summary.
type Summaries map[string]*Summary

// Keys returns the keys of s in sorted order.
func (s Summaries) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s Summaries) add(key string, item atlas.LineItem) (inserted bool) {
	existing, ok := s[key]
	if !ok {
		s[key] = &Summary{
			ClusterName:     copyString(item.ClusterName),
			GroupName:       copyString(item.GroupName),
			SKU:             item.SKU,
			Unit:            item.Unit,
			Quantity:        item.Quantity,
			TotalPriceCents: item.TotalPriceCents,
			EndDate:         item.EndDate,
		}
		return true
	}

	// Atlas prices SKUs per region, so the same key shows up once per
	// region and day.
	existing.Quantity += item.Quantity
	existing.TotalPriceCents += item.TotalPriceCents
	if endsAfter(item.EndDate, existing.EndDate) {
		existing.EndDate = item.EndDate
	}
	return false
}

// Result holds both views built from a single invoice.
type Result struct {
	// Totals covers every line item on the invoice.
	Totals Summaries
	// Rates covers only line items that ended within FreshnessWindow of
	// the aggregation time.
	Rates Summaries
}

// Aggregate flattens the invoice's line items into per-key totals and
// per-key recent activity. The invoice is not modified.
func Aggregate(logger logrus.FieldLogger, invoice *atlas.Invoice, now time.Time) Result {
	res := Result{
		Totals: Summaries{},
		Rates:  Summaries{},
	}
	if invoice == nil {
		return res
	}

	for _, item := range invoice.LineItems {
		key := item.Key()
		itemLogger := logger.WithField("key", key)

		if res.Totals.add(key, item) {
			itemLogger.Debugf("did not find existing %s in totals", key)
		} else {
			itemLogger.Debugf("found existing %s in totals", key)
		}

		endDate, err := time.Parse(time.RFC3339, item.EndDate)
		if err != nil {
			itemLogger.WithError(err).Errorf("unable to parse endDate %q, skipping %s for rates", item.EndDate, key)
			continue
		}

		age := now.Sub(endDate)
		if age >= FreshnessWindow {
			itemLogger.Debugf("skipping %s for rates, age %s is not less than %s", key, age, FreshnessWindow)
			continue
		}
		itemLogger.Debugf("including %s in rates, age is %s", key, age)
		res.Rates.add(key, item)
	}
	return res
}

// endsAfter reports whether end date a is strictly later than b. Timestamps
// are compared as times when both parse, otherwise as strings.
func endsAfter(a, b string) bool {
	at, aErr := time.Parse(time.RFC3339, a)
	bt, bErr := time.Parse(time.RFC3339, b)
	if aErr == nil && bErr == nil {
		return at.After(bt)
	}
	return a > b
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
