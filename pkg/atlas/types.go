package atlas

// Invoice is the pending invoice document returned by the Atlas billing API.
type Invoice struct {
	ID                string     `json:"id"`
	Created           string     `json:"created"`
	StartDate         string     `json:"startDate,omitempty"`
	EndDate           string     `json:"endDate"`
	StatusName        string     `json:"statusName,omitempty"`
	AmountBilledCents int64      `json:"amountBilledCents"`
	AmountPaidCents   int64      `json:"amountPaidCents"`
	CreditsCents      int64      `json:"creditsCents"`
	LineItems         []LineItem `json:"lineItems"`
}

// LineItem is a single charge on an invoice. Atlas emits one line item per
// SKU, cluster, region and day.
type LineItem struct {
	ClusterName      *string `json:"clusterName,omitempty"`
	GroupName        *string `json:"groupName,omitempty"`
	SKU              string  `json:"sku"`
	Quantity         float64 `json:"quantity"`
	Unit             string  `json:"unit"`
	UnitPriceDollars float64 `json:"unitPriceDollars"`
	TotalPriceCents  int64   `json:"totalPriceCents"`
	StartDate        string  `json:"startDate"`
	EndDate          string  `json:"endDate"`
	Created          string  `json:"created"`
}

// Key returns the identity of the billing meter the line item belongs to.
// Line items for the same SKU on the same cluster are the same meter observed
// across regions and days.
func (item LineItem) Key() string {
	if item.ClusterName != nil {
		return *item.ClusterName + "_" + item.SKU
	}
	return item.SKU
}

// StringValue returns the value of s, or the empty string if s is nil.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
