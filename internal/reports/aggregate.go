package reports

import (
	"sort"
	"time"

	"github.com/ledgerpos/ledgerpos/internal/pos"
)

// RankedEntry is one row of a grouped aggregation, net of returns.
type RankedEntry struct {
	Key        string  `json:"key"`
	Label      string  `json:"label"`
	Units      float64 `json:"units"`
	Gross      float64 `json:"gross"`
	Returned   float64 `json:"returned"`
	Net        float64 `json:"net"`
	HasReturns bool    `json:"has_returns"`
}

// MonthPoint is one month of the revenue trend, chronologically ordered.
type MonthPoint struct {
	Month    string  `json:"month"`
	Gross    float64 `json:"gross"`
	Returned float64 `json:"returned"`
	Net      float64 `json:"net"`
	Sales    int     `json:"sales"`
}

// CustomerSegment buckets customers by net spend.
type CustomerSegment struct {
	Segment   string  `json:"segment"`
	Customers int     `json:"customers"`
	NetSpend  float64 `json:"net_spend"`
}

// Segment boundaries for customer value classification.
const (
	SegmentLow    = "Low Value"
	SegmentMedium = "Medium Value"
	SegmentHigh   = "High Value"

	segmentLowUpper  = 500
	segmentHighLower = 1000
)

// accumulator groups amounts by key while remembering first-seen order, the
// tie-break used when ranked entries share the same net amount.
type accumulator struct {
	order   []string
	buckets map[string]*RankedEntry
}

func newAccumulator() *accumulator {
	return &accumulator{buckets: make(map[string]*RankedEntry)}
}

func (a *accumulator) at(key, label string) *RankedEntry {
	if entry, ok := a.buckets[key]; ok {
		return entry
	}
	entry := &RankedEntry{Key: key, Label: label}
	a.buckets[key] = entry
	a.order = append(a.order, key)
	return entry
}

// entries returns the buckets in first-seen order with per-key clamping
// applied: net and units never go below zero.
func (a *accumulator) entries() []RankedEntry {
	out := make([]RankedEntry, 0, len(a.order))
	for _, key := range a.order {
		entry := *a.buckets[key]
		entry.Net = clamp(entry.Gross - entry.Returned)
		entry.Units = clamp(entry.Units)
		out = append(out, entry)
	}
	return out
}

// rankByNet orders entries by net descending. The sort is stable, so entries
// with equal net keep their first-seen order.
func rankByNet(entries []RankedEntry) []RankedEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Net > entries[j].Net
	})
	return entries
}

// rankCustomers orders customers by net descending with the refund-aware
// tie-break: among equal nets a customer with returns sorts first, and among
// two such customers the larger refund total wins. Remaining ties keep
// first-seen order. Pure-refund customers stay in the list so they surface
// instead of silently disappearing.
func rankCustomers(entries []RankedEntry) []RankedEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Net != b.Net {
			return a.Net > b.Net
		}
		if a.HasReturns != b.HasReturns {
			return a.HasReturns
		}
		if a.HasReturns && b.HasReturns && a.Returned != b.Returned {
			return a.Returned > b.Returned
		}
		return false
	})
	return entries
}

func truncate(entries []RankedEntry, n int) []RankedEntry {
	if n > 0 && len(entries) > n {
		return entries[:n]
	}
	return entries
}

// TopProducts ranks products by line-item revenue net of returned amounts.
// Units are quantities sold minus quantities returned, clamped at zero.
func TopProducts(sales []pos.Sale, returns []pos.Return, n int) []RankedEntry {
	acc := newAccumulator()
	for _, sale := range sales {
		if !sale.Status.RevenueEligible() {
			continue
		}
		for _, item := range sale.Items {
			entry := acc.at(item.ProductID, item.ProductName)
			entry.Gross += item.Total
			entry.Units += item.Quantity
		}
	}
	for _, ret := range returns {
		if !ret.Status.CountsTowardReconciliation() {
			continue
		}
		for _, item := range ret.Items {
			entry := acc.at(item.ProductID, item.ProductName)
			entry.Returned += item.Total
			entry.Units -= item.Quantity
			entry.HasReturns = true
		}
	}
	return truncate(rankByNet(acc.entries()), n)
}

// TopCustomers ranks customers by sale totals net of refunds. Customers whose
// refunds wipe out their spend are kept and flagged rather than dropped.
func TopCustomers(sales []pos.Sale, returns []pos.Return, n int) []RankedEntry {
	acc := newAccumulator()
	for _, sale := range sales {
		if !sale.Status.RevenueEligible() {
			continue
		}
		key, label, ok := customerKey(sale.CustomerID, sale.CustomerName)
		if !ok {
			continue
		}
		entry := acc.at(key, label)
		entry.Gross += sale.Total
		entry.Units++
	}
	for _, ret := range returns {
		if !ret.Status.CountsTowardReconciliation() {
			continue
		}
		key, label, ok := customerKey(ret.CustomerID, ret.CustomerName)
		if !ok {
			continue
		}
		entry := acc.at(key, label)
		entry.Returned += ret.RefundAmount
		entry.HasReturns = true
	}
	return truncate(rankCustomers(acc.entries()), n)
}

func customerKey(id, name *string) (key, label string, ok bool) {
	if id != nil && *id != "" {
		key = *id
	} else if name != nil && *name != "" {
		key = *name
	} else {
		return "", "", false
	}
	if name != nil {
		label = *name
	} else {
		label = key
	}
	return key, label, true
}

// MonthlyTrend buckets revenue by month, net of returns, sorted
// chronologically ascending for trend charts.
func MonthlyTrend(sales []pos.Sale, returns []pos.Return) []MonthPoint {
	type monthBucket struct {
		at    time.Time
		point MonthPoint
	}
	buckets := make(map[string]*monthBucket)
	keyFor := func(t time.Time) (string, time.Time) {
		return t.Format("Jan 2006"), time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	bucketAt := func(t time.Time) *monthBucket {
		label, first := keyFor(t)
		b, ok := buckets[label]
		if !ok {
			b = &monthBucket{at: first, point: MonthPoint{Month: label}}
			buckets[label] = b
		}
		return b
	}

	for _, sale := range sales {
		if !sale.Status.RevenueEligible() {
			continue
		}
		b := bucketAt(sale.CreatedAt)
		b.point.Gross += sale.Total
		b.point.Sales++
	}
	for _, ret := range returns {
		if !ret.Status.CountsTowardReconciliation() {
			continue
		}
		bucketAt(ret.CreatedAt).point.Returned += ret.RefundAmount
	}

	ordered := make([]*monthBucket, 0, len(buckets))
	for _, b := range buckets {
		b.point.Net = clamp(b.point.Gross - b.point.Returned)
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].at.Before(ordered[j].at) })

	points := make([]MonthPoint, 0, len(ordered))
	for _, b := range ordered {
		points = append(points, b.point)
	}
	return points
}

// SalesByStatus breaks all sales down by status. No return netting applies;
// this is a volume view, not a revenue view.
func SalesByStatus(sales []pos.Sale) []RankedEntry {
	acc := newAccumulator()
	for _, sale := range sales {
		entry := acc.at(string(sale.Status), string(sale.Status))
		entry.Gross += sale.Total
		entry.Units++
	}
	return rankByNet(acc.entries())
}

// SalesByPaymentMethod breaks revenue-eligible sales down by payment method.
func SalesByPaymentMethod(sales []pos.Sale) []RankedEntry {
	acc := newAccumulator()
	for _, sale := range sales {
		if !sale.Status.RevenueEligible() {
			continue
		}
		entry := acc.at(sale.PaymentMethod, sale.PaymentMethod)
		entry.Gross += sale.Total
		entry.Units++
	}
	return rankByNet(acc.entries())
}

// SalesByCategory groups line-item revenue by product category, net of
// returns. Items whose product is not in the catalogue fall under
// "Uncategorized".
func SalesByCategory(sales []pos.Sale, returns []pos.Return, products []pos.Product) []RankedEntry {
	categories := make(map[string]string, len(products))
	for _, p := range products {
		categories[p.ID] = p.Category
	}
	categoryOf := func(productID string) string {
		if c, ok := categories[productID]; ok && c != "" {
			return c
		}
		return "Uncategorized"
	}

	acc := newAccumulator()
	for _, sale := range sales {
		if !sale.Status.RevenueEligible() {
			continue
		}
		for _, item := range sale.Items {
			c := categoryOf(item.ProductID)
			entry := acc.at(c, c)
			entry.Gross += item.Total
			entry.Units += item.Quantity
		}
	}
	for _, ret := range returns {
		if !ret.Status.CountsTowardReconciliation() {
			continue
		}
		for _, item := range ret.Items {
			c := categoryOf(item.ProductID)
			entry := acc.at(c, c)
			entry.Returned += item.Total
			entry.Units -= item.Quantity
			entry.HasReturns = true
		}
	}
	return rankByNet(acc.entries())
}

// SegmentCustomers classifies customers with positive net spend into value
// buckets. Zero or negative net spend is excluded from segmentation entirely.
func SegmentCustomers(sales []pos.Sale, returns []pos.Return) []CustomerSegment {
	segments := []CustomerSegment{
		{Segment: SegmentLow},
		{Segment: SegmentMedium},
		{Segment: SegmentHigh},
	}
	for _, customer := range TopCustomers(sales, returns, 0) {
		net := customer.Gross - customer.Returned
		if net <= 0 {
			continue
		}
		idx := 0
		switch {
		case net > segmentHighLower:
			idx = 2
		case net >= segmentLowUpper:
			idx = 1
		}
		segments[idx].Customers++
		segments[idx].NetSpend += net
	}
	return segments
}
