package reports

import (
	"github.com/ledgerpos/ledgerpos/internal/pos"
)

// Summary carries the headline reconciliation figures for a window.
type Summary struct {
	Gross                   float64 `json:"gross"`
	ReturnImpact            float64 `json:"return_impact"`
	Net                     float64 `json:"net"`
	SaleCount               int     `json:"sale_count"`
	ReturnCount             int     `json:"return_count"`
	IndependentInvoiceTotal float64 `json:"independent_invoice_total"`
	Growth                  float64 `json:"growth"`
}

// GrossRevenue sums revenue-eligible sale totals plus paid independent
// invoices. Invoices linked to a sale are already represented by the sale
// total and never contribute again.
func GrossRevenue(sales []pos.Sale, invoices []pos.Invoice) float64 {
	var gross float64
	for _, sale := range sales {
		if sale.Status.RevenueEligible() {
			gross += sale.Total
		}
	}
	return gross + IndependentInvoiceRevenue(invoices)
}

// IndependentInvoiceRevenue sums paid invoices with no linked sale.
func IndependentInvoiceRevenue(invoices []pos.Invoice) float64 {
	var total float64
	for _, inv := range invoices {
		if inv.Independent() && inv.Status == pos.InvoiceStatusPaid {
			total += inv.Total
		}
	}
	return total
}

// ReturnImpact sums refund amounts over approved and completed returns.
func ReturnImpact(returns []pos.Return) float64 {
	var impact float64
	for _, ret := range returns {
		if ret.Status.CountsTowardReconciliation() {
			impact += ret.RefundAmount
		}
	}
	return impact
}

// NetRevenue subtracts the return impact from gross revenue, floored at zero.
// A negative net would indicate a data anomaly and is hidden, not propagated.
func NetRevenue(gross, returnImpact float64) float64 {
	return clamp(gross - returnImpact)
}

// Growth computes the percentage change against a previous value. A missing
// or zero baseline yields 0 rather than an error.
func Growth(current, previous float64) float64 {
	if previous <= 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

// Summarize derives the full summary for pre-filtered slices.
func Summarize(sales []pos.Sale, returns []pos.Return, invoices []pos.Invoice) Summary {
	gross := GrossRevenue(sales, invoices)
	impact := ReturnImpact(returns)

	countedReturns := 0
	for _, ret := range returns {
		if ret.Status.CountsTowardReconciliation() {
			countedReturns++
		}
	}

	return Summary{
		Gross:                   gross,
		ReturnImpact:            impact,
		Net:                     NetRevenue(gross, impact),
		SaleCount:               len(sales),
		ReturnCount:             countedReturns,
		IndependentInvoiceTotal: IndependentInvoiceRevenue(invoices),
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
