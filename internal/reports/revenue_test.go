package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ledgerpos/ledgerpos/internal/pos"
)

func strPtr(s string) *string { return &s }

func completedSale(id string, total float64) pos.Sale {
	return pos.Sale{
		ID:        id,
		Total:     total,
		Status:    pos.SaleStatusCompleted,
		CreatedAt: time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestGrossReturnNetScenario(t *testing.T) {
	// Three sales, one approved return against the second.
	sales := []pos.Sale{
		completedSale("s1", 100),
		completedSale("s2", 200),
		completedSale("s3", 300),
	}
	returns := []pos.Return{
		{ID: "r1", SaleID: strPtr("s2"), RefundAmount: 50, Status: pos.ReturnStatusApproved},
	}

	gross := GrossRevenue(sales, nil)
	impact := ReturnImpact(returns)

	assert.Equal(t, 600.0, gross)
	assert.Equal(t, 50.0, impact)
	assert.Equal(t, 550.0, NetRevenue(gross, impact))
}

func TestGrossRevenueExcludesCancelledAndRefunded(t *testing.T) {
	sales := []pos.Sale{
		completedSale("s1", 100),
		{ID: "s2", Total: 200, Status: pos.SaleStatusPending},
		{ID: "s3", Total: 300, Status: pos.SaleStatusCancelled},
		{ID: "s4", Total: 400, Status: pos.SaleStatusRefunded},
	}
	assert.Equal(t, 300.0, GrossRevenue(sales, nil))
}

func TestIndependentInvoicesOnly(t *testing.T) {
	// A paid independent invoice counts; a paid sale-linked invoice never
	// does, whatever its status, because the sale already carries the total.
	sales := []pos.Sale{completedSale("s1", 75)}
	invoices := []pos.Invoice{
		{ID: "i1", SaleID: nil, Total: 150, Status: pos.InvoiceStatusPaid},
		{ID: "i2", SaleID: strPtr("s1"), Total: 75, Status: pos.InvoiceStatusPaid},
		{ID: "i3", SaleID: nil, Total: 999, Status: pos.InvoiceStatusSent},
	}

	assert.Equal(t, 150.0, IndependentInvoiceRevenue(invoices))
	assert.Equal(t, 225.0, GrossRevenue(sales, invoices))
}

func TestReturnImpactCountsApprovedAndCompletedOnly(t *testing.T) {
	returns := []pos.Return{
		{ID: "r1", RefundAmount: 10, Status: pos.ReturnStatusApproved},
		{ID: "r2", RefundAmount: 20, Status: pos.ReturnStatusCompleted},
		{ID: "r3", RefundAmount: 40, Status: pos.ReturnStatusPending},
		{ID: "r4", RefundAmount: 80, Status: pos.ReturnStatusRejected},
	}
	assert.Equal(t, 30.0, ReturnImpact(returns))
}

func TestNetRevenueNeverNegative(t *testing.T) {
	assert.Equal(t, 0.0, NetRevenue(100, 250))
	assert.Equal(t, 0.0, NetRevenue(0, 0))
	assert.Equal(t, 25.0, NetRevenue(100, 75))
}

func TestGrowth(t *testing.T) {
	assert.Equal(t, 50.0, Growth(150, 100))
	assert.Equal(t, -25.0, Growth(75, 100))
	// No comparable baseline is not an error.
	assert.Equal(t, 0.0, Growth(150, 0))
	assert.Equal(t, 0.0, Growth(150, -10))
}

func TestSummarizeEmptyInputs(t *testing.T) {
	summary := Summarize(nil, nil, nil)
	assert.Equal(t, 0.0, summary.Gross)
	assert.Equal(t, 0.0, summary.Net)
	assert.Equal(t, 0, summary.SaleCount)
	assert.Equal(t, 0, summary.ReturnCount)
	assert.Equal(t, 0.0, Growth(summary.Net, 0))
}

func TestSummarizeCountsOnlyAuthoritativeReturns(t *testing.T) {
	returns := []pos.Return{
		{ID: "r1", RefundAmount: 10, Status: pos.ReturnStatusApproved},
		{ID: "r2", RefundAmount: 10, Status: pos.ReturnStatusPending},
	}
	summary := Summarize(nil, returns, nil)
	assert.Equal(t, 1, summary.ReturnCount)
	assert.Equal(t, 10.0, summary.ReturnImpact)
}
