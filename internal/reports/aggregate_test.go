package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerpos/ledgerpos/internal/pos"
)

func saleWithItems(id string, status pos.SaleStatus, at time.Time, items ...pos.SaleItem) pos.Sale {
	var total float64
	for _, item := range items {
		total += item.Total
	}
	return pos.Sale{ID: id, Status: status, CreatedAt: at, Total: total, Items: items}
}

func item(productID, name string, qty, unitPrice float64) pos.SaleItem {
	return pos.SaleItem{ProductID: productID, ProductName: name, Quantity: qty, UnitPrice: unitPrice, Total: qty * unitPrice}
}

var march = time.Date(2025, time.March, 5, 10, 0, 0, 0, time.UTC)

func TestTopProductsNetsOutReturns(t *testing.T) {
	sales := []pos.Sale{
		saleWithItems("s1", pos.SaleStatusCompleted, march,
			item("p1", "Rice 25kg", 4, 50),  // 200
			item("p2", "Palm Oil", 2, 30),   // 60
		),
		saleWithItems("s2", pos.SaleStatusCompleted, march,
			item("p1", "Rice 25kg", 1, 50), // 50
		),
		// Cancelled sales never contribute.
		saleWithItems("s3", pos.SaleStatusCancelled, march,
			item("p3", "Sugar", 10, 10),
		),
	}
	returns := []pos.Return{
		{
			ID: "r1", Status: pos.ReturnStatusApproved, CreatedAt: march,
			Items: []pos.ReturnItem{{ProductID: "p1", ProductName: "Rice 25kg", Quantity: 1, Total: 50}},
		},
		{
			ID: "r2", Status: pos.ReturnStatusRejected, CreatedAt: march,
			Items: []pos.ReturnItem{{ProductID: "p2", ProductName: "Palm Oil", Quantity: 2, Total: 60}},
		},
	}

	top := TopProducts(sales, returns, 10)
	require.Len(t, top, 2)

	assert.Equal(t, "p1", top[0].Key)
	assert.Equal(t, 200.0, top[0].Net)
	assert.Equal(t, 4.0, top[0].Units)
	assert.True(t, top[0].HasReturns)

	assert.Equal(t, "p2", top[1].Key)
	assert.Equal(t, 60.0, top[1].Net)
	assert.False(t, top[1].HasReturns)
}

func TestTopProductsClampsUnitsAndNet(t *testing.T) {
	sales := []pos.Sale{
		saleWithItems("s1", pos.SaleStatusCompleted, march, item("p1", "Rice 25kg", 1, 50)),
	}
	returns := []pos.Return{
		{
			ID: "r1", Status: pos.ReturnStatusCompleted, CreatedAt: march,
			Items: []pos.ReturnItem{{ProductID: "p1", ProductName: "Rice 25kg", Quantity: 3, Total: 150}},
		},
	}

	top := TopProducts(sales, returns, 10)
	require.Len(t, top, 1)
	assert.Equal(t, 0.0, top[0].Net)
	assert.Equal(t, 0.0, top[0].Units)
}

func TestTopProductsTruncates(t *testing.T) {
	sales := []pos.Sale{
		saleWithItems("s1", pos.SaleStatusCompleted, march,
			item("p1", "A", 1, 10),
			item("p2", "B", 1, 20),
			item("p3", "C", 1, 30),
		),
	}
	top := TopProducts(sales, nil, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "p3", top[0].Key)
	assert.Equal(t, "p2", top[1].Key)
}

func TestRankingTieBreakIsFirstSeenOrder(t *testing.T) {
	sales := []pos.Sale{
		saleWithItems("s1", pos.SaleStatusCompleted, march,
			item("p1", "A", 1, 100),
			item("p2", "B", 2, 50),
			item("p3", "C", 4, 25),
		),
	}

	for i := 0; i < 5; i++ {
		top := TopProducts(sales, nil, 10)
		require.Len(t, top, 3)
		assert.Equal(t, []string{"p1", "p2", "p3"}, []string{top[0].Key, top[1].Key, top[2].Key})
	}
}

func TestTopCustomersKeepsPureRefundCustomers(t *testing.T) {
	// Customer c1 spent 200 and returned all of it; c2 has a fully discounted
	// zero-total sale and no returns; c3 spent 100.
	sales := []pos.Sale{
		{ID: "s1", CustomerID: strPtr("c1"), CustomerName: strPtr("Aminata"), Total: 200, Status: pos.SaleStatusCompleted, CreatedAt: march},
		{ID: "s2", CustomerID: strPtr("c2"), CustomerName: strPtr("Brima"), Total: 0, Status: pos.SaleStatusCompleted, CreatedAt: march},
		{ID: "s3", CustomerID: strPtr("c3"), CustomerName: strPtr("Fatmata"), Total: 100, Status: pos.SaleStatusCompleted, CreatedAt: march},
	}
	returns := []pos.Return{
		{ID: "r1", CustomerID: strPtr("c1"), CustomerName: strPtr("Aminata"), RefundAmount: 200, Status: pos.ReturnStatusCompleted, CreatedAt: march},
	}

	top := TopCustomers(sales, returns, 10)
	require.Len(t, top, 3)

	assert.Equal(t, "c3", top[0].Key)
	assert.Equal(t, 100.0, top[0].Net)

	// The pure-refund customer is retained and flagged, ranked ahead of the
	// zero-net customer without returns.
	assert.Equal(t, "c1", top[1].Key)
	assert.Equal(t, 0.0, top[1].Net)
	assert.True(t, top[1].HasReturns)

	assert.Equal(t, "c2", top[2].Key)
	assert.Equal(t, 0.0, top[2].Net)
	assert.False(t, top[2].HasReturns)
}

func TestTopCustomersZeroNetRefundOrdering(t *testing.T) {
	sales := []pos.Sale{
		{ID: "s1", CustomerID: strPtr("c1"), CustomerName: strPtr("Aminata"), Total: 50, Status: pos.SaleStatusCompleted, CreatedAt: march},
		{ID: "s2", CustomerID: strPtr("c2"), CustomerName: strPtr("Brima"), Total: 300, Status: pos.SaleStatusCompleted, CreatedAt: march},
	}
	returns := []pos.Return{
		{ID: "r1", CustomerID: strPtr("c1"), RefundAmount: 50, Status: pos.ReturnStatusApproved, CreatedAt: march},
		{ID: "r2", CustomerID: strPtr("c2"), RefundAmount: 300, Status: pos.ReturnStatusApproved, CreatedAt: march},
	}

	top := TopCustomers(sales, returns, 10)
	require.Len(t, top, 2)
	// Both net zero with returns: the larger refund sorts first.
	assert.Equal(t, "c2", top[0].Key)
	assert.Equal(t, "c1", top[1].Key)
}

func TestTopCustomersSkipsAnonymousSales(t *testing.T) {
	sales := []pos.Sale{
		{ID: "s1", Total: 100, Status: pos.SaleStatusCompleted, CreatedAt: march},
		{ID: "s2", CustomerName: strPtr("Walk-up Regular"), Total: 40, Status: pos.SaleStatusCompleted, CreatedAt: march},
	}
	top := TopCustomers(sales, nil, 10)
	require.Len(t, top, 1)
	assert.Equal(t, "Walk-up Regular", top[0].Label)
}

func TestMonthlyTrendChronological(t *testing.T) {
	jan := time.Date(2025, time.January, 20, 9, 0, 0, 0, time.UTC)
	feb := time.Date(2025, time.February, 2, 9, 0, 0, 0, time.UTC)
	dec := time.Date(2024, time.December, 28, 9, 0, 0, 0, time.UTC)

	sales := []pos.Sale{
		{ID: "s1", Total: 100, Status: pos.SaleStatusCompleted, CreatedAt: feb},
		{ID: "s2", Total: 200, Status: pos.SaleStatusCompleted, CreatedAt: dec},
		{ID: "s3", Total: 300, Status: pos.SaleStatusCompleted, CreatedAt: jan},
		{ID: "s4", Total: 999, Status: pos.SaleStatusRefunded, CreatedAt: jan},
	}
	returns := []pos.Return{
		{ID: "r1", RefundAmount: 400, Status: pos.ReturnStatusApproved, CreatedAt: jan},
	}

	points := MonthlyTrend(sales, returns)
	require.Len(t, points, 3)

	assert.Equal(t, []string{"Dec 2024", "Jan 2025", "Feb 2025"},
		[]string{points[0].Month, points[1].Month, points[2].Month})

	// January's 400 refund exceeds its 300 of sales: clamped to zero.
	assert.Equal(t, 0.0, points[1].Net)
	assert.Equal(t, 300.0, points[1].Gross)
	assert.Equal(t, 1, points[1].Sales)
}

func TestSalesByStatusCountsEverything(t *testing.T) {
	sales := []pos.Sale{
		{ID: "s1", Total: 100, Status: pos.SaleStatusCompleted, CreatedAt: march},
		{ID: "s2", Total: 200, Status: pos.SaleStatusCompleted, CreatedAt: march},
		{ID: "s3", Total: 300, Status: pos.SaleStatusCancelled, CreatedAt: march},
	}
	byStatus := SalesByStatus(sales)
	require.Len(t, byStatus, 2)
	assert.Equal(t, string(pos.SaleStatusCancelled), byStatus[0].Key)
	assert.Equal(t, 300.0, byStatus[0].Net)
	assert.Equal(t, 2.0, byStatus[1].Units)
}

func TestSalesByPaymentMethod(t *testing.T) {
	sales := []pos.Sale{
		{ID: "s1", Total: 100, PaymentMethod: "cash", Status: pos.SaleStatusCompleted, CreatedAt: march},
		{ID: "s2", Total: 250, PaymentMethod: "mobile_money", Status: pos.SaleStatusCompleted, CreatedAt: march},
		{ID: "s3", Total: 999, PaymentMethod: "cash", Status: pos.SaleStatusCancelled, CreatedAt: march},
	}
	byMethod := SalesByPaymentMethod(sales)
	require.Len(t, byMethod, 2)
	assert.Equal(t, "mobile_money", byMethod[0].Key)
	assert.Equal(t, "cash", byMethod[1].Key)
	assert.Equal(t, 100.0, byMethod[1].Net)
}

func TestSalesByCategoryFallsBackToUncategorized(t *testing.T) {
	products := []pos.Product{
		{ID: "p1", Name: "Rice 25kg", Category: "Staples"},
	}
	sales := []pos.Sale{
		saleWithItems("s1", pos.SaleStatusCompleted, march,
			item("p1", "Rice 25kg", 2, 50),
			item("p9", "Mystery", 1, 10),
		),
	}
	returns := []pos.Return{
		{
			ID: "r1", Status: pos.ReturnStatusApproved, CreatedAt: march,
			Items: []pos.ReturnItem{{ProductID: "p1", ProductName: "Rice 25kg", Quantity: 1, Total: 50}},
		},
	}

	byCategory := SalesByCategory(sales, returns, products)
	require.Len(t, byCategory, 2)
	assert.Equal(t, "Staples", byCategory[0].Key)
	assert.Equal(t, 50.0, byCategory[0].Net)
	assert.True(t, byCategory[0].HasReturns)
	assert.Equal(t, "Uncategorized", byCategory[1].Key)
}

func TestSegmentCustomers(t *testing.T) {
	sales := []pos.Sale{
		{ID: "s1", CustomerID: strPtr("low"), Total: 499.99, Status: pos.SaleStatusCompleted, CreatedAt: march},
		{ID: "s2", CustomerID: strPtr("mid_floor"), Total: 500, Status: pos.SaleStatusCompleted, CreatedAt: march},
		{ID: "s3", CustomerID: strPtr("mid_ceiling"), Total: 1000, Status: pos.SaleStatusCompleted, CreatedAt: march},
		{ID: "s4", CustomerID: strPtr("high"), Total: 1000.01, Status: pos.SaleStatusCompleted, CreatedAt: march},
		{ID: "s5", CustomerID: strPtr("refunded"), Total: 100, Status: pos.SaleStatusCompleted, CreatedAt: march},
	}
	returns := []pos.Return{
		// Wipes out the fifth customer: excluded from segmentation entirely.
		{ID: "r1", CustomerID: strPtr("refunded"), RefundAmount: 100, Status: pos.ReturnStatusApproved, CreatedAt: march},
	}

	segments := SegmentCustomers(sales, returns)
	require.Len(t, segments, 3)

	assert.Equal(t, SegmentLow, segments[0].Segment)
	assert.Equal(t, 1, segments[0].Customers)

	assert.Equal(t, SegmentMedium, segments[1].Segment)
	assert.Equal(t, 2, segments[1].Customers)
	assert.Equal(t, 1500.0, segments[1].NetSpend)

	assert.Equal(t, SegmentHigh, segments[2].Segment)
	assert.Equal(t, 1, segments[2].Customers)
}
