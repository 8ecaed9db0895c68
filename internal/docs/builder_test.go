package docs_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerpos/ledgerpos/internal/docs"
	"github.com/ledgerpos/ledgerpos/internal/pos"
)

func saleWithLineCount(n int) *pos.Sale {
	items := make([]pos.SaleItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, pos.SaleItem{
			ProductID:   "p1",
			ProductName: "Rice 25kg",
			Quantity:    1,
			UnitPrice:   50,
			Total:       50,
		})
	}
	return &pos.Sale{
		ID:        "s1",
		Subtotal:  float64(n) * 50,
		Total:     float64(n) * 50,
		Status:    pos.SaleStatusCompleted,
		CreatedAt: time.Date(2025, time.March, 12, 10, 0, 0, 0, time.UTC),
		Items:     items,
	}
}

func TestBuildSaleDocumentPagination(t *testing.T) {
	builder := docs.NewBuilder(10, "en")
	doc := builder.BuildSaleDocument(saleWithLineCount(23), "SLL")

	require.Len(t, doc.Pages, 3)
	assert.Len(t, doc.Pages[0].Items, 10)
	assert.Len(t, doc.Pages[2].Items, 3)

	// Signature only on the last page, footer on every page of a multi-page
	// document.
	assert.False(t, doc.Pages[0].ShowSignature)
	assert.False(t, doc.Pages[1].ShowSignature)
	assert.True(t, doc.Pages[2].ShowSignature)
	for _, page := range doc.Pages {
		assert.True(t, page.ShowPageFooter)
	}

	assert.Equal(t, "NLe 1,150.00", doc.Total)
	assert.Equal(t, "NLe 50.00", doc.Pages[0].Items[0].Amount)
}

func TestBuildSaleDocumentSinglePage(t *testing.T) {
	builder := docs.NewBuilder(10, "en")
	doc := builder.BuildSaleDocument(saleWithLineCount(4), "USD")

	require.Len(t, doc.Pages, 1)
	assert.True(t, doc.Pages[0].ShowSignature)
	assert.False(t, doc.Pages[0].ShowPageFooter)
}

func TestBuildSaleDocumentRecipientFallback(t *testing.T) {
	builder := docs.NewBuilder(10, "en")

	anonymous := saleWithLineCount(1)
	doc := builder.BuildSaleDocument(anonymous, "USD")
	assert.Equal(t, "Walk-in Customer", doc.Recipient)

	named := saleWithLineCount(1)
	name := "Aminata Kargbo"
	named.CustomerName = &name
	doc = builder.BuildSaleDocument(named, "USD")
	assert.Equal(t, "Aminata Kargbo", doc.Recipient)

	empty := saleWithLineCount(1)
	blank := ""
	empty.CustomerName = &blank
	doc = builder.BuildSaleDocument(empty, "USD")
	assert.Equal(t, "Walk-in Customer", doc.Recipient)
}

func TestBuildSaleDocumentEmptySale(t *testing.T) {
	builder := docs.NewBuilder(10, "en")
	doc := builder.BuildSaleDocument(saleWithLineCount(0), "USD")

	require.Len(t, doc.Pages, 1)
	assert.Empty(t, doc.Pages[0].Items)
	assert.True(t, doc.Pages[0].ShowSignature)
	assert.Equal(t, "$0.00", doc.Total)
}
