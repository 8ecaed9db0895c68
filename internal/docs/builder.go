package docs

import (
	"time"

	"github.com/ledgerpos/ledgerpos/internal/pos/sale"
)

// DocumentLine is one printed line item.
type DocumentLine struct {
	ProductName string  `json:"product_name"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
	Amount      string  `json:"amount"`
}

// DocumentPage is one printed page of a sale document.
type DocumentPage struct {
	Number         int            `json:"number"`
	TotalPages     int            `json:"total_pages"`
	Items          []DocumentLine `json:"items"`
	RangeStart     int            `json:"range_start"`
	RangeEnd       int            `json:"range_end"`
	ShowPageFooter bool           `json:"show_page_footer"`
	// ShowSignature gates the delivery-confirmation block, which renders on
	// the last page only.
	ShowSignature bool `json:"show_signature"`
}

// Document is the printable layout for a sale. Header, recipient and totals
// repeat on every page.
type Document struct {
	SaleID    string         `json:"sale_id"`
	Recipient string         `json:"recipient"`
	IssuedAt  time.Time      `json:"issued_at"`
	Currency  string         `json:"currency"`
	Subtotal  string         `json:"subtotal"`
	Tax       string         `json:"tax"`
	Discount  string         `json:"discount"`
	Total     string         `json:"total"`
	Pages     []DocumentPage `json:"pages"`
}

// Builder assembles printable documents with explicit currency and locale.
type Builder struct {
	perPage int
	locale  string
}

// NewBuilder constructs a Builder. perPage falls back to DefaultPageSize.
func NewBuilder(perPage int, locale string) *Builder {
	if perPage <= 0 {
		perPage = DefaultPageSize
	}
	if locale == "" {
		locale = "en"
	}
	return &Builder{perPage: perPage, locale: locale}
}

// BuildSaleDocument lays out a sale as a paginated printable document.
func (b *Builder) BuildSaleDocument(sale *sale.Sale, currencyCode string) Document {
	lines := make([]DocumentLine, 0, len(sale.Items))
	for _, item := range sale.Items {
		lines = append(lines, DocumentLine{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       item.Total,
			Amount:      FormatAmount(currencyCode, b.locale, item.Total),
		})
	}

	recipient := "Walk-in Customer"
	if sale.CustomerName != nil && *sale.CustomerName != "" {
		recipient = *sale.CustomerName
	}

	doc := Document{
		SaleID:    sale.ID,
		Recipient: recipient,
		IssuedAt:  sale.CreatedAt,
		Currency:  currencyCode,
		Subtotal:  FormatAmount(currencyCode, b.locale, sale.Subtotal),
		Tax:       FormatAmount(currencyCode, b.locale, sale.Tax),
		Discount:  FormatAmount(currencyCode, b.locale, sale.Discount),
		Total:     FormatAmount(currencyCode, b.locale, sale.Total),
	}

	for _, page := range Paginate(lines, b.perPage) {
		doc.Pages = append(doc.Pages, DocumentPage{
			Number:         page.Number,
			TotalPages:     page.TotalPages,
			Items:          page.Items,
			RangeStart:     page.RangeStart,
			RangeEnd:       page.RangeEnd,
			ShowPageFooter: page.ShowPageFooter(),
			ShowSignature:  page.IsLast(),
		})
	}
	return doc
}
