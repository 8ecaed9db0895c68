// Package docs builds printable sale documents: fixed-capacity pagination,
// currency formatting and the invoice layout model.
package docs

// DefaultPageSize is the fixed number of line items per printed page.
const DefaultPageSize = 10

// Page is one slice of a paginated document. Header, recipient and footer
// content repeat on every page; only the item slice differs.
type Page[T any] struct {
	Number     int `json:"number"`
	TotalPages int `json:"total_pages"`
	Items      []T `json:"items"`
	// RangeStart and RangeEnd are 1-based inclusive positions within the
	// full item list. Both are zero for an empty document.
	RangeStart int `json:"range_start"`
	RangeEnd   int `json:"range_end"`
}

// IsLast reports whether this is the final page. Sections that must appear
// exactly once, like the signature block, render only here.
func (p Page[T]) IsLast() bool {
	return p.Number == p.TotalPages
}

// ShowPageFooter reports whether the "Page X of Y" footer should render.
func (p Page[T]) ShowPageFooter() bool {
	return p.TotalPages > 1
}

// Paginate splits items into fixed-capacity pages. An empty list still
// produces a single page with an empty slice, never zero pages.
func Paginate[T any](items []T, perPage int) []Page[T] {
	if perPage <= 0 {
		perPage = DefaultPageSize
	}

	total := (len(items) + perPage - 1) / perPage
	if total == 0 {
		total = 1
	}

	pages := make([]Page[T], 0, total)
	for i := 0; i < total; i++ {
		start := i * perPage
		end := start + perPage
		if end > len(items) {
			end = len(items)
		}
		page := Page[T]{
			Number:     i + 1,
			TotalPages: total,
			Items:      items[start:end],
		}
		if end > start {
			page.RangeStart = start + 1
			page.RangeEnd = end
		}
		pages = append(pages, page)
	}
	return pages
}
