package reports

import (
	"context"
	"time"

	"github.com/ledgerpos/ledgerpos/internal/pos"
)

// Repository exposes the range-scoped queries the report service relies on.
// *pos.Repository satisfies it.
type Repository interface {
	SalesBetween(ctx context.Context, from, to *time.Time) ([]pos.Sale, error)
	ReturnsBetween(ctx context.Context, from, to *time.Time) ([]pos.Return, error)
	InvoicesBetween(ctx context.Context, from, to *time.Time) ([]pos.Invoice, error)
	Products(ctx context.Context) ([]pos.Product, error)
}

// Breakdowns groups the secondary dashboard views.
type Breakdowns struct {
	ByStatus        []RankedEntry `json:"by_status"`
	ByPaymentMethod []RankedEntry `json:"by_payment_method"`
	ByCategory      []RankedEntry `json:"by_category"`
}

// Service coordinates report computation with the cache layer. All math is
// done by the pure functions in this package; the service only loads inputs
// and caches outputs.
type Service struct {
	repo  Repository
	cache *Cache
}

// NewService wires a Repository with a Cache helper.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// Summary resolves the reconciliation summary for the window, including
// growth against the preceding window of equal length when one exists.
func (s *Service) Summary(ctx context.Context, r DateRange) (Summary, error) {
	loader := func(ctx context.Context) (interface{}, error) {
		prev, hasPrev := r.Previous()

		// Fetch the union window once and split it with the pure filter so
		// current and baseline figures come from one consistent snapshot.
		fetch := r
		if hasPrev {
			fetch = DateRange{Start: prev.Start, End: r.End}
		}
		from, to := fetch.Bounds()

		sales, err := s.repo.SalesBetween(ctx, from, to)
		if err != nil {
			return Summary{}, err
		}
		returns, err := s.repo.ReturnsBetween(ctx, from, to)
		if err != nil {
			return Summary{}, err
		}
		invoices, err := s.repo.InvoicesBetween(ctx, from, to)
		if err != nil {
			return Summary{}, err
		}

		summary := Summarize(
			FilterByDate(sales, saleAt, r),
			FilterByDate(returns, returnAt, r),
			FilterByDate(invoices, invoiceAt, r),
		)
		if hasPrev {
			baseline := Summarize(
				FilterByDate(sales, saleAt, prev),
				FilterByDate(returns, returnAt, prev),
				FilterByDate(invoices, invoiceAt, prev),
			)
			summary.Growth = Growth(summary.Net, baseline.Net)
		}
		return summary, nil
	}

	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return Summary{}, err
		}
		return value.(Summary), nil
	}

	key, err := s.cache.BuildKey(ctx, keySummary(r)...)
	if err != nil {
		return Summary{}, err
	}
	var summary Summary
	if err := s.cache.FetchJSON(ctx, key, &summary, loader); err != nil {
		return Summary{}, err
	}
	return summary, nil
}

// TopProducts returns the n best-selling products net of returns.
func (s *Service) TopProducts(ctx context.Context, r DateRange, n int) ([]RankedEntry, error) {
	loader := func(ctx context.Context) (interface{}, error) {
		sales, returns, err := s.loadSalesAndReturns(ctx, r)
		if err != nil {
			return nil, err
		}
		return TopProducts(sales, returns, n), nil
	}
	return s.fetchRanked(ctx, keyTop("products", r, n), loader)
}

// TopCustomers returns the n highest-spending customers net of refunds.
func (s *Service) TopCustomers(ctx context.Context, r DateRange, n int) ([]RankedEntry, error) {
	loader := func(ctx context.Context) (interface{}, error) {
		sales, returns, err := s.loadSalesAndReturns(ctx, r)
		if err != nil {
			return nil, err
		}
		return TopCustomers(sales, returns, n), nil
	}
	return s.fetchRanked(ctx, keyTop("customers", r, n), loader)
}

// MonthlyTrend returns the month-by-month net revenue series for the window.
func (s *Service) MonthlyTrend(ctx context.Context, r DateRange) ([]MonthPoint, error) {
	loader := func(ctx context.Context) (interface{}, error) {
		sales, returns, err := s.loadSalesAndReturns(ctx, r)
		if err != nil {
			return nil, err
		}
		return MonthlyTrend(sales, returns), nil
	}

	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		return value.([]MonthPoint), nil
	}

	key, err := s.cache.BuildKey(ctx, keyTrend(r)...)
	if err != nil {
		return nil, err
	}
	var points []MonthPoint
	if err := s.cache.FetchJSON(ctx, key, &points, loader); err != nil {
		return nil, err
	}
	return points, nil
}

// Breakdowns returns status, payment method and category views for the window.
func (s *Service) Breakdowns(ctx context.Context, r DateRange) (Breakdowns, error) {
	loader := func(ctx context.Context) (interface{}, error) {
		sales, returns, err := s.loadSalesAndReturns(ctx, r)
		if err != nil {
			return Breakdowns{}, err
		}
		products, err := s.repo.Products(ctx)
		if err != nil {
			return Breakdowns{}, err
		}
		return Breakdowns{
			ByStatus:        SalesByStatus(sales),
			ByPaymentMethod: SalesByPaymentMethod(sales),
			ByCategory:      SalesByCategory(sales, returns, products),
		}, nil
	}

	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return Breakdowns{}, err
		}
		return value.(Breakdowns), nil
	}

	key, err := s.cache.BuildKey(ctx, keyBreakdowns(r)...)
	if err != nil {
		return Breakdowns{}, err
	}
	var result Breakdowns
	if err := s.cache.FetchJSON(ctx, key, &result, loader); err != nil {
		return Breakdowns{}, err
	}
	return result, nil
}

// CustomerSegments classifies customers by net spend inside the window.
func (s *Service) CustomerSegments(ctx context.Context, r DateRange) ([]CustomerSegment, error) {
	loader := func(ctx context.Context) (interface{}, error) {
		sales, returns, err := s.loadSalesAndReturns(ctx, r)
		if err != nil {
			return nil, err
		}
		return SegmentCustomers(sales, returns), nil
	}

	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		return value.([]CustomerSegment), nil
	}

	key, err := s.cache.BuildKey(ctx, keySegments(r)...)
	if err != nil {
		return nil, err
	}
	var segments []CustomerSegment
	if err := s.cache.FetchJSON(ctx, key, &segments, loader); err != nil {
		return nil, err
	}
	return segments, nil
}

// Cache exposes the cache helper for invalidation wiring.
func (s *Service) Cache() *Cache {
	return s.cache
}

func (s *Service) loadSalesAndReturns(ctx context.Context, r DateRange) ([]pos.Sale, []pos.Return, error) {
	from, to := r.Bounds()
	sales, err := s.repo.SalesBetween(ctx, from, to)
	if err != nil {
		return nil, nil, err
	}
	returns, err := s.repo.ReturnsBetween(ctx, from, to)
	if err != nil {
		return nil, nil, err
	}
	return sales, returns, nil
}

func (s *Service) fetchRanked(ctx context.Context, keyParts []string, loader func(context.Context) (interface{}, error)) ([]RankedEntry, error) {
	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		return value.([]RankedEntry), nil
	}
	key, err := s.cache.BuildKey(ctx, keyParts...)
	if err != nil {
		return nil, err
	}
	var entries []RankedEntry
	if err := s.cache.FetchJSON(ctx, key, &entries, loader); err != nil {
		return nil, err
	}
	return entries, nil
}

func saleAt(s pos.Sale) time.Time       { return s.CreatedAt }
func returnAt(r pos.Return) time.Time   { return r.CreatedAt }
func invoiceAt(i pos.Invoice) time.Time { return i.CreatedAt }
