package reports

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ledgerpos/ledgerpos/internal/pos"
)

type stubRepo struct {
	sales    []pos.Sale
	returns  []pos.Return
	invoices []pos.Invoice
	products []pos.Product

	salesCalls    int
	returnsCalls  int
	invoicesCalls int
	productsCalls int
}

func (s *stubRepo) SalesBetween(ctx context.Context, from, to *time.Time) ([]pos.Sale, error) {
	s.salesCalls++
	return s.sales, nil
}

func (s *stubRepo) ReturnsBetween(ctx context.Context, from, to *time.Time) ([]pos.Return, error) {
	s.returnsCalls++
	return s.returns, nil
}

func (s *stubRepo) InvoicesBetween(ctx context.Context, from, to *time.Time) ([]pos.Invoice, error) {
	s.invoicesCalls++
	return s.invoices, nil
}

func (s *stubRepo) Products(ctx context.Context) ([]pos.Product, error) {
	s.productsCalls++
	return s.products, nil
}

func newCachedService(t *testing.T, repo *stubRepo) (*Service, *Cache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewCache(client, time.Minute)
	return NewService(repo, cache), cache
}

func marchWindow() DateRange {
	start := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.March, 16, 0, 0, 0, 0, time.UTC)
	return DateRange{Start: &start, End: &end}
}

func TestServiceSummaryComputesGrowthFromPrecedingWindow(t *testing.T) {
	repo := &stubRepo{
		sales: []pos.Sale{
			{ID: "prev", Total: 200, Status: pos.SaleStatusCompleted, CreatedAt: time.Date(2025, time.March, 5, 10, 0, 0, 0, time.UTC)},
			{ID: "cur", Total: 300, Status: pos.SaleStatusCompleted, CreatedAt: time.Date(2025, time.March, 12, 10, 0, 0, 0, time.UTC)},
		},
		returns: []pos.Return{
			{ID: "r1", RefundAmount: 50, Status: pos.ReturnStatusApproved, CreatedAt: time.Date(2025, time.March, 13, 10, 0, 0, 0, time.UTC)},
		},
	}
	svc := NewService(repo, nil)

	summary, err := svc.Summary(context.Background(), marchWindow())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Gross != 300 {
		t.Fatalf("gross = %v, want 300", summary.Gross)
	}
	if summary.Net != 250 {
		t.Fatalf("net = %v, want 250", summary.Net)
	}
	if summary.Growth != 25 {
		t.Fatalf("growth = %v, want 25", summary.Growth)
	}
	// The preceding window is served from the same snapshot, one fetch each.
	if repo.salesCalls != 1 || repo.returnsCalls != 1 || repo.invoicesCalls != 1 {
		t.Fatalf("repo calls = %d/%d/%d, want 1/1/1", repo.salesCalls, repo.returnsCalls, repo.invoicesCalls)
	}
}

func TestServiceSummaryUnboundedWindowHasNoGrowth(t *testing.T) {
	repo := &stubRepo{
		sales: []pos.Sale{
			{ID: "s1", Total: 100, Status: pos.SaleStatusCompleted, CreatedAt: time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC)},
		},
	}
	svc := NewService(repo, nil)

	summary, err := svc.Summary(context.Background(), DateRange{})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Growth != 0 {
		t.Fatalf("growth = %v, want 0 for an unbounded window", summary.Growth)
	}
}

func TestServiceCachesResults(t *testing.T) {
	repo := &stubRepo{
		sales: []pos.Sale{
			{ID: "s1", Total: 100, Status: pos.SaleStatusCompleted,
				CreatedAt: time.Date(2025, time.March, 12, 10, 0, 0, 0, time.UTC),
				Items:     []pos.SaleItem{{ProductID: "p1", ProductName: "Rice 25kg", Quantity: 2, UnitPrice: 50, Total: 100}}},
		},
	}
	svc, _ := newCachedService(t, repo)
	ctx := context.Background()

	first, err := svc.TopProducts(ctx, marchWindow(), 5)
	if err != nil {
		t.Fatalf("top products: %v", err)
	}
	if len(first) != 1 || first[0].Key != "p1" {
		t.Fatalf("unexpected first result: %+v", first)
	}

	second, err := svc.TopProducts(ctx, marchWindow(), 5)
	if err != nil {
		t.Fatalf("top products again: %v", err)
	}
	if len(second) != 1 || second[0].Net != first[0].Net {
		t.Fatalf("cached result diverged: %+v vs %+v", first, second)
	}
	if repo.salesCalls != 1 {
		t.Fatalf("sales fetched %d times, want 1 (second read from cache)", repo.salesCalls)
	}
}

func TestServiceBumpInvalidatesCache(t *testing.T) {
	repo := &stubRepo{
		sales: []pos.Sale{
			{ID: "s1", Total: 100, Status: pos.SaleStatusCompleted, CreatedAt: time.Date(2025, time.March, 12, 10, 0, 0, 0, time.UTC)},
		},
	}
	svc, cache := newCachedService(t, repo)
	ctx := context.Background()

	if _, err := svc.Summary(ctx, marchWindow()); err != nil {
		t.Fatalf("summary: %v", err)
	}
	if _, err := svc.Summary(ctx, marchWindow()); err != nil {
		t.Fatalf("summary cached: %v", err)
	}
	if repo.salesCalls != 1 {
		t.Fatalf("sales fetched %d times before bump, want 1", repo.salesCalls)
	}

	if err := cache.Bump(ctx); err != nil {
		t.Fatalf("bump: %v", err)
	}

	repo.sales = append(repo.sales, pos.Sale{
		ID: "s2", Total: 50, Status: pos.SaleStatusCompleted,
		CreatedAt: time.Date(2025, time.March, 13, 10, 0, 0, 0, time.UTC),
	})
	summary, err := svc.Summary(ctx, marchWindow())
	if err != nil {
		t.Fatalf("summary after bump: %v", err)
	}
	if repo.salesCalls != 2 {
		t.Fatalf("sales fetched %d times after bump, want 2", repo.salesCalls)
	}
	if summary.Gross != 150 {
		t.Fatalf("gross = %v after bump, want 150", summary.Gross)
	}
}

func TestServiceBreakdownsLoadProductCatalogue(t *testing.T) {
	repo := &stubRepo{
		sales: []pos.Sale{
			{ID: "s1", Total: 100, PaymentMethod: "cash", Status: pos.SaleStatusCompleted,
				CreatedAt: time.Date(2025, time.March, 12, 10, 0, 0, 0, time.UTC),
				Items:     []pos.SaleItem{{ProductID: "p1", ProductName: "Rice 25kg", Quantity: 2, UnitPrice: 50, Total: 100}}},
		},
		products: []pos.Product{{ID: "p1", Name: "Rice 25kg", Category: "Staples"}},
	}
	svc := NewService(repo, nil)

	breakdowns, err := svc.Breakdowns(context.Background(), marchWindow())
	if err != nil {
		t.Fatalf("breakdowns: %v", err)
	}
	if len(breakdowns.ByCategory) != 1 || breakdowns.ByCategory[0].Key != "Staples" {
		t.Fatalf("unexpected category breakdown: %+v", breakdowns.ByCategory)
	}
	if len(breakdowns.ByPaymentMethod) != 1 || breakdowns.ByPaymentMethod[0].Key != "cash" {
		t.Fatalf("unexpected payment breakdown: %+v", breakdowns.ByPaymentMethod)
	}
	if repo.productsCalls != 1 {
		t.Fatalf("products fetched %d times, want 1", repo.productsCalls)
	}
}

func TestServiceCustomerSegmentsWithoutCache(t *testing.T) {
	repo := &stubRepo{
		sales: []pos.Sale{
			{ID: "s1", CustomerID: strPtr("c1"), Total: 1200, Status: pos.SaleStatusCompleted, CreatedAt: time.Date(2025, time.March, 12, 10, 0, 0, 0, time.UTC)},
		},
	}
	svc := NewService(repo, nil)

	segments, err := svc.CustomerSegments(context.Background(), marchWindow())
	if err != nil {
		t.Fatalf("segments: %v", err)
	}
	if len(segments) != 3 {
		t.Fatalf("segments = %d, want 3", len(segments))
	}
	if segments[2].Segment != SegmentHigh || segments[2].Customers != 1 {
		t.Fatalf("unexpected high segment: %+v", segments[2])
	}
}
