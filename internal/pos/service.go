package pos

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
)

// SaleRepository is the persistence contract the service depends on.
type SaleRepository interface {
	CreateSale(ctx context.Context, sale *Sale) error
	GetSale(ctx context.Context, id string) (*Sale, error)
	SalesBetween(ctx context.Context, from, to *time.Time) ([]Sale, error)
	CreateReturn(ctx context.Context, ret *Return) error
	SetReturnStatus(ctx context.Context, id string, status ReturnStatus) error
	ReturnsBetween(ctx context.Context, from, to *time.Time) ([]Return, error)
	CreateInvoice(ctx context.Context, inv *Invoice) error
	InvoicesBetween(ctx context.Context, from, to *time.Time) ([]Invoice, error)
	GetCustomer(ctx context.Context, id string) (*Customer, error)
}

// CacheInvalidator lets the service expire report caches after writes.
type CacheInvalidator interface {
	Bump(ctx context.Context) error
}

// ErrValidation wraps request validation failures.
var ErrValidation = errors.New("pos: validation failed")

// ErrReturnNotApprovable indicates the return is not in a pending state.
var ErrReturnNotApprovable = errors.New("pos: return not approvable")

// Service implements POS business operations.
type Service struct {
	repo     SaleRepository
	cache    CacheInvalidator
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires the repository with the report cache invalidator.
func NewService(repo SaleRepository, cache CacheInvalidator, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		validate: validator.New(),
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// CreateSale validates the request, derives totals and persists the sale.
// Line totals are always recomputed from quantity and unit price so the
// stored invariant total = subtotal + tax - discount holds.
func (s *Service) CreateSale(ctx context.Context, req CreateSaleRequest) (*Sale, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	sale := &Sale{
		CustomerID:    req.CustomerID,
		CustomerName:  req.CustomerName,
		Tax:           req.Tax,
		Discount:      req.Discount,
		Status:        SaleStatusCompleted,
		PaymentMethod: req.PaymentMethod,
		CreatedAt:     s.now(),
		Items:         make([]SaleItem, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		lineTotal := item.Quantity * item.UnitPrice
		sale.Subtotal += lineTotal
		sale.Items = append(sale.Items, SaleItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       lineTotal,
		})
	}
	sale.Total = sale.Subtotal + sale.Tax - sale.Discount

	if err := s.repo.CreateSale(ctx, sale); err != nil {
		return nil, err
	}
	s.bump(ctx)
	return sale, nil
}

// GetSale fetches one sale with items.
func (s *Service) GetSale(ctx context.Context, id string) (*Sale, error) {
	return s.repo.GetSale(ctx, id)
}

// ListSales returns sales inside the optional window.
func (s *Service) ListSales(ctx context.Context, from, to *time.Time) ([]Sale, error) {
	return s.repo.SalesBetween(ctx, from, to)
}

// CreateReturn validates and persists a return in pending state.
func (s *Service) CreateReturn(ctx context.Context, req CreateReturnRequest) (*Return, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	ret := &Return{
		SaleID:       req.SaleID,
		CustomerID:   req.CustomerID,
		CustomerName: req.CustomerName,
		RefundAmount: req.RefundAmount,
		RefundMethod: req.RefundMethod,
		Status:       ReturnStatusPending,
		CreatedAt:    s.now(),
		Items:        make([]ReturnItem, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		ret.Items = append(ret.Items, ReturnItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Total:       item.Total,
		})
	}

	if err := s.repo.CreateReturn(ctx, ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// ApproveReturn marks a pending return as approved. Approved returns start
// counting against revenue, so the report cache is bumped.
func (s *Service) ApproveReturn(ctx context.Context, id string) error {
	if err := s.repo.SetReturnStatus(ctx, id, ReturnStatusApproved); err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

// RejectReturn marks a pending return as rejected.
func (s *Service) RejectReturn(ctx context.Context, id string) error {
	return s.repo.SetReturnStatus(ctx, id, ReturnStatusRejected)
}

// ListReturns returns returns inside the optional window.
func (s *Service) ListReturns(ctx context.Context, from, to *time.Time) ([]Return, error) {
	return s.repo.ReturnsBetween(ctx, from, to)
}

// CreateInvoice persists an invoice, independent or sale-linked.
func (s *Service) CreateInvoice(ctx context.Context, inv Invoice) (*Invoice, error) {
	if inv.Total < 0 {
		return nil, fmt.Errorf("%w: total must not be negative", ErrValidation)
	}
	if inv.Status == "" {
		inv.Status = InvoiceStatusDraft
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = s.now()
	}
	if err := s.repo.CreateInvoice(ctx, &inv); err != nil {
		return nil, err
	}
	s.bump(ctx)
	return &inv, nil
}

// ListInvoices returns invoices inside the optional window.
func (s *Service) ListInvoices(ctx context.Context, from, to *time.Time) ([]Invoice, error) {
	return s.repo.InvoicesBetween(ctx, from, to)
}

func (s *Service) bump(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx); err != nil && s.logger != nil {
		s.logger.Warn("bump report cache", slog.Any("error", err))
	}
}
