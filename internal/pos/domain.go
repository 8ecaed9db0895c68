package pos

import (
	"time"

	"github.com/ledgerpos/ledgerpos/internal/pos/sale"
)

// ============================================================================
// SALE
// ============================================================================

// The sale types are defined in the internal/pos/sale leaf package so that
// internal/docs can reference them without importing pos (pos imports docs,
// and a direct reference would form an import cycle). The aliases below keep
// pos.Sale et al. identical to their sale package counterparts.

type SaleStatus = sale.SaleStatus

const (
	SaleStatusPending   = sale.SaleStatusPending
	SaleStatusCompleted = sale.SaleStatusCompleted
	SaleStatusRefunded  = sale.SaleStatusRefunded
	SaleStatusCancelled = sale.SaleStatusCancelled
)

type Sale = sale.Sale

type SaleItem = sale.SaleItem

type CreateSaleRequest struct {
	CustomerID    *string             `json:"customer_id,omitempty"`
	CustomerName  *string             `json:"customer_name,omitempty" validate:"omitempty,max=200"`
	Tax           float64             `json:"tax" validate:"gte=0"`
	Discount      float64             `json:"discount" validate:"gte=0"`
	PaymentMethod string              `json:"payment_method" validate:"required,max=50"`
	Items         []CreateSaleItemReq `json:"items" validate:"required,min=1,dive"`
}

type CreateSaleItemReq struct {
	ProductID   string  `json:"product_id" validate:"required"`
	ProductName string  `json:"product_name" validate:"required,max=200"`
	Quantity    float64 `json:"quantity" validate:"required,gt=0"`
	UnitPrice   float64 `json:"unit_price" validate:"required,gte=0"`
}

// ============================================================================
// RETURN
// ============================================================================

type ReturnStatus string

const (
	ReturnStatusPending   ReturnStatus = "pending"
	ReturnStatusApproved  ReturnStatus = "approved"
	ReturnStatusRejected  ReturnStatus = "rejected"
	ReturnStatusCompleted ReturnStatus = "completed"
)

// CountsTowardReconciliation reports whether a return in this status reduces
// revenue. Only approved and completed returns are authoritative.
func (s ReturnStatus) CountsTowardReconciliation() bool {
	return s == ReturnStatusApproved || s == ReturnStatusCompleted
}

type Return struct {
	ID           string       `json:"id" db:"id"`
	SaleID       *string      `json:"sale_id,omitempty" db:"sale_id"`
	CustomerID   *string      `json:"customer_id,omitempty" db:"customer_id"`
	CustomerName *string      `json:"customer_name,omitempty" db:"customer_name"`
	RefundAmount float64      `json:"refund_amount" db:"refund_amount"`
	RefundMethod string       `json:"refund_method" db:"refund_method"`
	Status       ReturnStatus `json:"status" db:"status"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	Items        []ReturnItem `json:"items,omitempty" db:"-"`
}

type ReturnItem struct {
	ID          int64   `json:"id" db:"id"`
	ReturnID    string  `json:"return_id" db:"return_id"`
	ProductID   string  `json:"product_id" db:"product_id"`
	ProductName string  `json:"product_name" db:"product_name"`
	Quantity    float64 `json:"quantity" db:"quantity"`
	Total       float64 `json:"total" db:"total"`
}

type CreateReturnRequest struct {
	SaleID       *string               `json:"sale_id,omitempty"`
	CustomerID   *string               `json:"customer_id,omitempty"`
	CustomerName *string               `json:"customer_name,omitempty" validate:"omitempty,max=200"`
	RefundAmount float64               `json:"refund_amount" validate:"required,gt=0"`
	RefundMethod string                `json:"refund_method" validate:"required,max=50"`
	Items        []CreateReturnItemReq `json:"items" validate:"required,min=1,dive"`
}

type CreateReturnItemReq struct {
	ProductID   string  `json:"product_id" validate:"required"`
	ProductName string  `json:"product_name" validate:"required,max=200"`
	Quantity    float64 `json:"quantity" validate:"required,gt=0"`
	Total       float64 `json:"total" validate:"required,gte=0"`
}

// ============================================================================
// INVOICE
// ============================================================================

type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusSent    InvoiceStatus = "sent"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// Invoice may be derived from a sale (SaleID set) or stand on its own.
// Sale-linked invoices are already represented by the sale total and must not
// be counted again by revenue reports.
type Invoice struct {
	ID        string        `json:"id" db:"id"`
	SaleID    *string       `json:"sale_id,omitempty" db:"sale_id"`
	Total     float64       `json:"total" db:"total"`
	Status    InvoiceStatus `json:"status" db:"status"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
}

// Independent reports whether the invoice is not derived from a sale.
func (i Invoice) Independent() bool {
	return i.SaleID == nil || *i.SaleID == ""
}

// ============================================================================
// PRODUCT & CUSTOMER
// ============================================================================

type Product struct {
	ID       string  `json:"id" db:"id"`
	Name     string  `json:"name" db:"name"`
	Category string  `json:"category" db:"category"`
	Price    float64 `json:"price" db:"price"`
}

type Customer struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// ============================================================================
// LIST & FILTER REQUESTS
// ============================================================================

type ListSalesRequest struct {
	Status   *SaleStatus `json:"status,omitempty"`
	DateFrom *time.Time  `json:"date_from,omitempty"`
	DateTo   *time.Time  `json:"date_to,omitempty"`
	Limit    int         `json:"limit" validate:"gte=0,lte=1000"`
	Offset   int         `json:"offset" validate:"gte=0"`
}

type ListReturnsRequest struct {
	Status   *ReturnStatus `json:"status,omitempty"`
	DateFrom *time.Time    `json:"date_from,omitempty"`
	DateTo   *time.Time    `json:"date_to,omitempty"`
	Limit    int           `json:"limit" validate:"gte=0,lte=1000"`
	Offset   int           `json:"offset" validate:"gte=0"`
}
