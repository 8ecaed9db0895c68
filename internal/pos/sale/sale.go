// Package sale holds the sale domain types shared between internal/pos and
// internal/docs. They live in a leaf package so that docs can build printable
// documents from sales without importing pos, which itself imports docs.
// internal/pos re-exports these types via aliases, so pos.Sale and sale.Sale
// are the same type.
package sale

import (
	"time"
)

type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "pending"
	SaleStatusCompleted SaleStatus = "completed"
	SaleStatusRefunded  SaleStatus = "refunded"
	SaleStatusCancelled SaleStatus = "cancelled"
)

// RevenueEligible reports whether a sale in this status contributes to gross
// revenue. Cancelled and refunded sales never do.
func (s SaleStatus) RevenueEligible() bool {
	return s == SaleStatusPending || s == SaleStatusCompleted
}

type Sale struct {
	ID            string     `json:"id" db:"id"`
	CustomerID    *string    `json:"customer_id,omitempty" db:"customer_id"`
	CustomerName  *string    `json:"customer_name,omitempty" db:"customer_name"`
	Subtotal      float64    `json:"subtotal" db:"subtotal"`
	Tax           float64    `json:"tax" db:"tax"`
	Discount      float64    `json:"discount" db:"discount"`
	Total         float64    `json:"total" db:"total"`
	Status        SaleStatus `json:"status" db:"status"`
	PaymentMethod string     `json:"payment_method" db:"payment_method"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	Items         []SaleItem `json:"items,omitempty" db:"-"`
}

type SaleItem struct {
	ID          int64   `json:"id" db:"id"`
	SaleID      string  `json:"sale_id" db:"sale_id"`
	ProductID   string  `json:"product_id" db:"product_id"`
	ProductName string  `json:"product_name" db:"product_name"`
	Quantity    float64 `json:"quantity" db:"quantity"`
	UnitPrice   float64 `json:"unit_price" db:"unit_price"`
	Total       float64 `json:"total" db:"total"`
}
