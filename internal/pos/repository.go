package pos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for POS entities.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ErrNotFound indicates resource not found.
var ErrNotFound = errors.New("pos: not found")

// ErrDuplicate indicates a unique constraint violation.
var ErrDuplicate = errors.New("pos: duplicate")

const uniqueViolation = "23505"

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}

// --- Sale Operations ---

// CreateSale persists a sale and its line items in one transaction.
func (r *Repository) CreateSale(ctx context.Context, sale *Sale) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if sale.ID == "" {
		sale.ID = uuid.NewString()
	}

	const saleQuery = `
		INSERT INTO sales (
			id, customer_id, customer_name, subtotal, tax, discount, total,
			status, payment_method, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at`

	createdAt := sale.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	if err := tx.QueryRow(ctx, saleQuery,
		sale.ID,
		sale.CustomerID,
		sale.CustomerName,
		sale.Subtotal,
		sale.Tax,
		sale.Discount,
		sale.Total,
		sale.Status,
		sale.PaymentMethod,
		createdAt,
	).Scan(&sale.CreatedAt); err != nil {
		return mapPgError(err)
	}

	const itemQuery = `
		INSERT INTO sale_items (sale_id, product_id, product_name, quantity, unit_price, total)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	for i := range sale.Items {
		item := &sale.Items[i]
		item.SaleID = sale.ID
		if err := tx.QueryRow(ctx, itemQuery,
			sale.ID,
			item.ProductID,
			item.ProductName,
			item.Quantity,
			item.UnitPrice,
			item.Total,
		).Scan(&item.ID); err != nil {
			return mapPgError(err)
		}
	}

	return tx.Commit(ctx)
}

// GetSale fetches a sale with its line items.
func (r *Repository) GetSale(ctx context.Context, id string) (*Sale, error) {
	const query = `
		SELECT id, customer_id, customer_name, subtotal, tax, discount, total,
		       status, payment_method, created_at
		FROM sales WHERE id = $1`

	var sale Sale
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&sale.ID, &sale.CustomerID, &sale.CustomerName,
		&sale.Subtotal, &sale.Tax, &sale.Discount, &sale.Total,
		&sale.Status, &sale.PaymentMethod, &sale.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	items, err := r.saleItems(ctx, []string{sale.ID})
	if err != nil {
		return nil, err
	}
	sale.Items = items[sale.ID]
	return &sale, nil
}

// SalesBetween returns sales created inside the window, items included.
// Nil bounds are unbounded.
func (r *Repository) SalesBetween(ctx context.Context, from, to *time.Time) ([]Sale, error) {
	query := `
		SELECT id, customer_id, customer_name, subtotal, tax, discount, total,
		       status, payment_method, created_at
		FROM sales WHERE 1=1`
	args := []interface{}{}
	query, args = appendWindow(query, args, from, to)
	query += " ORDER BY created_at ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := make([]Sale, 0)
	ids := make([]string, 0)
	for rows.Next() {
		var sale Sale
		if err := rows.Scan(
			&sale.ID, &sale.CustomerID, &sale.CustomerName,
			&sale.Subtotal, &sale.Tax, &sale.Discount, &sale.Total,
			&sale.Status, &sale.PaymentMethod, &sale.CreatedAt,
		); err != nil {
			return nil, err
		}
		sales = append(sales, sale)
		ids = append(ids, sale.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	items, err := r.saleItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range sales {
		sales[i].Items = items[sales[i].ID]
	}
	return sales, nil
}

func (r *Repository) saleItems(ctx context.Context, saleIDs []string) (map[string][]SaleItem, error) {
	result := make(map[string][]SaleItem, len(saleIDs))
	if len(saleIDs) == 0 {
		return result, nil
	}

	const query = `
		SELECT id, sale_id, product_id, product_name, quantity, unit_price, total
		FROM sale_items WHERE sale_id = ANY($1) ORDER BY id ASC`

	rows, err := r.pool.Query(ctx, query, saleIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item SaleItem
		if err := rows.Scan(
			&item.ID, &item.SaleID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.UnitPrice, &item.Total,
		); err != nil {
			return nil, err
		}
		result[item.SaleID] = append(result[item.SaleID], item)
	}
	return result, rows.Err()
}

// --- Return Operations ---

// CreateReturn persists a return and its line items in one transaction.
func (r *Repository) CreateReturn(ctx context.Context, ret *Return) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if ret.ID == "" {
		ret.ID = uuid.NewString()
	}

	const retQuery = `
		INSERT INTO returns (
			id, sale_id, customer_id, customer_name, refund_amount, refund_method,
			status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`

	createdAt := ret.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	if err := tx.QueryRow(ctx, retQuery,
		ret.ID,
		ret.SaleID,
		ret.CustomerID,
		ret.CustomerName,
		ret.RefundAmount,
		ret.RefundMethod,
		ret.Status,
		createdAt,
	).Scan(&ret.CreatedAt); err != nil {
		return mapPgError(err)
	}

	const itemQuery = `
		INSERT INTO return_items (return_id, product_id, product_name, quantity, total)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	for i := range ret.Items {
		item := &ret.Items[i]
		item.ReturnID = ret.ID
		if err := tx.QueryRow(ctx, itemQuery,
			ret.ID,
			item.ProductID,
			item.ProductName,
			item.Quantity,
			item.Total,
		).Scan(&item.ID); err != nil {
			return mapPgError(err)
		}
	}

	return tx.Commit(ctx)
}

// SetReturnStatus transitions a return to the given status.
func (r *Repository) SetReturnStatus(ctx context.Context, id string, status ReturnStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE returns SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ReturnsBetween returns returns created inside the window, items included.
func (r *Repository) ReturnsBetween(ctx context.Context, from, to *time.Time) ([]Return, error) {
	query := `
		SELECT id, sale_id, customer_id, customer_name, refund_amount, refund_method,
		       status, created_at
		FROM returns WHERE 1=1`
	args := []interface{}{}
	query, args = appendWindow(query, args, from, to)
	query += " ORDER BY created_at ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	returns := make([]Return, 0)
	ids := make([]string, 0)
	for rows.Next() {
		var ret Return
		if err := rows.Scan(
			&ret.ID, &ret.SaleID, &ret.CustomerID, &ret.CustomerName,
			&ret.RefundAmount, &ret.RefundMethod, &ret.Status, &ret.CreatedAt,
		); err != nil {
			return nil, err
		}
		returns = append(returns, ret)
		ids = append(ids, ret.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	items, err := r.returnItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range returns {
		returns[i].Items = items[returns[i].ID]
	}
	return returns, nil
}

func (r *Repository) returnItems(ctx context.Context, returnIDs []string) (map[string][]ReturnItem, error) {
	result := make(map[string][]ReturnItem, len(returnIDs))
	if len(returnIDs) == 0 {
		return result, nil
	}

	const query = `
		SELECT id, return_id, product_id, product_name, quantity, total
		FROM return_items WHERE return_id = ANY($1) ORDER BY id ASC`

	rows, err := r.pool.Query(ctx, query, returnIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item ReturnItem
		if err := rows.Scan(
			&item.ID, &item.ReturnID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.Total,
		); err != nil {
			return nil, err
		}
		result[item.ReturnID] = append(result[item.ReturnID], item)
	}
	return result, rows.Err()
}

// --- Invoice Operations ---

// CreateInvoice persists an invoice. SaleID nil means the invoice is independent.
func (r *Repository) CreateInvoice(ctx context.Context, inv *Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	createdAt := inv.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	const query = `
		INSERT INTO invoices (id, sale_id, total, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	if err := r.pool.QueryRow(ctx, query,
		inv.ID, inv.SaleID, inv.Total, inv.Status, createdAt,
	).Scan(&inv.CreatedAt); err != nil {
		return mapPgError(err)
	}
	return nil
}

// InvoicesBetween returns invoices created inside the window.
func (r *Repository) InvoicesBetween(ctx context.Context, from, to *time.Time) ([]Invoice, error) {
	query := `
		SELECT id, sale_id, total, status, created_at
		FROM invoices WHERE 1=1`
	args := []interface{}{}
	query, args = appendWindow(query, args, from, to)
	query += " ORDER BY created_at ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invoices := make([]Invoice, 0)
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(&inv.ID, &inv.SaleID, &inv.Total, &inv.Status, &inv.CreatedAt); err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

// --- Lookups ---

// Products returns the product catalogue.
func (r *Repository) Products(ctx context.Context) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, category, price FROM products ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Price); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Customers returns all customers.
func (r *Repository) Customers(ctx context.Context) ([]Customer, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM customers ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]Customer, 0)
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// GetCustomer fetches a customer by id.
func (r *Repository) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	var c Customer
	err := r.pool.QueryRow(ctx, `SELECT id, name FROM customers WHERE id = $1`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func appendWindow(query string, args []interface{}, from, to *time.Time) (string, []interface{}) {
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	return query, args
}
