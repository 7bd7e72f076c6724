package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domain "github.com/ViduraMC/Bakery-App/internal/entity"
	"github.com/ViduraMC/Bakery-App/internal/usecase"
)

type SQLOrderRepo struct {
	db *sql.DB
	// beforeDecrement runs inside the commit transaction, before each stock
	// decrement. Tests use it to inject failures.
	beforeDecrement func(line int, productID string) error
}

func NewSQLOrderRepo(db *sql.DB) *SQLOrderRepo { return &SQLOrderRepo{db: db} }

// Create writes the order, its items and every stock decrement in one transaction.
// The decrement is conditional on enough stock, so concurrent commits can never
// drive a quantity below zero.
func (r *SQLOrderRepo) Create(ctx context.Context, o *domain.Order) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `
INSERT INTO orders (id,customer_name,customer_email,status,total_amount,created_at)
VALUES (?,?,?,?,?,?)`,
		o.ID, o.CustomerName, o.CustomerEmail, string(o.Status), o.TotalAmount, o.CreatedAt); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i, it := range o.Items {
		if r.beforeDecrement != nil {
			if err = r.beforeDecrement(i, it.ProductID); err != nil {
				return err
			}
		}
		if err = decrementStock(ctx, tx, it.ProductID, it.Quantity); err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, `
INSERT INTO order_items (id,order_id,line_no,product_id,quantity,price)
VALUES (?,?,?,?,?,?)`,
			it.ID, o.ID, i, it.ProductID, it.Quantity, it.Price); err != nil {
			return fmt.Errorf("insert item %d: %w", i, err)
		}
	}

	return tx.Commit()
}

func decrementStock(ctx context.Context, tx *sql.Tx, productID string, qty int) error {
	res, err := tx.ExecContext(ctx, `
UPDATE products SET quantity = quantity - ?
WHERE id = ? AND quantity >= ?`, qty, productID, qty)
	if err != nil {
		return fmt.Errorf("decrement stock %s: %w", productID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	// nothing matched: either the product is gone or stock is short
	p, err := getProduct(ctx, tx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
		}
		return err
	}
	return &domain.InsufficientStockError{
		ProductID:   p.ID,
		ProductName: p.Name,
		Requested:   qty,
		Available:   p.Quantity,
	}
}

func (r *SQLOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	var (
		o      domain.Order
		status string
	)
	err := r.db.QueryRowContext(ctx, `
SELECT id,customer_name,customer_email,status,total_amount,created_at
FROM orders WHERE id=?`, id).
		Scan(&o.ID, &o.CustomerName, &o.CustomerEmail, &status, &o.TotalAmount, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	o.Status = domain.Status(status)

	items, err := r.items(ctx, `WHERE order_id=?`, id)
	if err != nil {
		return nil, err
	}
	o.Items = items[id]
	if o.Items == nil {
		o.Items = []domain.OrderItem{}
	}
	return &o, nil
}

// List returns every order newest first, each with its items in line order.
func (r *SQLOrderRepo) List(ctx context.Context) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id,customer_name,customer_email,status,total_amount,created_at
FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Order{}
	for rows.Next() {
		var (
			o      domain.Order
			status string
		)
		if err := rows.Scan(&o.ID, &o.CustomerName, &o.CustomerEmail, &status, &o.TotalAmount, &o.CreatedAt); err != nil {
			return nil, err
		}
		o.Status = domain.Status(status)
		out = append(out, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// release the single SQLite connection before the items query
	rows.Close()

	items, err := r.items(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, o := range out {
		o.Items = items[o.ID]
		if o.Items == nil {
			o.Items = []domain.OrderItem{}
		}
	}
	return out, nil
}

func (r *SQLOrderRepo) items(ctx context.Context, where string, args ...any) (map[string][]domain.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id,order_id,product_id,quantity,price
FROM order_items `+where+` ORDER BY order_id, line_no`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string][]domain.OrderItem{}
	for rows.Next() {
		var (
			it      domain.OrderItem
			orderID string
		)
		if err := rows.Scan(&it.ID, &orderID, &it.ProductID, &it.Quantity, &it.Price); err != nil {
			return nil, err
		}
		out[orderID] = append(out[orderID], it)
	}
	return out, rows.Err()
}

func (r *SQLOrderRepo) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return err
	}
	return expectRow(res, domain.ErrOrderNotFound)
}

var _ usecase.OrderRepo = (*SQLOrderRepo)(nil)
