package repo

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	domain "github.com/ViduraMC/Bakery-App/internal/entity"
	"github.com/ViduraMC/Bakery-App/internal/usecase"
)

type SQLProductRepo struct{ db *sql.DB }

func NewSQLProductRepo(db *sql.DB) *SQLProductRepo { return &SQLProductRepo{db: db} }

const productColumns = `id,name,description,price,quantity,category,image_url,created_at,updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Quantity, &p.Category, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func getProduct(ctx context.Context, q querier, id string) (*domain.Product, error) {
	p, err := scanProduct(q.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id=?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProductNotFound
	}
	return p, err
}

func (r *SQLProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return getProduct(ctx, r.db, id)
}

func (r *SQLProductRepo) List(ctx context.Context) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLProductRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n)
	return n, err
}

func (r *SQLProductRepo) Create(ctx context.Context, p *domain.Product) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO products (`+productColumns+`)
VALUES (?,?,?,?,?,?,?,?,?)`,
		p.ID, p.Name, p.Description, p.Price, p.Quantity, p.Category, p.ImageURL, p.CreatedAt, p.UpdatedAt)
	return err
}

// Update sets only the columns the patch names. Quantity is left alone unless
// the patch carries one, so an order committed since the caller last read the
// product keeps its decrement.
func (r *SQLProductRepo) Update(ctx context.Context, id string, patch domain.ProductPatch, at time.Time) (p *domain.Product, err error) {
	set := []string{"updated_at=?"}
	args := []any{at}
	if patch.Name != nil {
		set, args = append(set, "name=?"), append(args, *patch.Name)
	}
	if patch.Description != nil {
		set, args = append(set, "description=?"), append(args, *patch.Description)
	}
	if patch.Price != nil {
		set, args = append(set, "price=?"), append(args, *patch.Price)
	}
	if patch.Quantity != nil {
		set, args = append(set, "quantity=?"), append(args, *patch.Quantity)
	}
	if patch.Category != nil {
		set, args = append(set, "category=?"), append(args, *patch.Category)
	}
	if patch.ImageURL != nil {
		set, args = append(set, "image_url=?"), append(args, *patch.ImageURL)
	}
	args = append(args, id)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `UPDATE products SET `+strings.Join(set, ", ")+` WHERE id=?`, args...)
	if err != nil {
		return nil, err
	}
	if err = expectRow(res, domain.ErrProductNotFound); err != nil {
		return nil, err
	}
	if p, err = getProduct(ctx, tx, id); err != nil {
		return nil, err
	}
	return p, tx.Commit()
}

func (r *SQLProductRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id=?`, id)
	if err != nil {
		return err
	}
	return expectRow(res, domain.ErrProductNotFound)
}

// expectRow maps "nothing matched" to notFound.
func expectRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

var _ usecase.ProductRepo = (*SQLProductRepo)(nil)
