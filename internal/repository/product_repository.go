// This file holds the product queries used by the admin catalog: insert,
// newest-first listing and a case-insensitive substring search on code.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/shopcart/internal/model"
)

// ProductRepo encapsulates all database queries related to products.
type ProductRepo struct {
	db *sql.DB
}

func NewProductRepo(db *sql.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

const productColumns = "id, code, name, price, description, created_by, created_at"

// Create inserts p and reloads the stored row so that callers get the
// server-assigned id, the stored price precision and created_at.
// A taken code yields ErrDuplicate; a non-positive price ErrCheckViolation.
func (r *ProductRepo) Create(ctx context.Context, p *model.Product) error {
	const qInsert = "INSERT INTO products (code, name, price, description, created_by) VALUES (?, ?, ?, ?, ?)"
	var createdBy any
	if p.CreatedBy != 0 {
		createdBy = p.CreatedBy
	}
	res, err := r.db.ExecContext(ctx, qInsert, p.Code, p.Name, p.Price, p.Description, createdBy)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	stored, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*p = stored
	return nil
}

// GetByID fetches a product by id or returns ErrNotFound.
func (r *ProductRepo) GetByID(ctx context.Context, id uint64) (model.Product, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = ?", id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, ErrNotFound
	}
	return p, err
}

// List returns every product, most recently created first.
func (r *ProductRepo) List(ctx context.Context) ([]model.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+productColumns+" FROM products ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

// FirstByCodeFragment returns the lowest-id product whose code contains
// fragment, ignoring case.  ErrNotFound when nothing matches.
func (r *ProductRepo) FirstByCodeFragment(ctx context.Context, fragment string) (model.Product, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+productColumns+` FROM products
		 WHERE LOWER(code) LIKE ? ESCAPE '\\'
		 ORDER BY id ASC
		 LIMIT 1`, likePattern(fragment))
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, ErrNotFound
	}
	return p, err
}

// SearchByCodeFragment returns every product whose code contains fragment,
// ignoring case, ordered by code.
func (r *ProductRepo) SearchByCodeFragment(ctx context.Context, fragment string) ([]model.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+productColumns+` FROM products
		 WHERE LOWER(code) LIKE ? ESCAPE '\\'
		 ORDER BY code ASC`, likePattern(fragment))
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern lowercases fragment, escapes LIKE wildcards and wraps it for
// a substring match.
func likePattern(fragment string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(fragment)) + "%"
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(s rowScanner) (model.Product, error) {
	var (
		p         model.Product
		desc      sql.NullString
		createdBy sql.NullInt64
	)
	if err := s.Scan(&p.ID, &p.Code, &p.Name, &p.Price, &desc, &createdBy, &p.CreatedAt); err != nil {
		return model.Product{}, err
	}
	if desc.Valid {
		d := desc.String
		p.Description = &d
	}
	if createdBy.Valid {
		p.CreatedBy = uint64(createdBy.Int64)
	}
	return p, nil
}

func collectProducts(rows *sql.Rows) ([]model.Product, error) {
	defer rows.Close()
	out := make([]model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
