package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/inventory-pos/internal/model"
)

const productColumns = "id, name, price, selling_price, stock_quantity, description, image_url, vendor_id, created_at, updated_at"

// ProductRepo provides CRUD access to products and the row-locking stock
// primitives used by the sale ledger.
type ProductRepo struct{ DB *sql.DB }

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{DB: db} }

func scanProduct(row rowScanner) (model.Product, error) {
	var (
		p      model.Product
		desc   sql.NullString
		vendor sql.NullInt64
	)
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.SellingPrice, &p.StockQuantity,
		&desc, &p.ImageURL, &vendor, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.Product{}, mapErr(err)
	}
	p.Description = stringPtr(desc)
	p.VendorID = uintPtr(vendor)
	return p, nil
}

func (r *ProductRepo) queryProducts(ctx context.Context, q string, args ...any) ([]model.Product, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Create inserts p and reloads it so defaults and timestamps are populated.
func (r *ProductRepo) Create(ctx context.Context, p *model.Product) error {
	if p.ImageURL == "" {
		p.ImageURL = model.DefaultProductImage
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO products (name, price, selling_price, stock_quantity, description, image_url, vendor_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Price, p.SellingPrice, p.StockQuantity, nullString(p.Description), p.ImageURL, nullUint(p.VendorID))
	if err != nil {
		return mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*p = created
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id uint64) (model.Product, error) {
	return scanProduct(r.DB.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = ?", id))
}

func (r *ProductRepo) List(ctx context.Context) ([]model.Product, error) {
	return r.queryProducts(ctx, "SELECT "+productColumns+" FROM products ORDER BY id")
}

func (r *ProductRepo) ListByVendor(ctx context.Context, vendorID uint64) ([]model.Product, error) {
	return r.queryProducts(ctx, "SELECT "+productColumns+" FROM products WHERE vendor_id = ? ORDER BY id", vendorID)
}

// Recent returns the most recently created products, newest first.
func (r *ProductRepo) Recent(ctx context.Context, limit int) ([]model.Product, error) {
	return r.queryProducts(ctx,
		"SELECT "+productColumns+" FROM products ORDER BY created_at DESC, id DESC LIMIT ?", limit)
}

func (r *ProductRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&n)
	return n, err
}

// Update writes the descriptive columns of p. Stock is left alone: it is
// owned by the sale ledger and only changed explicitly through SetStock.
func (r *ProductRepo) Update(ctx context.Context, p *model.Product) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE products SET name = ?, price = ?, selling_price = ?,
		 description = ?, image_url = ?, vendor_id = ? WHERE id = ?`,
		p.Name, p.Price, p.SellingPrice, nullString(p.Description), p.ImageURL, nullUint(p.VendorID), p.ID)
	return mapErr(err)
}

// SetStock overwrites the stock of a product in a single statement, so it
// waits for any sale transaction holding the row lock.
func (r *ProductRepo) SetStock(ctx context.Context, id uint64, qty int) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE products SET stock_quantity = ? WHERE id = ?", qty, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists bool
		if err := r.DB.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM products WHERE id = ?)", id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
	}
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// NameTaken reports whether a product other than exceptID already uses
// name, compared case-insensitively.
func (r *ProductRepo) NameTaken(ctx context.Context, name string, exceptID uint64) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM products WHERE LOWER(name) = LOWER(?) AND id <> ?)",
		strings.TrimSpace(name), exceptID).Scan(&exists)
	return exists, err
}

// UpsertByName inserts p or, when a product with the same name exists,
// overwrites its prices and stock. Description is only replaced when p
// carries one. created reports whether a new row was inserted.
func (r *ProductRepo) UpsertByName(ctx context.Context, p *model.Product) (created bool, err error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO products (name, price, selling_price, stock_quantity, description, image_url)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON DUPLICATE KEY UPDATE
		   price = VALUES(price),
		   selling_price = VALUES(selling_price),
		   stock_quantity = VALUES(stock_quantity),
		   description = COALESCE(VALUES(description), description)`,
		p.Name, p.Price, p.SellingPrice, p.StockQuantity, nullString(p.Description), model.DefaultProductImage)
	if err != nil {
		return false, mapErr(err)
	}
	// MySQL reports 1 for an insert, 2 for an update and 0 for a no-op update.
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// GetForUpdateTx loads a product and locks its row until tx ends.
func (r *ProductRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Product, error) {
	return scanProduct(tx.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = ? FOR UPDATE", id))
}

// SetStockTx overwrites the stock of a product locked by tx.
func (r *ProductRepo) SetStockTx(ctx context.Context, tx *sql.Tx, id uint64, qty int) error {
	_, err := tx.ExecContext(ctx, "UPDATE products SET stock_quantity = ? WHERE id = ?", qty, id)
	return err
}
