package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/inventory-pos/internal/model"
)

// SaleRepo persists sales. Mutations take a *sql.Tx so that the sale row
// and the product stock change commit together; reads use the pool.
type SaleRepo struct{ DB *sql.DB }

func NewSaleRepo(db *sql.DB) *SaleRepo { return &SaleRepo{DB: db} }

const saleDetailQuery = `SELECT s.id, s.product_id, s.user_id, s.quantity, s.created_at,
       u.first_name, p.name, p.selling_price
FROM sales s
LEFT JOIN users u ON u.id = s.user_id
LEFT JOIN products p ON p.id = s.product_id`

func scanSale(row rowScanner) (model.Sale, error) {
	var s model.Sale
	err := row.Scan(&s.ID, &s.ProductID, &s.UserID, &s.Quantity, &s.CreatedAt)
	return s, mapErr(err)
}

func scanSaleDetail(row rowScanner) (model.SaleDetail, error) {
	var (
		d         model.SaleDetail
		firstName sql.NullString
		name      sql.NullString
		price     decimal.NullDecimal
	)
	err := row.Scan(&d.ID, &d.ProductID, &d.UserID, &d.Quantity, &d.CreatedAt, &firstName, &name, &price)
	if err != nil {
		return model.SaleDetail{}, mapErr(err)
	}
	d.FirstName = stringPtr(firstName)
	d.ProductName = stringPtr(name)
	if price.Valid {
		p := price.Decimal
		d.SellingPrice = &p
	}
	d.ComputeTotal()
	return d, nil
}

func (r *SaleRepo) queryDetails(ctx context.Context, q string, args ...any) ([]model.SaleDetail, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.SaleDetail, 0)
	for rows.Next() {
		d, err := scanSaleDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// CreateTx inserts s within tx and reads back the generated id and
// creation time.
func (r *SaleRepo) CreateTx(ctx context.Context, tx *sql.Tx, s *model.Sale) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO sales (product_id, user_id, quantity) VALUES (?, ?, ?)",
		s.ProductID, s.UserID, s.Quantity)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := scanSale(tx.QueryRowContext(ctx,
		"SELECT id, product_id, user_id, quantity, created_at FROM sales WHERE id = ?", id))
	if err != nil {
		return err
	}
	*s = created
	return nil
}

// GetForUpdateTx loads a sale and locks its row until tx ends.
func (r *SaleRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Sale, error) {
	return scanSale(tx.QueryRowContext(ctx,
		"SELECT id, product_id, user_id, quantity, created_at FROM sales WHERE id = ? FOR UPDATE", id))
}

func (r *SaleRepo) UpdateTx(ctx context.Context, tx *sql.Tx, s *model.Sale) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE sales SET product_id = ?, user_id = ?, quantity = ? WHERE id = ?",
		s.ProductID, s.UserID, s.Quantity, s.ID)
	return err
}

func (r *SaleRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx, "DELETE FROM sales WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns every sale joined with its user and product, newest first.
func (r *SaleRepo) List(ctx context.Context) ([]model.SaleDetail, error) {
	return r.queryDetails(ctx, saleDetailQuery+" ORDER BY s.created_at DESC, s.id DESC")
}

func (r *SaleRepo) GetByID(ctx context.Context, id uint64) (model.SaleDetail, error) {
	return scanSaleDetail(r.DB.QueryRowContext(ctx, saleDetailQuery+" WHERE s.id = ?", id))
}

func (r *SaleRepo) ListByUser(ctx context.Context, userID uint64) ([]model.SaleDetail, error) {
	return r.queryDetails(ctx, saleDetailQuery+" WHERE s.user_id = ? ORDER BY s.created_at DESC, s.id DESC", userID)
}

// RecentByUser returns at most limit sales of userID created at or after
// since, newest first.
func (r *SaleRepo) RecentByUser(ctx context.Context, userID uint64, since time.Time, limit int) ([]model.SaleDetail, error) {
	return r.queryDetails(ctx,
		saleDetailQuery+" WHERE s.user_id = ? AND s.created_at >= ? ORDER BY s.created_at DESC, s.id DESC LIMIT ?",
		userID, since.UTC(), limit)
}

// StatsByUser counts a user's sales and sums quantity * selling_price.
// Sales whose product was deleted count but contribute no revenue.
func (r *SaleRepo) StatsByUser(ctx context.Context, userID uint64) (int, decimal.Decimal, error) {
	var (
		count   int
		revenue decimal.Decimal
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(s.id), COALESCE(SUM(s.quantity * p.selling_price), 0)
		 FROM sales s LEFT JOIN products p ON p.id = s.product_id
		 WHERE s.user_id = ?`, userID).Scan(&count, &revenue)
	return count, revenue, err
}
