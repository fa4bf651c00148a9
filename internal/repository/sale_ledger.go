package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/inventory-pos/internal/database"
	"github.com/iliyamo/inventory-pos/internal/model"
)

// LedgerTx is the set of operations the sale workflow runs inside a single
// transaction. Lock* methods take row locks held until the transaction
// ends; both return ErrNotFound for missing rows.
type LedgerTx interface {
	LockProduct(ctx context.Context, id uint64) (model.Product, error)
	SetStock(ctx context.Context, productID uint64, qty int) error
	LockSale(ctx context.Context, id uint64) (model.Sale, error)
	InsertSale(ctx context.Context, s *model.Sale) error
	UpdateSale(ctx context.Context, s *model.Sale) error
	DeleteSale(ctx context.Context, id uint64) error
}

// SaleLedger runs sale workflow steps in MySQL transactions.
type SaleLedger struct {
	DB       *sql.DB
	Products *ProductRepo
	Sales    *SaleRepo
}

func NewSaleLedger(db *sql.DB, products *ProductRepo, sales *SaleRepo) *SaleLedger {
	return &SaleLedger{DB: db, Products: products, Sales: sales}
}

// InTx runs fn in a transaction, committing only when fn returns nil.
func (l *SaleLedger) InTx(ctx context.Context, fn func(tx LedgerTx) error) error {
	return database.WithTx(ctx, l.DB, func(tx *sql.Tx) error {
		return fn(&ledgerTx{tx: tx, products: l.Products, sales: l.Sales})
	})
}

type ledgerTx struct {
	tx       *sql.Tx
	products *ProductRepo
	sales    *SaleRepo
}

func (t *ledgerTx) LockProduct(ctx context.Context, id uint64) (model.Product, error) {
	return t.products.GetForUpdateTx(ctx, t.tx, id)
}

func (t *ledgerTx) SetStock(ctx context.Context, productID uint64, qty int) error {
	return t.products.SetStockTx(ctx, t.tx, productID, qty)
}

func (t *ledgerTx) LockSale(ctx context.Context, id uint64) (model.Sale, error) {
	return t.sales.GetForUpdateTx(ctx, t.tx, id)
}

func (t *ledgerTx) InsertSale(ctx context.Context, s *model.Sale) error {
	return t.sales.CreateTx(ctx, t.tx, s)
}

func (t *ledgerTx) UpdateSale(ctx context.Context, s *model.Sale) error {
	return t.sales.UpdateTx(ctx, t.tx, s)
}

func (t *ledgerTx) DeleteSale(ctx context.Context, id uint64) error {
	return t.sales.DeleteTx(ctx, t.tx, id)
}
