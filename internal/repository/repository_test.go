package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/inventory-pos/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var productCols = []string{"id", "name", "price", "selling_price", "stock_quantity", "description", "image_url", "vendor_id", "created_at", "updated_at"}

func TestMapErr(t *testing.T) {
	assert.NoError(t, mapErr(nil))
	assert.ErrorIs(t, mapErr(sql.ErrNoRows), ErrNotFound)
	assert.ErrorIs(t, mapErr(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}), ErrDuplicate)

	other := errors.New("connection reset")
	assert.Equal(t, other, mapErr(other))
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("INSERT INTO users").
		WithArgs("Ann", "Lee", "ann@example.com", "+15551234567", "digest").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'ann@example.com'"})

	u := &model.User{FirstName: "Ann", LastName: "Lee", Email: "  Ann@Example.com ", Phone: "+15551234567", PasswordHash: "digest"}
	err := NewUserRepo(db).Create(context.Background(), u)
	require.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserGetByEmailNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("SELECT .* FROM users WHERE email=").
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := NewUserRepo(db).GetByEmail(context.Background(), "Ghost@example.com")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestProductGetForUpdateLocksRow(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = ? FOR UPDATE")).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(7, "Widget", "10.00", "12.50", 10, nil, model.DefaultProductImage, nil, now, now))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	p, err := NewProductRepo(db).GetForUpdateTx(context.Background(), tx, 7)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	assert.Equal(t, "Widget", p.Name)
	assert.Equal(t, 10, p.StockQuantity)
	assert.True(t, p.SellingPrice.Equal(decimal.RequireFromString("12.5")))
	assert.Nil(t, p.Description)
	assert.Nil(t, p.VendorID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductUpsertReportsCreation(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepo(db)
	p := &model.Product{Name: "Widget", Price: decimal.NewFromInt(1), SellingPrice: decimal.NewFromInt(2), StockQuantity: 3}

	mock.ExpectExec("INSERT INTO products .* ON DUPLICATE KEY UPDATE").WillReturnResult(sqlmock.NewResult(1, 1))
	created, err := repo.UpsertByName(context.Background(), p)
	require.NoError(t, err)
	assert.True(t, created)

	mock.ExpectExec("INSERT INTO products .* ON DUPLICATE KEY UPDATE").WillReturnResult(sqlmock.NewResult(1, 2))
	created, err = repo.UpsertByName(context.Background(), p)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestProductDeleteMissing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("DELETE FROM products").WithArgs(uint64(9)).WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, NewProductRepo(db).Delete(context.Background(), 9), ErrNotFound)
}

func TestSaleListJoinsDeletedProduct(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now()
	cols := []string{"id", "product_id", "user_id", "quantity", "created_at", "first_name", "name", "selling_price"}
	mock.ExpectQuery("FROM sales s\\s+LEFT JOIN users u").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(2, 7, 1, 3, now, "Ann", "Widget", "12.50").
			AddRow(1, 8, 1, 2, now, "Ann", nil, nil))

	sales, err := NewSaleRepo(db).List(context.Background())
	require.NoError(t, err)
	require.Len(t, sales, 2)

	assert.True(t, sales[0].TotalAmount.Equal(decimal.RequireFromString("37.5")))
	require.NotNil(t, sales[0].ProductName)
	assert.Equal(t, "Widget", *sales[0].ProductName)

	assert.Nil(t, sales[1].ProductName)
	assert.Nil(t, sales[1].SellingPrice)
	assert.True(t, sales[1].TotalAmount.IsZero())
}

func TestSaleLedgerRollsBackOnError(t *testing.T) {
	db, mock := newMock(t)
	ledger := NewSaleLedger(db, NewProductRepo(db), NewSaleRepo(db))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = ? FOR UPDATE")).
		WithArgs(uint64(3)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := ledger.InTx(context.Background(), func(tx LedgerTx) error {
		_, err := tx.LockProduct(context.Background(), 3)
		return err
	})
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleLedgerCommitsSaleAndStock(t *testing.T) {
	db, mock := newMock(t)
	ledger := NewSaleLedger(db, NewProductRepo(db), NewSaleRepo(db))
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = ? FOR UPDATE")).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(7, "Widget", "10.00", "12.50", 10, nil, model.DefaultProductImage, nil, now, now))
	mock.ExpectExec("UPDATE products SET stock_quantity").WithArgs(7, uint64(7)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO sales").WithArgs(uint64(7), uint64(1), 3).WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery("SELECT id, product_id, user_id, quantity, created_at FROM sales WHERE id").
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "user_id", "quantity", "created_at"}).
			AddRow(11, 7, 1, 3, now))
	mock.ExpectCommit()

	sale := &model.Sale{ProductID: 7, UserID: 1, Quantity: 3}
	err := ledger.InTx(context.Background(), func(tx LedgerTx) error {
		p, err := tx.LockProduct(context.Background(), 7)
		if err != nil {
			return err
		}
		if err := tx.SetStock(context.Background(), p.ID, p.StockQuantity-sale.Quantity); err != nil {
			return err
		}
		return tx.InsertSale(context.Background(), sale)
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(11), sale.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestContactSetStatusMissing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("UPDATE contacts SET status").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT EXISTS").WithArgs(uint64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	err := NewContactRepo(db).SetStatus(context.Background(), 4, model.ContactPending)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestImportHistoryDecodesErrors(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now()
	cols := []string{"id", "filename", "status", "total_rows", "successful_rows", "failed_rows", "errors", "created_at", "completed_at", "user_id"}
	mock.ExpectQuery("FROM import_history WHERE id").
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(5, "p.csv", model.ImportCompleted, 2, 1, 1, []byte(`[{"row":3,"product_name":"X","error":"bad price"}]`), now, now, 1))

	h, err := NewImportHistoryRepo(db).GetByID(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, h.Errors, 1)
	assert.Equal(t, 3, h.Errors[0].Row)
	require.NotNil(t, h.UserID)
	assert.Equal(t, uint64(1), *h.UserID)
}

func TestTokenDenylist(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	d := NewTokenDenylist(rdb)
	ctx := context.Background()

	revoked, err := d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, d.Revoke(ctx, "jti-1", time.Now().Add(time.Minute)))
	revoked, err = d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Minute)
	revoked, err = d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, d.Revoke(ctx, "jti-2", time.Now().Add(-time.Second)))
	revoked, err = d.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestProductUpdateLeavesStockAlone(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepo(db)
	desc := "blue"
	p := &model.Product{ID: 4, Name: "Widget", Price: decimal.RequireFromString("1"),
		SellingPrice: decimal.RequireFromString("2"), StockQuantity: 99, Description: &desc, ImageURL: model.DefaultProductImage}

	mock.ExpectExec(`UPDATE products SET name = \?, price = \?, selling_price = \?,\s+description = \?, image_url = \?, vendor_id = \? WHERE id = \?`).
		WithArgs("Widget", p.Price, p.SellingPrice, sql.NullString{String: "blue", Valid: true}, model.DefaultProductImage, sql.NullInt64{}, uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Update(context.Background(), p))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET stock_quantity = ? WHERE id = ?")).
		WithArgs(12, uint64(4)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM products WHERE id = ?)")).
		WithArgs(uint64(4)).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	require.ErrorIs(t, repo.SetStock(context.Background(), 4, 12), ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}
