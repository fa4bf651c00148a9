package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/inventory-pos/internal/apperr"
	"github.com/iliyamo/inventory-pos/internal/queue"
)

func newSaleService(db *memDB, pub EventPublisher) *SaleService {
	return NewSaleService(memLedger{db: db}, memSales{db: db}, pub, zap.NewNop())
}

func TestSaleScenario(t *testing.T) {
	db := newMemDB()
	pub := &recordingPublisher{}
	svc := newSaleService(db, pub)
	ctx := context.Background()
	p := db.addProduct("Widget", 10, "2.50")

	sale, err := svc.Create(ctx, SaleInput{ProductID: p.ID, UserID: 1, Quantity: 7})
	require.NoError(t, err)
	assert.Equal(t, 3, db.stock(p.ID))

	_, err = svc.Update(ctx, sale.ID, SaleInput{ProductID: p.ID, Quantity: 9})
	require.NoError(t, err)
	assert.Equal(t, 1, db.stock(p.ID))

	_, err = svc.Update(ctx, sale.ID, SaleInput{ProductID: p.ID, Quantity: 20})
	require.ErrorIs(t, err, apperr.ErrInsufficientStock)
	assert.Equal(t, 1, db.stock(p.ID))

	got, err := svc.Get(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Quantity)
	assert.Equal(t, uint64(1), got.UserID)
	assert.Equal(t, "22.5", got.TotalAmount.String())

	svc.Wait()
	assert.ElementsMatch(t, []string{queue.SaleCreated, queue.SaleUpdated}, pub.types())
	for _, ev := range pub.events {
		require.NotNil(t, ev.RemainingStock)
		if ev.Type == queue.SaleUpdated {
			assert.Equal(t, 1, *ev.RemainingStock)
		}
	}
}

func TestSaleCreateRejections(t *testing.T) {
	db := newMemDB()
	svc := newSaleService(db, nil)
	ctx := context.Background()
	p := db.addProduct("Widget", 5, "1")

	_, err := svc.Create(ctx, SaleInput{ProductID: p.ID, UserID: 1, Quantity: 0})
	require.ErrorIs(t, err, apperr.ErrInvalidQuantity)

	_, err = svc.Create(ctx, SaleInput{ProductID: 999, UserID: 1, Quantity: 1})
	require.ErrorIs(t, err, apperr.ErrProductNotFound)

	_, err = svc.Create(ctx, SaleInput{ProductID: p.ID, UserID: 1, Quantity: 6})
	require.ErrorIs(t, err, apperr.ErrInsufficientStock)
	ae := apperr.From(err)
	assert.Equal(t, 400, ae.HTTPStatus())
	assert.Equal(t, 5, ae.Details["available"])

	assert.Equal(t, 5, db.stock(p.ID))
	assert.Zero(t, db.saleCount())

	_, err = svc.Create(ctx, SaleInput{ProductID: p.ID, UserID: 1, Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, 0, db.stock(p.ID))
}

func TestSaleDeleteRestoresOnce(t *testing.T) {
	db := newMemDB()
	svc := newSaleService(db, nil)
	ctx := context.Background()
	p := db.addProduct("Widget", 10, "1")

	sale, err := svc.Create(ctx, SaleInput{ProductID: p.ID, UserID: 1, Quantity: 4})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, sale.ID))
	assert.Equal(t, 10, db.stock(p.ID))

	require.ErrorIs(t, svc.Delete(ctx, sale.ID), apperr.ErrSaleNotFound)
	assert.Equal(t, 10, db.stock(p.ID))
}

func TestSaleDeleteWithDeletedProduct(t *testing.T) {
	db := newMemDB()
	svc := newSaleService(db, nil)
	ctx := context.Background()
	p := db.addProduct("Widget", 10, "1")

	sale, err := svc.Create(ctx, SaleInput{ProductID: p.ID, UserID: 1, Quantity: 4})
	require.NoError(t, err)
	require.NoError(t, (&memProducts{db: db}).Delete(ctx, p.ID))

	detail, err := svc.Get(ctx, sale.ID)
	require.NoError(t, err)
	assert.Nil(t, detail.ProductName)
	assert.True(t, detail.TotalAmount.IsZero())

	require.NoError(t, svc.Delete(ctx, sale.ID))
	assert.Zero(t, db.saleCount())
}

func TestSaleUpdateMovesStockBetweenProducts(t *testing.T) {
	db := newMemDB()
	svc := newSaleService(db, nil)
	ctx := context.Background()
	a := db.addProduct("A", 10, "1")
	b := db.addProduct("B", 5, "1")

	sale, err := svc.Create(ctx, SaleInput{ProductID: b.ID, UserID: 1, Quantity: 3})
	require.NoError(t, err)
	require.Equal(t, 2, db.stock(b.ID))

	db.lockOrder = nil
	_, err = svc.Update(ctx, sale.ID, SaleInput{ProductID: a.ID, Quantity: 6})
	require.NoError(t, err)
	assert.Equal(t, 5, db.stock(b.ID))
	assert.Equal(t, 4, db.stock(a.ID))
	assert.Equal(t, []uint64{a.ID, b.ID}, db.lockOrder, "rows are locked in ascending id order")

	// moving back more than B holds fails and changes nothing
	_, err = svc.Update(ctx, sale.ID, SaleInput{ProductID: b.ID, Quantity: 6})
	require.ErrorIs(t, err, apperr.ErrInsufficientStock)
	assert.Equal(t, 5, db.stock(b.ID))
	assert.Equal(t, 4, db.stock(a.ID))
}

func TestSaleUpdateMissingRows(t *testing.T) {
	db := newMemDB()
	svc := newSaleService(db, nil)
	ctx := context.Background()
	p := db.addProduct("Widget", 10, "1")

	_, err := svc.Update(ctx, 42, SaleInput{ProductID: p.ID, Quantity: 1})
	require.ErrorIs(t, err, apperr.ErrSaleNotFound)

	sale, err := svc.Create(ctx, SaleInput{ProductID: p.ID, UserID: 1, Quantity: 2})
	require.NoError(t, err)
	_, err = svc.Update(ctx, sale.ID, SaleInput{ProductID: 999, Quantity: 1})
	require.ErrorIs(t, err, apperr.ErrProductNotFound)
	assert.Equal(t, 8, db.stock(p.ID))

	_, err = svc.Update(ctx, sale.ID, SaleInput{ProductID: p.ID, Quantity: -1})
	require.ErrorIs(t, err, apperr.ErrInvalidQuantity)
}

func TestSaleUpdateFromDeletedProduct(t *testing.T) {
	db := newMemDB()
	svc := newSaleService(db, nil)
	ctx := context.Background()
	old := db.addProduct("Old", 10, "1")
	next := db.addProduct("Next", 10, "1")

	sale, err := svc.Create(ctx, SaleInput{ProductID: old.ID, UserID: 1, Quantity: 3})
	require.NoError(t, err)
	require.NoError(t, (&memProducts{db: db}).Delete(ctx, old.ID))

	_, err = svc.Update(ctx, sale.ID, SaleInput{ProductID: next.ID, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 8, db.stock(next.ID))
}

func TestConcurrentSalesNeverOversell(t *testing.T) {
	db := newMemDB()
	svc := newSaleService(db, nil)
	p := db.addProduct("Widget", 10, "1")

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, fail int
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(context.Background(), SaleInput{ProductID: p.ID, UserID: 1, Quantity: 1})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else {
				fail++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, ok)
	assert.Equal(t, 15, fail)
	assert.Equal(t, 0, db.stock(p.ID))
	assert.Equal(t, 10, db.saleCount())
}

func TestListByUserEmpty(t *testing.T) {
	svc := newSaleService(newMemDB(), nil)
	_, err := svc.ListByUser(context.Background(), 7)
	require.ErrorIs(t, err, apperr.ErrSaleNotFound)
}
