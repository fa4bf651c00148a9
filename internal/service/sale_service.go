package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/iliyamo/inventory-pos/internal/apperr"
	"github.com/iliyamo/inventory-pos/internal/model"
	"github.com/iliyamo/inventory-pos/internal/queue"
	"github.com/iliyamo/inventory-pos/internal/repository"
)

// SaleInput is the payload of a sale create or update.
type SaleInput struct {
	ProductID uint64
	UserID    uint64
	Quantity  int
}

// SaleService is the only writer of sales and, through them, of stock.
// Every mutation runs in one ledger transaction with the affected product
// rows locked, so concurrent sales of one product serialize.
type SaleService struct {
	ledger Ledger
	sales  SaleReader
	events *emitter
}

func NewSaleService(ledger Ledger, sales SaleReader, pub EventPublisher, log *zap.Logger) *SaleService {
	return &SaleService{ledger: ledger, sales: sales, events: &emitter{pub: pub, log: log}}
}

// Wait blocks until events published by earlier calls have been sent.
func (s *SaleService) Wait() { s.events.Wait() }

func insufficient(available, requested int) error {
	return apperr.ErrInsufficientStock.WithDetails(map[string]any{
		"available": available,
		"requested": requested,
	})
}

// txErr maps repository errors escaping a ledger transaction. apperr
// values raised inside the transaction pass through unchanged.
func txErr(op string, err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae
	}
	return apperr.Store(op, err)
}

func lockProduct(ctx context.Context, tx repository.LedgerTx, id uint64) (model.Product, error) {
	p, err := tx.LockProduct(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Product{}, apperr.ErrProductNotFound
	}
	return p, err
}

func lockSale(ctx context.Context, tx repository.LedgerTx, id uint64) (model.Sale, error) {
	sale, err := tx.LockSale(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Sale{}, apperr.ErrSaleNotFound
	}
	return sale, err
}

// Create records a sale and takes its quantity out of stock.
func (s *SaleService) Create(ctx context.Context, in SaleInput) (model.Sale, error) {
	if in.Quantity <= 0 {
		return model.Sale{}, apperr.ErrInvalidQuantity
	}
	sale := model.Sale{ProductID: in.ProductID, UserID: in.UserID, Quantity: in.Quantity}
	var product model.Product
	err := s.ledger.InTx(ctx, func(tx repository.LedgerTx) error {
		p, err := lockProduct(ctx, tx, in.ProductID)
		if err != nil {
			return err
		}
		if p.StockQuantity < in.Quantity {
			return insufficient(p.StockQuantity, in.Quantity)
		}
		p.StockQuantity -= in.Quantity
		if err := tx.SetStock(ctx, p.ID, p.StockQuantity); err != nil {
			return err
		}
		product = p
		return tx.InsertSale(ctx, &sale)
	})
	if err != nil {
		return model.Sale{}, txErr("create sale", err)
	}
	s.events.emit(saleEvent(queue.SaleCreated, sale, product))
	return sale, nil
}

// Update rewrites a sale and rebalances stock. When the product stays the
// same only the quantity difference is applied. When it changes, the old
// quantity goes back to the old product (if it still exists) and the new
// quantity is taken from the new one; both rows are locked in ascending
// id order.
func (s *SaleService) Update(ctx context.Context, id uint64, in SaleInput) (model.Sale, error) {
	if in.Quantity <= 0 {
		return model.Sale{}, apperr.ErrInvalidQuantity
	}
	var (
		sale    model.Sale
		product model.Product
	)
	err := s.ledger.InTx(ctx, func(tx repository.LedgerTx) error {
		var err error
		sale, err = lockSale(ctx, tx, id)
		if err != nil {
			return err
		}

		if in.ProductID == sale.ProductID {
			p, err := lockProduct(ctx, tx, in.ProductID)
			if err != nil {
				return err
			}
			delta := in.Quantity - sale.Quantity
			if p.StockQuantity-delta < 0 {
				return insufficient(p.StockQuantity+sale.Quantity, in.Quantity)
			}
			p.StockQuantity -= delta
			if err := tx.SetStock(ctx, p.ID, p.StockQuantity); err != nil {
				return err
			}
			product = p
		} else {
			p, err := s.moveStock(ctx, tx, sale, in)
			if err != nil {
				return err
			}
			product = p
		}

		sale.ProductID = in.ProductID
		sale.Quantity = in.Quantity
		if in.UserID != 0 {
			sale.UserID = in.UserID
		}
		return tx.UpdateSale(ctx, &sale)
	})
	if err != nil {
		return model.Sale{}, txErr("update sale", err)
	}
	s.events.emit(saleEvent(queue.SaleUpdated, sale, product))
	return sale, nil
}

// moveStock restores sale.Quantity to the old product and takes
// in.Quantity from the new one. It returns the new product.
func (s *SaleService) moveStock(ctx context.Context, tx repository.LedgerTx, sale model.Sale, in SaleInput) (model.Product, error) {
	oldID, newID := sale.ProductID, in.ProductID
	var (
		oldP, newP   model.Product
		oldFound     bool
		err          error
		first, other = oldID, newID
	)
	if newID < oldID {
		first, other = newID, oldID
	}
	for _, pid := range []uint64{first, other} {
		if pid == oldID {
			oldP, err = tx.LockProduct(ctx, pid)
			switch {
			case err == nil:
				oldFound = true
			case errors.Is(err, repository.ErrNotFound):
				// the old product was deleted; nothing to restore
			default:
				return model.Product{}, err
			}
			continue
		}
		newP, err = lockProduct(ctx, tx, pid)
		if err != nil {
			return model.Product{}, err
		}
	}

	if newP.StockQuantity < in.Quantity {
		return model.Product{}, insufficient(newP.StockQuantity, in.Quantity)
	}
	if oldFound {
		if err := tx.SetStock(ctx, oldP.ID, oldP.StockQuantity+sale.Quantity); err != nil {
			return model.Product{}, err
		}
	}
	newP.StockQuantity -= in.Quantity
	if err := tx.SetStock(ctx, newP.ID, newP.StockQuantity); err != nil {
		return model.Product{}, err
	}
	return newP, nil
}

// Delete removes a sale and returns its quantity to stock if the product
// still exists.
func (s *SaleService) Delete(ctx context.Context, id uint64) error {
	var (
		sale    model.Sale
		product model.Product
		found   bool
	)
	err := s.ledger.InTx(ctx, func(tx repository.LedgerTx) error {
		var err error
		sale, err = lockSale(ctx, tx, id)
		if err != nil {
			return err
		}
		p, err := tx.LockProduct(ctx, sale.ProductID)
		switch {
		case err == nil:
			p.StockQuantity += sale.Quantity
			if err := tx.SetStock(ctx, p.ID, p.StockQuantity); err != nil {
				return err
			}
			product, found = p, true
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}
		if err := tx.DeleteSale(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperr.ErrSaleNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return txErr("delete sale", err)
	}
	ev := saleEvent(queue.SaleDeleted, sale, product)
	if !found {
		ev.RemainingStock = nil
	}
	s.events.emit(ev)
	return nil
}

func (s *SaleService) List(ctx context.Context) ([]model.SaleDetail, error) {
	sales, err := s.sales.List(ctx)
	if err != nil {
		return nil, apperr.Store("list sales", err)
	}
	return sales, nil
}

func (s *SaleService) Get(ctx context.Context, id uint64) (model.SaleDetail, error) {
	sale, err := s.sales.GetByID(ctx, id)
	if err != nil {
		return model.SaleDetail{}, lookupErr("get sale", err, apperr.ErrSaleNotFound)
	}
	return sale, nil
}

// ListByUser returns a user's sales, failing with NotFound when there are
// none.
func (s *SaleService) ListByUser(ctx context.Context, userID uint64) ([]model.SaleDetail, error) {
	sales, err := s.sales.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Store("list user sales", err)
	}
	if len(sales) == 0 {
		return nil, apperr.ErrSaleNotFound.WithMessage("No sales found for this user")
	}
	return sales, nil
}

func saleEvent(typ string, sale model.Sale, p model.Product) queue.Event {
	remaining := p.StockQuantity
	return queue.Event{
		Type:           typ,
		SaleID:         sale.ID,
		ProductID:      sale.ProductID,
		ProductName:    p.Name,
		UserID:         sale.UserID,
		Quantity:       sale.Quantity,
		RemainingStock: &remaining,
	}
}
