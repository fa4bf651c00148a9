// Package service implements the business rules on top of the repository
// layer: authentication, the sale workflow that keeps stock and sales
// consistent, and the surrounding CRUD and import flows. Services return
// *apperr.Error values that handlers render directly.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/inventory-pos/internal/apperr"
	"github.com/iliyamo/inventory-pos/internal/model"
	"github.com/iliyamo/inventory-pos/internal/queue"
	"github.com/iliyamo/inventory-pos/internal/repository"
)

// UserStore is implemented by repository.UserRepo.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id uint64) error
	EmailTaken(ctx context.Context, email string, exceptID uint64) (bool, error)
}

// ProductStore is implemented by repository.ProductRepo.
type ProductStore interface {
	Create(ctx context.Context, p *model.Product) error
	GetByID(ctx context.Context, id uint64) (model.Product, error)
	List(ctx context.Context) ([]model.Product, error)
	ListByVendor(ctx context.Context, vendorID uint64) ([]model.Product, error)
	Recent(ctx context.Context, limit int) ([]model.Product, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, p *model.Product) error
	SetStock(ctx context.Context, id uint64, qty int) error
	Delete(ctx context.Context, id uint64) error
	NameTaken(ctx context.Context, name string, exceptID uint64) (bool, error)
	UpsertByName(ctx context.Context, p *model.Product) (bool, error)
}

// SaleReader is the read side of repository.SaleRepo.
type SaleReader interface {
	List(ctx context.Context) ([]model.SaleDetail, error)
	GetByID(ctx context.Context, id uint64) (model.SaleDetail, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.SaleDetail, error)
	RecentByUser(ctx context.Context, userID uint64, since time.Time, limit int) ([]model.SaleDetail, error)
	StatsByUser(ctx context.Context, userID uint64) (int, decimal.Decimal, error)
}

// Ledger runs a function in one transaction; implemented by
// repository.SaleLedger.
type Ledger interface {
	InTx(ctx context.Context, fn func(tx repository.LedgerTx) error) error
}

// VendorStore is implemented by repository.VendorRepo.
type VendorStore interface {
	Create(ctx context.Context, v *model.Vendor) error
	GetByID(ctx context.Context, id uint64) (model.Vendor, error)
	List(ctx context.Context) ([]model.Vendor, error)
	Update(ctx context.Context, v *model.Vendor) error
	Delete(ctx context.Context, id uint64) error
	EmailTaken(ctx context.Context, email string, exceptID uint64) (bool, error)
}

// ContactStore is implemented by repository.ContactRepo.
type ContactStore interface {
	Create(ctx context.Context, c *model.Contact) error
	GetByID(ctx context.Context, id uint64) (model.Contact, error)
	List(ctx context.Context) ([]model.Contact, error)
	Reply(ctx context.Context, id uint64, response string) error
	SetStatus(ctx context.Context, id uint64, status string) error
	Delete(ctx context.Context, id uint64) error
}

// ImportStore is implemented by repository.ImportHistoryRepo.
type ImportStore interface {
	Create(ctx context.Context, h *model.ImportHistory) error
	Finish(ctx context.Context, h *model.ImportHistory) error
	GetByID(ctx context.Context, id uint64) (model.ImportHistory, error)
	List(ctx context.Context, skip, limit int) ([]model.ImportHistory, error)
}

// Denylist records revoked token ids; implemented by
// repository.TokenDenylist.
type Denylist interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// EventPublisher is implemented by queue.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.Event) error
}

// lookupErr maps a repository miss to notFound and anything else to a
// store failure.
func lookupErr(op string, err error, notFound *apperr.Error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound
	}
	return apperr.Store(op, err)
}
