package service

import (
	"context"
	"strings"

	"github.com/iliyamo/inventory-pos/internal/apperr"
)

type emailChecker interface {
	EmailTaken(ctx context.Context, email string, exceptID uint64) (bool, error)
}

type nameChecker interface {
	NameTaken(ctx context.Context, name string, exceptID uint64) (bool, error)
}

// Uniqueness holds the pre-insert checks for every unique attribute. The
// database indexes remain the final guard against races between check
// and write.
type Uniqueness struct {
	users    emailChecker
	products nameChecker
	vendors  emailChecker
}

func NewUniqueness(users emailChecker, products nameChecker, vendors emailChecker) *Uniqueness {
	return &Uniqueness{users: users, products: products, vendors: vendors}
}

// UserEmail fails with ErrEmailExists when another user owns email.
func (u *Uniqueness) UserEmail(ctx context.Context, email string, exceptID uint64) error {
	taken, err := u.users.EmailTaken(ctx, normalizeEmail(email), exceptID)
	if err != nil {
		return apperr.Store("check user email", err)
	}
	if taken {
		return apperr.ErrEmailExists
	}
	return nil
}

// ProductNameTaken reports a case-insensitive name clash.
func (u *Uniqueness) ProductNameTaken(ctx context.Context, name string, exceptID uint64) (bool, error) {
	taken, err := u.products.NameTaken(ctx, strings.TrimSpace(name), exceptID)
	if err != nil {
		return false, apperr.Store("check product name", err)
	}
	return taken, nil
}

func (u *Uniqueness) ProductName(ctx context.Context, name string, exceptID uint64) error {
	taken, err := u.ProductNameTaken(ctx, name, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return apperr.ErrProductNameExists
	}
	return nil
}

func (u *Uniqueness) VendorEmail(ctx context.Context, email string, exceptID uint64) error {
	taken, err := u.vendors.EmailTaken(ctx, normalizeEmail(email), exceptID)
	if err != nil {
		return apperr.Store("check vendor email", err)
	}
	if taken {
		return apperr.ErrVendorEmailExists
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
