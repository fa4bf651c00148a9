package service

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/inventory-pos/internal/apperr"
	"github.com/iliyamo/inventory-pos/internal/model"
	"github.com/iliyamo/inventory-pos/internal/repository"
)

// VendorInput carries vendor fields; on update nil fields are left
// unchanged. Name and Email are required on create.
type VendorInput struct {
	Name          *string
	ContactPerson *string
	Email         *string
	Phone         *string
	Address       *string
}

type VendorService struct {
	vendors  VendorStore
	products ProductStore
	unique   *Uniqueness
}

func NewVendorService(vendors VendorStore, products ProductStore, unique *Uniqueness) *VendorService {
	return &VendorService{vendors: vendors, products: products, unique: unique}
}

func (s *VendorService) Create(ctx context.Context, in VendorInput) (model.Vendor, error) {
	if in.Name == nil || in.Email == nil {
		return model.Vendor{}, apperr.ErrValidation.WithMessage("name and email are required")
	}
	var v model.Vendor
	applyVendor(&v, in)
	if err := s.unique.VendorEmail(ctx, v.Email, 0); err != nil {
		return model.Vendor{}, err
	}
	if err := s.vendors.Create(ctx, &v); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.Vendor{}, apperr.ErrVendorEmailExists
		}
		return model.Vendor{}, apperr.Store("create vendor", err)
	}
	return v, nil
}

func (s *VendorService) Get(ctx context.Context, id uint64) (model.Vendor, error) {
	v, err := s.vendors.GetByID(ctx, id)
	if err != nil {
		return model.Vendor{}, lookupErr("get vendor", err, apperr.ErrVendorNotFound)
	}
	return v, nil
}

func (s *VendorService) List(ctx context.Context) ([]model.Vendor, error) {
	vendors, err := s.vendors.List(ctx)
	if err != nil {
		return nil, apperr.Store("list vendors", err)
	}
	return vendors, nil
}

func (s *VendorService) Update(ctx context.Context, id uint64, in VendorInput) (model.Vendor, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return model.Vendor{}, err
	}
	applyVendor(&v, in)
	if in.Email != nil {
		if err := s.unique.VendorEmail(ctx, v.Email, id); err != nil {
			return model.Vendor{}, err
		}
	}
	if err := s.vendors.Update(ctx, &v); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.Vendor{}, apperr.ErrVendorEmailExists
		}
		return model.Vendor{}, apperr.Store("update vendor", err)
	}
	return s.Get(ctx, id)
}

func (s *VendorService) Delete(ctx context.Context, id uint64) error {
	if err := s.vendors.Delete(ctx, id); err != nil {
		return lookupErr("delete vendor", err, apperr.ErrVendorNotFound)
	}
	return nil
}

// Products lists the products supplied by vendor id.
func (s *VendorService) Products(ctx context.Context, id uint64) ([]model.Product, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	products, err := s.products.ListByVendor(ctx, id)
	if err != nil {
		return nil, apperr.Store("list vendor products", err)
	}
	return products, nil
}

func applyVendor(v *model.Vendor, in VendorInput) {
	if in.Name != nil {
		v.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		v.Email = normalizeEmail(*in.Email)
	}
	if in.ContactPerson != nil {
		v.ContactPerson = in.ContactPerson
	}
	if in.Phone != nil {
		v.Phone = in.Phone
	}
	if in.Address != nil {
		v.Address = in.Address
	}
}
