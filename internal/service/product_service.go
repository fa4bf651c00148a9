package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iliyamo/inventory-pos/internal/apperr"
	"github.com/iliyamo/inventory-pos/internal/model"
	"github.com/iliyamo/inventory-pos/internal/repository"
	"github.com/iliyamo/inventory-pos/internal/storage"
)

// Upload is an image file received with a product form.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ProductInput carries product fields. On create Name, Price,
// SellingPrice and StockQuantity are required; on update nil fields are
// left unchanged.
type ProductInput struct {
	Name          *string
	Price         *decimal.Decimal
	SellingPrice  *decimal.Decimal
	StockQuantity *int
	Description   *string
	VendorID      *uint64
	Image         *Upload
}

type ProductService struct {
	products ProductStore
	vendors  VendorStore
	unique   *Uniqueness
	images   storage.Store
	log      *zap.Logger
}

func NewProductService(products ProductStore, vendors VendorStore, unique *Uniqueness, images storage.Store, log *zap.Logger) *ProductService {
	return &ProductService{products: products, vendors: vendors, unique: unique, images: images, log: log}
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (model.Product, error) {
	if in.Name == nil || in.Price == nil || in.SellingPrice == nil || in.StockQuantity == nil {
		return model.Product{}, apperr.ErrValidation.WithMessage("product_name, product_price, selling_price and stock_quantity are required")
	}
	p := model.Product{ImageURL: model.DefaultProductImage}
	if err := s.apply(ctx, &p, in); err != nil {
		return model.Product{}, err
	}
	if err := s.unique.ProductName(ctx, p.Name, 0); err != nil {
		return model.Product{}, err
	}
	if in.Image != nil {
		url, err := s.saveImage(ctx, in.Image)
		if err != nil {
			return model.Product{}, err
		}
		p.ImageURL = url
	}
	if err := s.products.Create(ctx, &p); err != nil {
		if p.HasCustomImage() {
			s.deleteImage(ctx, p.ImageURL)
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return model.Product{}, apperr.ErrProductNameExists
		}
		return model.Product{}, apperr.Store("create product", err)
	}
	return p, nil
}

func (s *ProductService) Get(ctx context.Context, id uint64) (model.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return model.Product{}, lookupErr("get product", err, apperr.ErrProductNotFound)
	}
	return p, nil
}

func (s *ProductService) List(ctx context.Context) ([]model.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, apperr.Store("list products", err)
	}
	return products, nil
}

// NameExists reports whether any product already uses name, ignoring case.
func (s *ProductService) NameExists(ctx context.Context, name string) (bool, error) {
	return s.unique.ProductNameTaken(ctx, name, 0)
}

// Update applies a partial update. A new image replaces the stored one,
// which is then deleted unless it is the default image. Stock is written
// only when the input sets it, so concurrent sales are never overwritten
// by the value read here.
func (s *ProductService) Update(ctx context.Context, id uint64, in ProductInput) (model.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return model.Product{}, err
	}
	oldImage := p.ImageURL
	if err := s.apply(ctx, &p, in); err != nil {
		return model.Product{}, err
	}
	if in.Name != nil {
		if err := s.unique.ProductName(ctx, p.Name, id); err != nil {
			return model.Product{}, err
		}
	}
	if in.Image != nil {
		url, err := s.saveImage(ctx, in.Image)
		if err != nil {
			return model.Product{}, err
		}
		p.ImageURL = url
	}
	if err := s.products.Update(ctx, &p); err != nil {
		if p.ImageURL != oldImage {
			s.deleteImage(ctx, p.ImageURL)
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return model.Product{}, apperr.ErrProductNameExists
		}
		return model.Product{}, apperr.Store("update product", err)
	}
	if in.StockQuantity != nil {
		if err := s.products.SetStock(ctx, id, *in.StockQuantity); err != nil {
			return model.Product{}, lookupErr("set product stock", err, apperr.ErrProductNotFound)
		}
	}
	if p.ImageURL != oldImage && oldImage != model.DefaultProductImage {
		s.deleteImage(ctx, oldImage)
	}
	return s.Get(ctx, id)
}

// RemoveImage resets the product image to the default.
func (s *ProductService) RemoveImage(ctx context.Context, id uint64) (model.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return model.Product{}, err
	}
	if !p.HasCustomImage() {
		return p, nil
	}
	old := p.ImageURL
	p.ImageURL = model.DefaultProductImage
	if err := s.products.Update(ctx, &p); err != nil {
		return model.Product{}, apperr.Store("remove product image", err)
	}
	s.deleteImage(ctx, old)
	return s.Get(ctx, id)
}

// Delete removes a product and its image. Sales that reference it are
// kept.
func (s *ProductService) Delete(ctx context.Context, id uint64) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return lookupErr("delete product", err, apperr.ErrProductNotFound)
	}
	if p.HasCustomImage() {
		s.deleteImage(ctx, p.ImageURL)
	}
	return nil
}

func (s *ProductService) apply(ctx context.Context, p *model.Product, in ProductInput) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return apperr.ErrValidation.WithDetails(map[string]any{"product_name": "product_name is required"})
		}
		p.Name = name
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return apperr.ErrValidation.WithDetails(map[string]any{"product_price": "product_price cannot be negative"})
		}
		p.Price = in.Price.Round(2)
	}
	if in.SellingPrice != nil {
		if in.SellingPrice.IsNegative() {
			return apperr.ErrValidation.WithDetails(map[string]any{"selling_price": "selling_price cannot be negative"})
		}
		p.SellingPrice = in.SellingPrice.Round(2)
	}
	if in.StockQuantity != nil {
		if *in.StockQuantity < 0 {
			return apperr.ErrValidation.WithDetails(map[string]any{"stock_quantity": "stock_quantity cannot be negative"})
		}
		p.StockQuantity = *in.StockQuantity
	}
	if in.Description != nil {
		p.Description = in.Description
	}
	if in.VendorID != nil {
		if _, err := s.vendors.GetByID(ctx, *in.VendorID); err != nil {
			return lookupErr("get vendor", err, apperr.ErrVendorNotFound)
		}
		p.VendorID = in.VendorID
	}
	if in.Image != nil && !strings.HasPrefix(in.Image.ContentType, "image/") {
		return apperr.ErrInvalidImage
	}
	return nil
}

func (s *ProductService) saveImage(ctx context.Context, up *Upload) (string, error) {
	url, err := s.images.Save(ctx, up.Filename, up.Body, up.Size, up.ContentType)
	if err != nil {
		return "", apperr.Store("save product image", err)
	}
	return url, nil
}

func (s *ProductService) deleteImage(ctx context.Context, url string) {
	if err := s.images.Delete(ctx, url); err != nil {
		s.log.Warn("delete product image failed", zap.String("url", url), zap.Error(err))
	}
}
