package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// DefaultProductImage is served for products without an uploaded image.
const DefaultProductImage = "/uploads/default-product.jpg"

// Product represents a row in the `products` table.  StockQuantity is
// the stock ledger: sales only change it through the sale workflow,
// and it never drops below zero.
//
// Fields:
//  ID            – primary key identifier.
//  Name          – unique product name (case-insensitive).
//  Price         – purchase price.
//  SellingPrice  – price charged per unit sold.
//  StockQuantity – units currently in stock.
//  Description   – optional free text.
//  ImageURL      – public URL of the product image.
//  VendorID      – optional supplying vendor.
type Product struct {
    ID            uint64          `json:"id"`                    // products.id
    Name          string          `json:"product_name"`          // products.name
    Price         decimal.Decimal `json:"product_price"`         // products.price
    SellingPrice  decimal.Decimal `json:"selling_price"`         // products.selling_price
    StockQuantity int             `json:"stock_quantity"`        // products.stock_quantity
    Description   *string         `json:"description,omitempty"` // products.description (nullable)
    ImageURL      string          `json:"image_url"`             // products.image_url
    VendorID      *uint64         `json:"vendor_id,omitempty"`   // products.vendor_id (nullable)
    CreatedAt     time.Time       `json:"created_at"`            // products.created_at
    UpdatedAt     time.Time       `json:"updated_at"`            // products.updated_at
}

// HasCustomImage reports whether the product points at an uploaded image
// rather than the shared default.
func (p Product) HasCustomImage() bool {
    return p.ImageURL != "" && p.ImageURL != DefaultProductImage
}
