package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// Sale records a single stock-decrementing transaction.  ProductID and
// UserID are plain numeric references: deleting a product or user
// leaves historic sales in place.
type Sale struct {
    ID        uint64    `json:"id"`         // sales.id
    ProductID uint64    `json:"pid"`        // sales.product_id
    UserID    uint64    `json:"user_id"`    // sales.user_id
    Quantity  int       `json:"quantity"`   // sales.quantity
    CreatedAt time.Time `json:"created_at"` // sales.created_at
}

// SaleDetail is a sale joined with its user and product for listings.
// The joined fields are nil when the referenced row no longer exists.
type SaleDetail struct {
    Sale
    FirstName    *string          `json:"first_name"`
    ProductName  *string          `json:"product_name"`
    SellingPrice *decimal.Decimal `json:"selling_price"`
    TotalAmount  decimal.Decimal  `json:"total_amount"`
}

// ComputeTotal fills TotalAmount from the quantity and selling price.
func (d *SaleDetail) ComputeTotal() {
    if d.SellingPrice == nil {
        d.TotalAmount = decimal.Zero
        return
    }
    d.TotalAmount = d.SellingPrice.Mul(decimal.NewFromInt(int64(d.Quantity)))
}

// SaleStats aggregates a user's sales for the activity view.
type SaleStats struct {
    TotalSales    int             `json:"total_sales"`
    TotalProducts int             `json:"total_products"`
    Revenue       decimal.Decimal `json:"revenue"`
}
