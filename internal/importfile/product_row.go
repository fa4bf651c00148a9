package importfile

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ProductRow is a validated import row.
type ProductRow struct {
	Name          string
	Price         decimal.Decimal
	SellingPrice  decimal.Decimal
	StockQuantity int
	Description   *string
}

// ParseProductRow converts a sheet row into a ProductRow. Every problem
// found is reported; the row is only usable when the slice is empty.
// withDescription controls whether an empty description clears the
// stored one or leaves it untouched.
func ParseProductRow(row map[string]string, withDescription bool) (ProductRow, []string) {
	var (
		p    ProductRow
		errs []string
	)
	p.Name = row["product_name"]
	if p.Name == "" {
		errs = append(errs, "Product name is required")
	}

	p.Price, errs = parseMoney(row, "product_price", errs)
	p.SellingPrice, errs = parseMoney(row, "selling_price", errs)

	qty, qerrs := parseNumber(row, "stock_quantity")
	errs = append(errs, qerrs...)
	if len(qerrs) == 0 {
		if !qty.IsInteger() {
			errs = append(errs, "stock_quantity must be a whole number")
		} else {
			p.StockQuantity = int(qty.IntPart())
		}
	}

	if withDescription {
		if d, ok := row["description"]; ok && d != "" {
			p.Description = &d
		}
	}
	return p, errs
}

// ValidateProductRow runs the checks of ParseProductRow without building
// the row: name present and numeric, non-negative amounts.
func ValidateProductRow(row map[string]string) []string {
	_, errs := ParseProductRow(row, false)
	return errs
}

func parseMoney(row map[string]string, field string, errs []string) (decimal.Decimal, []string) {
	d, ferrs := parseNumber(row, field)
	if len(ferrs) > 0 {
		return decimal.Zero, append(errs, ferrs...)
	}
	return d.Round(2), errs
}

func parseNumber(row map[string]string, field string) (decimal.Decimal, []string) {
	d, err := decimal.NewFromString(row[field])
	if err != nil {
		return decimal.Zero, []string{fmt.Sprintf("Invalid %s", field)}
	}
	if d.IsNegative() {
		return decimal.Zero, []string{fmt.Sprintf("%s cannot be negative", field)}
	}
	return d, nil
}
