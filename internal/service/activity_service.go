package service

import (
	"context"
	"time"

	"github.com/iliyamo/inventory-pos/internal/apperr"
	"github.com/iliyamo/inventory-pos/internal/model"
)

const (
	activityWindow   = 30 * 24 * time.Hour
	activitySales    = 10
	activityProducts = 10
)

// Activity is the dashboard view for one user.
type Activity struct {
	RecentSales    []model.SaleDetail `json:"recent_sales"`
	RecentProducts []model.Product    `json:"recent_products"`
	Statistics     model.SaleStats    `json:"statistics"`
}

type ActivityService struct {
	sales    SaleReader
	products ProductStore
	now      func() time.Time
}

func NewActivityService(sales SaleReader, products ProductStore) *ActivityService {
	return &ActivityService{sales: sales, products: products, now: time.Now}
}

// Get collects the caller's sales from the last 30 days, the newest
// products and the caller's totals.
func (s *ActivityService) Get(ctx context.Context, userID uint64) (Activity, error) {
	since := s.now().UTC().Add(-activityWindow)
	sales, err := s.sales.RecentByUser(ctx, userID, since, activitySales)
	if err != nil {
		return Activity{}, apperr.Store("recent sales", err)
	}
	products, err := s.products.Recent(ctx, activityProducts)
	if err != nil {
		return Activity{}, apperr.Store("recent products", err)
	}
	count, revenue, err := s.sales.StatsByUser(ctx, userID)
	if err != nil {
		return Activity{}, apperr.Store("sale stats", err)
	}
	total, err := s.products.Count(ctx)
	if err != nil {
		return Activity{}, apperr.Store("count products", err)
	}
	return Activity{
		RecentSales:    sales,
		RecentProducts: products,
		Statistics:     model.SaleStats{TotalSales: count, TotalProducts: total, Revenue: revenue},
	}, nil
}
