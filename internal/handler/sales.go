package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/inventory-pos/internal/middleware"
	"github.com/iliyamo/inventory-pos/internal/service"
)

type SaleHandler struct {
	Sales *service.SaleService
	Log   *zap.Logger
}

func NewSaleHandler(s *service.SaleService, log *zap.Logger) *SaleHandler {
	return &SaleHandler{Sales: s, Log: log}
}

// quantity is range-checked by the sale workflow so that a zero or
// negative value reports invalid_quantity.
type saleReq struct {
	ProductID uint64 `json:"pid" validate:"required"`
	UserID    uint64 `json:"user_id"`
	Quantity  int    `json:"quantity"`
}

// Create records a sale. user_id defaults to the caller.
func (h *SaleHandler) Create(c echo.Context) error {
	var req saleReq
	if err := bind(c, &req); err != nil {
		return fail(c, h.Log, err)
	}
	if req.UserID == 0 {
		if u, ok := middleware.CurrentUser(c); ok {
			req.UserID = u.ID
		}
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	sale, err := h.Sales.Create(ctx, service.SaleInput{ProductID: req.ProductID, UserID: req.UserID, Quantity: req.Quantity})
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, sale)
}

// Update answers 202 with the rewritten sale.
func (h *SaleHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, h.Log, err)
	}
	var req saleReq
	if err := bind(c, &req); err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	sale, err := h.Sales.Update(ctx, id, service.SaleInput{ProductID: req.ProductID, UserID: req.UserID, Quantity: req.Quantity})
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusAccepted, sale)
}

func (h *SaleHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.Sales.Delete(ctx, id); err != nil {
		return fail(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *SaleHandler) List(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	sales, err := h.Sales.List(ctx)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, sales)
}

func (h *SaleHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	sale, err := h.Sales.Get(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, sale)
}

func (h *SaleHandler) ListByUser(c echo.Context) error {
	userID, err := pathID(c, "user_id")
	if err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	sales, err := h.Sales.ListByUser(ctx, userID)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, sales)
}
