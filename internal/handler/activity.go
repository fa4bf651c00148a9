package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/inventory-pos/internal/apperr"
	"github.com/iliyamo/inventory-pos/internal/middleware"
	"github.com/iliyamo/inventory-pos/internal/service"
)

type ActivityHandler struct {
	Activity *service.ActivityService
	Log      *zap.Logger
}

func NewActivityHandler(s *service.ActivityService, log *zap.Logger) *ActivityHandler {
	return &ActivityHandler{Activity: s, Log: log}
}

// Get returns the caller's dashboard: recent sales, newest products and
// sales statistics.
func (h *ActivityHandler) Get(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return fail(c, h.Log, apperr.ErrMissingToken)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	a, err := h.Activity.Get(ctx, u.ID)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, a)
}
