package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/inventory-pos/internal/apperr"
	"github.com/iliyamo/inventory-pos/internal/middleware"
	"github.com/iliyamo/inventory-pos/internal/service"
	"github.com/iliyamo/inventory-pos/internal/utils"
)

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeCSV  = "text/csv; charset=utf-8"
)

type ImportHandler struct {
	Imports *service.ImportService
	Log     *zap.Logger
}

func NewImportHandler(s *service.ImportService, log *zap.Logger) *ImportHandler {
	return &ImportHandler{Imports: s, Log: log}
}

// Import loads products from the multipart "file" field.
func (h *ImportHandler) Import(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fail(c, h.Log, apperr.ErrValidation.WithDetails(map[string]any{"file": "file is required"}))
	}
	f, err := fh.Open()
	if err != nil {
		return fail(c, h.Log, apperr.ErrUnreadableFile)
	}
	defer f.Close()

	var userID uint64
	if u, ok := middleware.CurrentUser(c); ok {
		userID = u.ID
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), importTimeout)
	defer cancel()

	res, err := h.Imports.Import(ctx, fh.Filename, f, userID)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Validate reports problems in an import file without writing anything.
func (h *ImportHandler) Validate(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fail(c, h.Log, apperr.ErrValidation.WithDetails(map[string]any{"file": "file is required"}))
	}
	f, err := fh.Open()
	if err != nil {
		return fail(c, h.Log, apperr.ErrUnreadableFile)
	}
	defer f.Close()

	report, err := h.Imports.Validate(fh.Filename, f)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, report)
}

// Template downloads a sample file; :type is csv or excel.
func (h *ImportHandler) Template(c echo.Context) error {
	kind := strings.ToLower(c.Param("type"))
	data, filename, err := h.Imports.Template(kind)
	if err != nil {
		return fail(c, h.Log, err)
	}
	contentType := mimeCSV
	if kind == "excel" {
		contentType = mimeXLSX
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, contentType, data)
}

// History lists past imports; ?skip= and ?limit= page through them.
func (h *ImportHandler) History(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	items, err := h.Imports.History(ctx, utils.QueryInt(c, "skip", 0), utils.QueryInt(c, "limit", 10))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ImportHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	item, err := h.Imports.Get(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, item)
}
