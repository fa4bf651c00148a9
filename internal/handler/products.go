package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iliyamo/inventory-pos/internal/apperr"
	"github.com/iliyamo/inventory-pos/internal/service"
)

const maxImageBytes = 10 << 20

type ProductHandler struct {
	Products *service.ProductService
	Log      *zap.Logger
}

func NewProductHandler(p *service.ProductService, log *zap.Logger) *ProductHandler {
	return &ProductHandler{Products: p, Log: log}
}

// productForm reads the multipart (or urlencoded) product fields. Absent
// fields stay nil; malformed numbers are reported per field.
func productForm(c echo.Context) (service.ProductInput, func(), error) {
	var (
		in      service.ProductInput
		invalid = map[string]any{}
		cleanup = func() {}
	)
	form := func(name string) (string, bool) {
		vals, ok := c.Request().Form[name]
		if !ok || len(vals) == 0 {
			return "", false
		}
		return strings.TrimSpace(vals[0]), true
	}
	money := func(name string) *decimal.Decimal {
		v, ok := form(name)
		if !ok {
			return nil
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			invalid[name] = "Invalid " + name
			return nil
		}
		return &d
	}

	// Parses the body into Request().Form, multipart values included.
	_ = c.FormValue("product_name")

	if v, ok := form("product_name"); ok {
		in.Name = &v
	}
	in.Price = money("product_price")
	in.SellingPrice = money("selling_price")
	if v, ok := form("stock_quantity"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			invalid["stock_quantity"] = "stock_quantity must be a whole number"
		} else {
			in.StockQuantity = &n
		}
	}
	if v, ok := form("description"); ok {
		in.Description = &v
	}
	if v, ok := form("vendor_id"); ok && v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil || id == 0 {
			invalid["vendor_id"] = "Invalid vendor_id"
		} else {
			in.VendorID = &id
		}
	}
	if len(invalid) > 0 {
		return in, cleanup, apperr.ErrValidation.WithDetails(invalid)
	}

	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return in, cleanup, nil
	}
	if err != nil {
		return in, cleanup, apperr.ErrValidation.WithMessage("invalid image upload")
	}
	up, closeFn, err := openUpload(fh)
	if err != nil {
		return in, cleanup, err
	}
	in.Image = up
	return in, closeFn, nil
}

func openUpload(fh *multipart.FileHeader) (*service.Upload, func(), error) {
	if fh.Size > maxImageBytes {
		return nil, nil, apperr.ErrInvalidImage.WithMessage("image is too large")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, apperr.ErrValidation.WithMessage("invalid image upload")
	}
	return &service.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	}, func() { _ = f.Close() }, nil
}

func (h *ProductHandler) Create(c echo.Context) error {
	in, cleanup, err := productForm(c)
	if err != nil {
		return fail(c, h.Log, err)
	}
	defer cleanup()
	ctx, cancel := withTimeout(c)
	defer cancel()

	p, err := h.Products.Create(ctx, in)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *ProductHandler) List(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	products, err := h.Products.List(ctx)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	p, err := h.Products.Get(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, p)
}

// CheckName answers {"exists": bool} for ?product_name=.
func (h *ProductHandler) CheckName(c echo.Context) error {
	name := strings.TrimSpace(c.QueryParam("product_name"))
	if name == "" {
		return fail(c, h.Log, apperr.ErrValidation.WithDetails(map[string]any{"product_name": "product_name is required"}))
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	exists, err := h.Products.NameExists(ctx, name)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"exists": exists})
}

func (h *ProductHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, h.Log, err)
	}
	in, cleanup, err := productForm(c)
	if err != nil {
		return fail(c, h.Log, err)
	}
	defer cleanup()
	ctx, cancel := withTimeout(c)
	defer cancel()

	p, err := h.Products.Update(ctx, id, in)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) RemoveImage(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	p, err := h.Products.RemoveImage(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, h.Log, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.Products.Delete(ctx, id); err != nil {
		return fail(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
