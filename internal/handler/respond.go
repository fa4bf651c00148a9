// Package handler adapts HTTP requests to the service layer. Handlers
// bind and validate input, bound store work with a request timeout and
// translate apperr errors into JSON responses.
package handler

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/inventory-pos/internal/apperr"
	"github.com/iliyamo/inventory-pos/internal/utils"
)

const (
	requestTimeout = 5 * time.Second
	// importTimeout covers a whole bulk import, one upsert per row.
	importTimeout = 2 * time.Minute
)

func withTimeout(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// fail writes err as {"error", "message", "details"}. Store failures are
// logged and reported with a generic message.
func fail(c echo.Context, log *zap.Logger, err error) error {
	e := apperr.From(err)
	if e.Kind == apperr.KindStore {
		log.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err))
	}
	body := echo.Map{"error": e.Reason, "message": e.Message}
	if len(e.Details) > 0 {
		body["details"] = e.Details
	}
	return c.JSON(e.HTTPStatus(), body)
}

// bind decodes the request into req and runs struct validation.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return apperr.ErrValidation.WithMessage("invalid request body")
	}
	if err := c.Validate(req); err != nil {
		if fields := utils.FormatValidationError(err); fields != nil {
			details := make(map[string]any, len(fields))
			for k, v := range fields {
				details[k] = v
			}
			return apperr.ErrValidation.WithDetails(details)
		}
		return apperr.ErrValidation.WithMessage(err.Error())
	}
	return nil
}

func pathID(c echo.Context, name string) (uint64, error) {
	id, ok := utils.ParamID(c, name)
	if !ok {
		return 0, apperr.ErrInvalidID
	}
	return id, nil
}
