// Package middleware contains the echo middleware shared by all routes:
// bearer authentication, the Redis token bucket and request logging.
package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/inventory-pos/internal/apperr"
	"github.com/iliyamo/inventory-pos/internal/auth"
	"github.com/iliyamo/inventory-pos/internal/model"
)

// Verifier resolves a raw token of the given kind to its user.
type Verifier interface {
	Verify(ctx context.Context, raw, kind string) (model.User, *auth.Claims, error)
}

// JWTAuth requires a valid Bearer access token. The resolved user and
// claims are stored on the context for CurrentUser and CurrentClaims.
// Store failures during verification are logged to log.
func JWTAuth(v Verifier, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(header, "Bearer ")
			raw = strings.TrimSpace(raw)
			if !ok || raw == "" {
				return writeError(c, log, apperr.ErrMissingToken)
			}

			user, claims, err := v.Verify(c.Request().Context(), raw, auth.KindAccess)
			if err != nil {
				return writeError(c, log, err)
			}
			SetIdentity(c, user, claims)
			return next(c)
		}
	}
}

func writeError(c echo.Context, log *zap.Logger, err error) error {
	var e *apperr.Error
	if !errors.As(err, &e) {
		e = apperr.From(err)
	}
	if e.Kind == apperr.KindStore {
		log.Error("token verification failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err))
	}
	return c.JSON(e.HTTPStatus(), echo.Map{"error": e.Reason, "message": e.Message})
}
