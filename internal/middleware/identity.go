package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/inventory-pos/internal/auth"
	"github.com/iliyamo/inventory-pos/internal/model"
)

const (
	ctxUser   = "user"
	ctxClaims = "claims"
)

// SetIdentity stores the authenticated user and token claims on c.
func SetIdentity(c echo.Context, u model.User, claims *auth.Claims) {
	c.Set(ctxUser, u)
	c.Set(ctxClaims, claims)
}

// CurrentUser returns the user resolved by JWTAuth.
func CurrentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get(ctxUser).(model.User)
	return u, ok
}

// CurrentClaims returns the claims of the access token presented with the
// request.
func CurrentClaims(c echo.Context) (*auth.Claims, bool) {
	cl, ok := c.Get(ctxClaims).(*auth.Claims)
	return cl, ok && cl != nil
}

// userID is the rate limiter's view of the caller: the numeric id or
// "anon" before authentication.
func userID(c echo.Context) string {
	if u, ok := CurrentUser(c); ok {
		return strconv.FormatUint(u.ID, 10)
	}
	return "anon"
}
