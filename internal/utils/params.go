package utils

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// ParamID parses a positive numeric path parameter.
func ParamID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// QueryInt reads an integer query parameter, falling back to def when it
// is absent or malformed.
func QueryInt(c echo.Context, name string, def int) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return def
	}
	return v
}
