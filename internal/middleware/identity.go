package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// AccountID returns the authenticated account stored by JWTAuth.
func AccountID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(ctxAccountID).(uint64)
	return id, ok && id != 0
}

// Role returns the role claim stored by JWTAuth, or "" for anonymous
// requests.
func Role(c echo.Context) string {
	r, _ := c.Get(ctxRole).(string)
	return r
}

// accountKey is the account id as a string for keys and log fields.
// It returns "anon" when no account is authenticated.
func accountKey(c echo.Context) string {
	if id, ok := AccountID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
