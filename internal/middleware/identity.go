package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinetick/internal/session"
)

// Context keys set by SessionAuth.
const (
	ctxSession = "session"
	ctxUserID  = "user_id"
	ctxRole    = "role"
)

// CurrentSession returns the session restored for the request.  Requests
// that did not pass through SessionAuth are anonymous.
func CurrentSession(c echo.Context) *session.Session {
	if s, ok := c.Get(ctxSession).(*session.Session); ok && s != nil {
		return s
	}
	return session.FromContext(c.Request().Context())
}

// userID identifies the caller for logs, cache and rate limit keys.  It
// returns "guest" for anonymous requests.
func userID(c echo.Context) string {
	if u, ok := CurrentSession(c).User(); ok {
		return strconv.FormatUint(u.ID, 10)
	}
	return "guest"
}
