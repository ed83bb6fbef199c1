package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinetick/internal/session"
	"github.com/iliyamo/cinetick/internal/utils"
)

// SessionAuth restores the caller's session on every request.  A valid
// Bearer access token names the session; its user record is then loaded
// from the session store.  Requests without a token, with a bad token or
// whose session was ended continue anonymously; RequireSession decides
// whether that is acceptable.
func SessionAuth(secret string, provider *session.Provider) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s := session.Anonymous()
			if raw, ok := bearer(c); ok {
				if claims, err := utils.ParseAccessToken(secret, raw); err == nil {
					restored, err := provider.Restore(c.Request().Context(), claims.SessionID)
					if err != nil {
						logrus.WithError(err).Warn("session restore failed")
						return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "session storage unavailable"})
					}
					s = restored
				}
			}
			c.Set(ctxSession, s)
			if u, ok := s.User(); ok {
				c.Set(ctxUserID, strconv.FormatUint(u.ID, 10))
				c.Set(ctxRole, u.Role)
			}
			c.SetRequest(c.Request().WithContext(session.NewContext(c.Request().Context(), s)))
			return next(c)
		}
	}
}

func bearer(c echo.Context) (string, bool) {
	auth := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	return raw, raw != ""
}

// RequireSession rejects anonymous requests with 401 and a login redirect
// back to the requested path.
func RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !CurrentSession(c).Authenticated() {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error":    "authentication required",
					"redirect": "/login?redirect=" + c.Request().URL.Path,
				})
			}
			return next(c)
		}
	}
}
