package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Logger logs every request once it has been handled.
func Logger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				// let echo write the response so the status is final
				c.Error(err)
			}

			status := c.Response().Status
			entry := logrus.WithFields(logrus.Fields{
				"method":     c.Request().Method,
				"path":       c.Request().URL.Path,
				"route":      c.Path(),
				"status":     status,
				"duration":   time.Since(start),
				"client_ip":  c.RealIP(),
				"user_agent": c.Request().UserAgent(),
				"user":       userID(c),
			})
			if status >= 500 {
				entry.Error("Request failed")
			} else if status >= 400 {
				entry.Warn("Request rejected")
			} else {
				entry.Info("Request processed")
			}
			return nil
		}
	}
}
