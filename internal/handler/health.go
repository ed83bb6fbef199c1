package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// Health reports liveness along with the state of the optional Redis
// connection.  The service runs without Redis, so a failed ping degrades
// the report but never the status code.
func Health(rdb *redis.Client) echo.HandlerFunc {
	return func(c echo.Context) error {
		status := "disabled"
		if rdb != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), time.Second)
			defer cancel()
			status = "ok"
			if err := rdb.Ping(ctx).Err(); err != nil {
				status = "unreachable"
			}
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "redis": status})
	}
}
