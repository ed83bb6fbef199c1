package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinetick/internal/middleware"
	"github.com/iliyamo/cinetick/internal/repository"
)

// PurchaseHandler serves confirmations and purchase history.
type PurchaseHandler struct {
	Purchases *repository.PurchaseRepo
}

// Detail returns a purchase with its showtime context.  Only the buyer or
// an admin may read it.
func (h *PurchaseHandler) Detail(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid purchase id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	d, err := h.Purchases.GetDetail(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	u, _ := middleware.CurrentSession(c).User()
	if d.UserID != u.ID && !u.IsAdmin() {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, d)
}

// Mine lists the caller's purchases, newest first.
func (h *PurchaseHandler) Mine(c echo.Context) error {
	u, _ := middleware.CurrentSession(c).User()
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Purchases.ListByUser(ctx, u.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
