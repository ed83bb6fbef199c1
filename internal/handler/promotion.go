package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinetick/internal/repository"
)

type PromotionHandler struct {
	Promotions *repository.PromotionRepo
}

func (h *PromotionHandler) List(c echo.Context) error {
	items, err := h.Promotions.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Claim reveals the promotion code.  The route is session-gated.
func (h *PromotionHandler) Claim(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid promotion id")
	}
	p, err := h.Promotions.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"promotion": p, "code": p.Code})
}
