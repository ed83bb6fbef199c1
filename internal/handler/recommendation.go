package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinetick/internal/middleware"
	"github.com/iliyamo/cinetick/internal/service"
)

// RecommendationHandler serves the signed-in user's suggestions.
type RecommendationHandler struct {
	Recommendations *service.RecommendationService
}

type feedbackReq struct {
	Positive *bool `json:"positive" validate:"required"`
}

func (h *RecommendationHandler) List(c echo.Context) error {
	u, _ := middleware.CurrentSession(c).User()
	items, err := h.Recommendations.List(c.Request().Context(), u.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Refresh rebuilds the list; it takes a while on purpose.
func (h *RecommendationHandler) Refresh(c echo.Context) error {
	u, _ := middleware.CurrentSession(c).User()
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Recommendations.Refresh(ctx, u.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Feedback records a thumbs up or down.  Thumbs down removes the movie.
func (h *RecommendationHandler) Feedback(c echo.Context) error {
	movieID, ok := parseID(c, "movie")
	if !ok {
		return badRequest(c, "invalid movie id")
	}
	var req feedbackReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}
	u, _ := middleware.CurrentSession(c).User()
	items, err := h.Recommendations.Feedback(c.Request().Context(), u.ID, movieID, *req.Positive)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
