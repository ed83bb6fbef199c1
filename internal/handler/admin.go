package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinetick/internal/model"
	"github.com/iliyamo/cinetick/internal/repository"
)

// AdminHandler groups endpoints reserved for the ADMIN role.
type AdminHandler struct {
	Purchases *repository.PurchaseRepo
	Showtimes *repository.ShowtimeRepo
}

type createShowtimeReq struct {
	MovieID uint64 `json:"movie_id" validate:"required"`
	Time    string `json:"time" validate:"required,datetime=15:04"`
	Theater string `json:"theater" validate:"required"`
	Format  string `json:"format" validate:"required,oneof='Regular 2D' 'Regular 3D' IMAX"`
}

// SalesReport aggregates confirmed purchases per day.
func (h *AdminHandler) SalesReport(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, err := h.Purchases.SalesReport(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": rows})
}

// CreateShowtime adds a daily screening to a movie.
func (h *AdminHandler) CreateShowtime(c echo.Context) error {
	var req createShowtimeReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	st, err := h.Showtimes.Create(ctx, model.Showtime{
		MovieID: req.MovieID,
		Time:    req.Time,
		Theater: req.Theater,
		Format:  req.Format,
	})
	if err != nil {
		return writeError(c, err)
	}
	logrus.WithFields(logrus.Fields{"showtime_id": st.ID, "movie_id": st.MovieID}).Info("showtime created")
	return c.JSON(http.StatusCreated, st)
}
