package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinetick/internal/catalog"
	"github.com/iliyamo/cinetick/internal/repository"
)

// CatalogHandler serves the public browsing API: movies, showtimes and
// seat maps.
type CatalogHandler struct {
	Movies    *repository.MovieRepo
	Showtimes *repository.ShowtimeRepo
	Seats     *repository.SeatRepo
}

// multi reads a repeatable query parameter that may also carry
// comma-separated values.
func multi(c echo.Context, name string) []string {
	var out []string
	for _, v := range c.QueryParams()[name] {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func parseQuery(c echo.Context) (catalog.Query, error) {
	q := catalog.Query{
		Text:    c.QueryParam("q"),
		Genres:  multi(c, "genre"),
		Ratings: multi(c, "rating"),
	}
	if s := c.QueryParam("min_score"); s != "" {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return q, err
		}
		q.MinScore = f
	}
	for name, dst := range map[string]*int{"year_from": &q.YearFrom, "year_to": &q.YearTo} {
		if s := c.QueryParam(name); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				return q, err
			}
			*dst = n
		}
	}
	return q, nil
}

// ListMovies filters and sorts the catalog.
func (h *CatalogHandler) ListMovies(c echo.Context) error {
	q, err := parseQuery(c)
	if err != nil {
		return badRequest(c, "invalid numeric filter")
	}
	key, err := catalog.ParseSortKey(c.QueryParam("sort"))
	if err != nil {
		return badRequest(c, err.Error())
	}
	order, err := catalog.ParseOrder(c.QueryParam("order"))
	if err != nil {
		return badRequest(c, err.Error())
	}
	movies, err := h.Movies.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": catalog.Search(movies, q, key, order)})
}

// Facets returns the values the filter panel offers.
func (h *CatalogHandler) Facets(c echo.Context) error {
	movies, err := h.Movies.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, catalog.FacetsOf(movies))
}

func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// GetMovie returns one movie.
func (h *CatalogHandler) GetMovie(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid movie id")
	}
	m, err := h.Movies.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// MovieShowtimes lists the showtimes of a movie along with the bookable
// date window.
func (h *CatalogHandler) MovieShowtimes(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid movie id")
	}
	sts, err := h.Showtimes.ForMovie(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	first, last := h.Showtimes.Window()
	return c.JSON(http.StatusOK, echo.Map{
		"items":     sts,
		"date_from": first.Format("2006-01-02"),
		"date_to":   last.Format("2006-01-02"),
	})
}

// ListShowtimes searches showtimes by movie title and date.
func (h *CatalogHandler) ListShowtimes(c echo.Context) error {
	sts, err := h.Showtimes.List(c.Request().Context(), c.QueryParam("title"), c.QueryParam("date"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": sts})
}

// ShowtimeSeats returns the seat map of a showtime on the "date" query
// parameter, today when absent.
func (h *CatalogHandler) ShowtimeSeats(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid showtime id")
	}
	seats, err := h.Seats.ListSeats(c.Request().Context(), id, c.QueryParam("date"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": seats})
}
