package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinetick/internal/booking"
	"github.com/iliyamo/cinetick/internal/middleware"
	"github.com/iliyamo/cinetick/internal/service"
)

// BookingHandler exposes the booking flow step by step.  Every response
// that changes the flow returns its fresh snapshot; payment details in it
// are only shown to the flow's owner.
type BookingHandler struct {
	Bookings *service.BookingService
}

type startBookingReq struct {
	MovieID uint64 `json:"movie_id" validate:"required"`
}

type dateReq struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

type showtimeReq struct {
	ShowtimeID uint64 `json:"showtime_id" validate:"required"`
}

type payReq struct {
	Method string `json:"method"`
	booking.PaymentForm
}

func (h *BookingHandler) flow(c echo.Context) (*booking.Flow, error) {
	return h.Bookings.Get(c.Param("id"))
}

func snapshot(c echo.Context, status int, f *booking.Flow) error {
	return c.JSON(status, f.SnapshotFor(middleware.CurrentSession(c)))
}

// Create opens a flow for a movie.  Browsing the dates and showtimes does
// not need a session.
func (h *BookingHandler) Create(c echo.Context) error {
	var req startBookingReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	f, err := h.Bookings.Start(ctx, req.MovieID)
	if err != nil {
		return writeError(c, err)
	}
	return snapshot(c, http.StatusCreated, f)
}

// Get returns the flow snapshot.
func (h *BookingHandler) Get(c echo.Context) error {
	f, err := h.flow(c)
	if err != nil {
		return writeError(c, err)
	}
	return snapshot(c, http.StatusOK, f)
}

// SelectDate sets the screening day.
func (h *BookingHandler) SelectDate(c echo.Context) error {
	var req dateReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}
	day, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
	if err != nil {
		return badRequest(c, "date must be YYYY-MM-DD")
	}
	f, err := h.flow(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := f.SelectDate(middleware.CurrentSession(c), day); err != nil {
		return writeError(c, err)
	}
	return snapshot(c, http.StatusOK, f)
}

// SelectShowtime sets the showtime; a different one clears chosen seats.
func (h *BookingHandler) SelectShowtime(c echo.Context) error {
	var req showtimeReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}
	f, err := h.flow(c)
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := f.SelectShowtime(ctx, middleware.CurrentSession(c), req.ShowtimeID); err != nil {
		return writeError(c, err)
	}
	return snapshot(c, http.StatusOK, f)
}

// ContinueToSeats loads the seat map.  Anonymous callers get a 401 with
// the login redirect back to the movie page.
func (h *BookingHandler) ContinueToSeats(c echo.Context) error {
	f, err := h.flow(c)
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := f.ContinueToSeats(ctx, middleware.CurrentSession(c)); err != nil {
		return writeError(c, err)
	}
	return snapshot(c, http.StatusOK, f)
}

// Back returns to the previous step.
func (h *BookingHandler) Back(c echo.Context) error {
	f, err := h.flow(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := f.Back(middleware.CurrentSession(c)); err != nil {
		return writeError(c, err)
	}
	return snapshot(c, http.StatusOK, f)
}

// ToggleSeat adds or removes one seat.  A full selection answers 200 with
// result "rejected" and leaves the selection as it was.
func (h *BookingHandler) ToggleSeat(c echo.Context) error {
	seatID, err := strconv.Atoi(c.Param("seat"))
	if err != nil || seatID <= 0 {
		return badRequest(c, "invalid seat id")
	}
	f, err := h.flow(c)
	if err != nil {
		return writeError(c, err)
	}
	res, err := f.Toggle(middleware.CurrentSession(c), seatID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"result": res, "booking": f.SnapshotFor(middleware.CurrentSession(c))})
}

// Checkout moves from seats to the payment step.
func (h *BookingHandler) Checkout(c echo.Context) error {
	f, err := h.flow(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := f.ProceedToCheckout(middleware.CurrentSession(c)); err != nil {
		return writeError(c, err)
	}
	return snapshot(c, http.StatusOK, f)
}

// Pay submits the checkout.  Card details are checked by the flow itself
// so that a rejected form is still kept for the next attempt.  The purchase call is given its own deadline
// as the mock backend takes a couple of seconds.
func (h *BookingHandler) Pay(c echo.Context) error {
	var req payReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	conf, err := h.Bookings.Pay(ctx, c.Param("id"), middleware.CurrentSession(c), req.Method, req.PaymentForm)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, conf)
}

// Retry resubmits the last failed payment.
func (h *BookingHandler) Retry(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	conf, err := h.Bookings.Retry(ctx, c.Param("id"), middleware.CurrentSession(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, conf)
}
