package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinetick/internal/booking"
	"github.com/iliyamo/cinetick/internal/repository"
	"github.com/iliyamo/cinetick/internal/service"
)

// writeError maps domain errors onto HTTP responses.  Every body carries an
// "error" message; auth failures add a login "redirect", validation
// failures per-field "fields", and backend failures "retryable".
func writeError(c echo.Context, err error) error {
	var ve *booking.ValidationError
	if errors.As(err, &ve) {
		body := echo.Map{"error": ve.Message}
		if len(ve.Fields) > 0 {
			body["fields"] = ve.Fields
		}
		return c.JSON(http.StatusUnprocessableEntity, body)
	}
	if redirect, ok := booking.IsAuthRequired(err); ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required", "redirect": redirect})
	}

	switch {
	case errors.Is(err, booking.ErrBackend), errors.Is(err, repository.ErrUnavailable):
		return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error(), "retryable": true})
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return c.JSON(http.StatusGatewayTimeout, echo.Map{"error": "request timed out", "retryable": true})
	case errors.Is(err, booking.ErrSubmissionInFlight):
		return c.JSON(http.StatusConflict, echo.Map{"error": "payment is already being processed"})
	case errors.Is(err, booking.ErrSeatOccupied):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, booking.ErrNotFound),
		errors.Is(err, service.ErrFlowNotFound),
		errors.Is(err, service.ErrNotRecommended),
		errors.Is(err, repository.ErrMovieNotFound),
		errors.Is(err, repository.ErrShowtimeNotFound),
		errors.Is(err, repository.ErrPurchaseNotFound),
		errors.Is(err, repository.ErrPromotionNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrInvalidDate):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	case errors.Is(err, repository.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	case errors.Is(err, repository.ErrInvalidPurchase):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	}
	logrus.WithError(err).WithField("path", c.Path()).Error("unhandled error")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}
