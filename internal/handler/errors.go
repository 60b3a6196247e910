package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticket-booking/internal/booking"
)

// bookingStatus maps a booking error code onto an HTTP status.
func bookingStatus(code booking.Code) int {
	switch code {
	case booking.CodeEventNotFound, booking.CodeAccountNotFound,
		booking.CodePlaceNotFound, booking.CodeTicketTypeNotFound:
		return http.StatusNotFound
	case booking.CodePaymentMethodNotFound, booking.CodeUnresolvableEventPricing,
		booking.CodePromoCodeInvalid, booking.CodePromoCodeExhausted:
		return http.StatusBadRequest
	case booking.CodePlaceAlreadyBooked, booking.CodeTicketTypeSoldOut,
		booking.CodeEventSoldOut, booking.CodeConcurrentBookingConflict:
		return http.StatusConflict
	case booking.CodeBookingTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// bookingError writes err as {error, message, places}.  Errors that are
// not *booking.Error are reported as PERSISTENCE_FAULT.
func bookingError(c echo.Context, err error) error {
	be, ok := booking.AsError(err)
	if !ok {
		be = booking.ErrPersistenceFault
	}
	body := echo.Map{"error": string(be.Code), "message": be.Message}
	if len(be.Places) > 0 {
		body["places"] = be.Places
	}
	if be.Retryable() {
		c.Response().Header().Set("Retry-After", "1")
	}
	return c.JSON(bookingStatus(be.Code), body)
}

