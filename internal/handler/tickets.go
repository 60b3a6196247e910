package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/event-ticket-booking/internal/booking"
	"github.com/iliyamo/event-ticket-booking/internal/middleware"
	"github.com/iliyamo/event-ticket-booking/internal/model"
	"github.com/iliyamo/event-ticket-booking/internal/repository"
)

// Purchaser runs a purchase transaction.  *booking.Service satisfies it.
type Purchaser interface {
	Purchase(ctx context.Context, req booking.PurchaseRequest) (*model.Ticket, error)
}

// TicketReader reads committed tickets.  *repository.TicketRepo
// satisfies it.
type TicketReader interface {
	GetForAccount(ctx context.Context, id, accountID uint64) (*model.Ticket, error)
	ListByAccount(ctx context.Context, accountID uint64) ([]model.Ticket, error)
}

// TicketHandler serves ticket purchase and lookup for customers.  All
// methods assume JWTAuth and RequireRole already ran; they answer 401
// when no account id is present in the context.
type TicketHandler struct {
	Bookings Purchaser
	Tickets  TicketReader
	Log      logrus.FieldLogger
}

// NewTicketHandler constructs a TicketHandler.  All dependencies must
// be non-nil.
func NewTicketHandler(bookings Purchaser, tickets TicketReader, log logrus.FieldLogger) *TicketHandler {
	if bookings == nil || tickets == nil || log == nil {
		panic("nil dependency passed to NewTicketHandler")
	}
	return &TicketHandler{Bookings: bookings, Tickets: tickets, Log: log}
}

type purchaseBody struct {
	EventID         uint64   `json:"event_id"`
	TicketTypeID    *uint64  `json:"ticket_type_id"`
	PlaceIDs        []uint64 `json:"place_ids"`
	PromoCodeID     *uint64  `json:"promo_code_id"`
	PaymentMethodID uint64   `json:"payment_method_id"`
}

// Purchase handles POST /v1/tickets.  The buyer is always the
// authenticated account; the body cannot name another one.  It returns
// 201 with the ticket, or the booking error code with a status from
// bookingStatus.
func (h *TicketHandler) Purchase(c echo.Context) error {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body purchaseBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.EventID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_id is required"})
	}
	if body.PaymentMethodID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment_method_id is required"})
	}

	ticket, err := h.Bookings.Purchase(c.Request().Context(), booking.PurchaseRequest{
		EventID:         body.EventID,
		TicketTypeID:    body.TicketTypeID,
		PlaceIDs:        body.PlaceIDs,
		PromoCodeID:     body.PromoCodeID,
		AccountID:       accountID,
		PaymentMethodID: body.PaymentMethodID,
	})
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusCreated, ticket)
}

// GetTicket handles GET /v1/tickets/:id.  Tickets of other accounts
// are reported as 403.
func (h *TicketHandler) GetTicket(c echo.Context) error {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	t, err := h.Tickets.GetForAccount(c.Request().Context(), id, accountID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case err != nil:
		h.Log.WithError(err).WithField("ticket_id", id).Error("get ticket failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, t)
}

// ListTickets handles GET /v1/my-tickets.
func (h *TicketHandler) ListTickets(c echo.Context) error {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Tickets.ListByAccount(c.Request().Context(), accountID)
	if err != nil {
		h.Log.WithError(err).WithField("account_id", accountID).Error("list tickets failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
