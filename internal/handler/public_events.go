// Package handler exposes HTTP handlers for both authenticated and
// public endpoints.  The public handlers let unauthenticated users
// browse an event, its ticket types, seat availability and promo codes.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/event-ticket-booking/internal/booking"
	"github.com/iliyamo/event-ticket-booking/internal/model"
	"github.com/iliyamo/event-ticket-booking/internal/repository"
)

// EventReader is satisfied by *repository.EventRepo.
type EventReader interface {
	GetByID(ctx context.Context, id uint64) (*model.Event, error)
}

// HallReader is satisfied by *repository.HallRepo.
type HallReader interface {
	GetByID(ctx context.Context, id uint64) (*model.Hall, error)
}

// TicketTypeLister is satisfied by *repository.TicketTypeRepo.
type TicketTypeLister interface {
	ListByEvent(ctx context.Context, eventID uint64) ([]model.TicketType, error)
}

// PlaceLister is satisfied by *repository.PlaceRepo.
type PlaceLister interface {
	ListByHall(ctx context.Context, hallID uint64) ([]model.Place, error)
}

// PromoFinder is satisfied by *repository.PromoCodeRepo.
type PromoFinder interface {
	GetByEventAndTitle(ctx context.Context, eventID uint64, title string) (*model.PromoCode, error)
}

// PublicHandler aggregates the read side needed for unauthenticated
// browsing.
type PublicHandler struct {
	Events      EventReader
	Halls       HallReader
	TicketTypes TicketTypeLister
	Places      PlaceLister
	Promos      PromoFinder
	Log         logrus.FieldLogger
	// Now defaults to time.Now.
	Now func() time.Time
}

// PublicEvent is the event detail response.  Mode tells clients which
// fields a purchase request needs; it is empty when the event cannot be
// sold yet.
type PublicEvent struct {
	ID             uint64      `json:"id"`
	Title          string      `json:"title"`
	StartsAt       *time.Time  `json:"starts_at,omitempty"`
	Mode           string      `json:"mode"`
	BasePriceCents *int64      `json:"base_price_cents,omitempty"`
	MaxTickets     *uint32     `json:"max_tickets,omitempty"`
	Hall           *model.Hall `json:"hall,omitempty"`
}

// PublicPromo is the promo lookup response.  Reason carries the booking
// error code when the code cannot currently be used.
type PublicPromo struct {
	ID            uint64    `json:"id"`
	Title         string    `json:"title"`
	DiscountType  string    `json:"discount_type"`
	DiscountValue float64   `json:"discount_value"`
	ValidUntil    time.Time `json:"valid_until"`
	Valid         bool      `json:"valid"`
	Reason        string    `json:"reason,omitempty"`
}

// GetEvent handles GET /v1/events/:id.
func (h *PublicHandler) GetEvent(c echo.Context) error {
	ev, done := h.loadEvent(c)
	if done != nil || ev == nil {
		return done
	}
	ctx := c.Request().Context()
	out := PublicEvent{
		ID:             ev.ID,
		Title:          ev.Title,
		StartsAt:       ev.StartsAt,
		BasePriceCents: ev.BasePriceCents,
		MaxTickets:     ev.MaxTickets,
	}
	if ev.HallID != nil {
		out.Mode = "seat"
		hall, err := h.Halls.GetByID(ctx, *ev.HallID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return h.dbError(c, err, "get hall failed")
		}
		out.Hall = hall
		return c.JSON(http.StatusOK, out)
	}
	types, err := h.TicketTypes.ListByEvent(ctx, ev.ID)
	if err != nil {
		return h.dbError(c, err, "list ticket types failed")
	}
	switch {
	case len(types) > 0:
		out.Mode = "category"
	case ev.BasePriceCents != nil:
		out.Mode = "capacity"
	}
	return c.JSON(http.StatusOK, out)
}

// ListTicketTypes handles GET /v1/events/:id/ticket-types.
func (h *PublicHandler) ListTicketTypes(c echo.Context) error {
	ev, done := h.loadEvent(c)
	if done != nil || ev == nil {
		return done
	}
	types, err := h.TicketTypes.ListByEvent(c.Request().Context(), ev.ID)
	if err != nil {
		return h.dbError(c, err, "list ticket types failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"items": types})
}

// ListPlaces handles GET /v1/events/:id/places.  Events without a hall
// have no places and yield 404.  Use ?available=true to list only
// places that are still free.
func (h *PublicHandler) ListPlaces(c echo.Context) error {
	ev, done := h.loadEvent(c)
	if done != nil || ev == nil {
		return done
	}
	if ev.HallID == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event has no seating hall"})
	}
	places, err := h.Places.ListByHall(c.Request().Context(), *ev.HallID)
	if err != nil {
		return h.dbError(c, err, "list places failed")
	}
	if c.QueryParam("available") == "true" {
		free := places[:0]
		for _, p := range places {
			if !p.IsBooked {
				free = append(free, p)
			}
		}
		places = free
	}
	return c.JSON(http.StatusOK, echo.Map{"items": places})
}

// GetPromoCode handles GET /v1/events/:id/promo-codes/:title.  A code
// that exists but cannot be applied right now is still returned, with
// valid=false and the reason.
func (h *PublicHandler) GetPromoCode(c echo.Context) error {
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || eventID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	title := c.Param("title")
	if title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	code, err := h.Promos.GetByEventAndTitle(c.Request().Context(), eventID, title)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "promo code not found"})
	}
	if err != nil {
		return h.dbError(c, err, "get promo code failed")
	}
	out := PublicPromo{
		ID:            code.ID,
		Title:         code.Title,
		DiscountType:  code.DiscountType,
		DiscountValue: code.DiscountValue,
		ValidUntil:    code.ValidUntil,
		Valid:         true,
	}
	if err := booking.CheckPromoCode(code, eventID, h.now()); err != nil {
		out.Valid = false
		if be, ok := booking.AsError(err); ok {
			out.Reason = string(be.Code)
		}
	}
	return c.JSON(http.StatusOK, out)
}

// loadEvent parses :id and reads the event.  When it returns a nil
// event the response has already been written.
func (h *PublicHandler) loadEvent(c echo.Context) (*model.Event, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return nil, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ev, err := h.Events.GetByID(c.Request().Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	}
	if err != nil {
		return nil, h.dbError(c, err, "get event failed")
	}
	return ev, nil
}

func (h *PublicHandler) dbError(c echo.Context, err error, msg string) error {
	h.Log.WithError(err).WithField("path", c.Path()).Error(msg)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}

func (h *PublicHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}
