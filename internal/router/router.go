// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/event-ticket-booking/internal/handler"
	"github.com/iliyamo/event-ticket-booking/internal/middleware"
	"github.com/iliyamo/event-ticket-booking/internal/utils"
)

// RegisterRoutes registers routes that do not require authentication:
// the health check and the Prometheus scrape endpoint for g.
func RegisterRoutes(e *echo.Echo, g prometheus.Gatherer) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{})))
}

// RegisterPublic registers unauthenticated event browse endpoints.  The
// cache middleware, if non-nil, is applied to the event detail only;
// availability and promo lookups must always reflect the database.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache echo.MiddlewareFunc) {
	var detail []echo.MiddlewareFunc
	if cache != nil {
		detail = append(detail, cache)
	}
	e.GET("/v1/events/:id", p.GetEvent, detail...)
	e.GET("/v1/events/:id/ticket-types", p.ListTicketTypes)
	e.GET("/v1/events/:id/places", p.ListPlaces)
	e.GET("/v1/events/:id/promo-codes/:title", p.GetPromoCode)
}

// RegisterTickets registers customer ticket endpoints under /v1.  All
// routes require a valid JWT and the CUSTOMER role.  The limiter, if
// non-nil, guards the purchase endpoint.
func RegisterTickets(e *echo.Echo, h *handler.TicketHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(utils.RoleCustomer),
	)
	var purchase []echo.MiddlewareFunc
	if limiter != nil {
		purchase = append(purchase, limiter)
	}
	g.POST("/tickets", h.Purchase, purchase...)
	g.GET("/tickets/:id", h.GetTicket)
	g.GET("/my-tickets", h.ListTickets)
}
