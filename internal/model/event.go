package model

import "time"

// Event represents a sellable offering.  Exactly one pricing mode
// applies to an event and is derived from its configuration: a hall
// makes it seat based, configured ticket types make it category based
// and a base price makes it capacity based.
//
// Fields:
//  ID             – primary key identifier.
//  Title          – display title.
//  HallID         – seating hall (nil for events without a hall).
//  BasePriceCents – flat ticket price in cents (nil when unused).
//  MaxTickets     – overall ticket cap for capacity based events.
//  StartsAt       – when the event begins (nil if not scheduled yet).
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Event struct {
	ID             uint64     `json:"id"`                         // events.id
	Title          string     `json:"title"`                      // events.title
	HallID         *uint64    `json:"hall_id,omitempty"`          // events.hall_id (nullable)
	BasePriceCents *int64     `json:"base_price_cents,omitempty"` // events.base_price_cents (nullable)
	MaxTickets     *uint32    `json:"max_tickets,omitempty"`      // events.max_tickets (nullable)
	StartsAt       *time.Time `json:"starts_at,omitempty"`        // events.starts_at (nullable)
	CreatedAt      time.Time  `json:"created_at"`                 // events.created_at
	UpdatedAt      time.Time  `json:"updated_at"`                 // events.updated_at
}
