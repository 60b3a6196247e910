package model

// TicketType is a priced tier of an event (e.g. "Dance floor") with an
// optional quota.  SoldCount never exceeds MaxAvailable when the quota
// is set.
type TicketType struct {
	ID           uint64  `json:"id"`                      // ticket_types.id
	EventID      uint64  `json:"event_id"`                // ticket_types.event_id
	Name         string  `json:"name"`                    // ticket_types.name
	PriceCents   int64   `json:"price_cents"`             // ticket_types.price_cents
	MaxAvailable *uint32 `json:"max_available,omitempty"` // ticket_types.max_available (nullable)
	SoldCount    uint32  `json:"sold_count"`              // ticket_types.sold_count
}

// SoldOut reports whether the quota, if any, has been reached.
func (t TicketType) SoldOut() bool {
	return t.MaxAvailable != nil && t.SoldCount >= *t.MaxAvailable
}
