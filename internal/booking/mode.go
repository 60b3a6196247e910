package booking

import "github.com/iliyamo/event-ticket-booking/internal/model"

// Mode is the allocation strategy chosen for one purchase.  It is one
// of SeatBased, CategoryBased or CapacityBased.
type Mode interface {
	Kind() string
	isMode()
}

// SeatBased allocates specific places of the event's hall.
type SeatBased struct {
	HallID   uint64
	PlaceIDs []uint64
}

// CategoryBased allocates one slot of a ticket type quota.
type CategoryBased struct {
	TicketTypeID uint64
}

// CapacityBased sells a ticket at the event base price, subject to an
// optional overall cap.
type CapacityBased struct {
	BasePriceCents int64
	MaxTickets     *uint32
}

func (SeatBased) Kind() string     { return "seat" }
func (CategoryBased) Kind() string { return "category" }
func (CapacityBased) Kind() string { return "capacity" }

func (SeatBased) isMode()     {}
func (CategoryBased) isMode() {}
func (CapacityBased) isMode() {}

// ResolveMode picks the first applicable mode in priority order
// seat > category > capacity.  A mode applies only when both the event
// is configured for it and the request has the matching shape.  The
// place ids are kept as requested; allocation rejects unknown, zero or
// repeated ids.
func ResolveMode(ev *model.Event, ticketTypeCount int, req PurchaseRequest) (Mode, error) {
	switch {
	case ev.HallID != nil && len(req.PlaceIDs) > 0:
		placeIDs := append([]uint64(nil), req.PlaceIDs...)
		return SeatBased{HallID: *ev.HallID, PlaceIDs: placeIDs}, nil
	case ticketTypeCount > 0 && req.TicketTypeID != nil:
		return CategoryBased{TicketTypeID: *req.TicketTypeID}, nil
	case ev.BasePriceCents != nil:
		return CapacityBased{BasePriceCents: *ev.BasePriceCents, MaxTickets: ev.MaxTickets}, nil
	}
	return nil, ErrUnresolvableEventPricing
}

// uniquePlaceIDs drops zero and repeated ids while keeping order.
func uniquePlaceIDs(ids []uint64) []uint64 {
	out := make([]uint64, 0, len(ids))
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
