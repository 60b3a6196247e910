package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/iliyamo/event-ticket-booking/internal/model"
)

// allocation is what the inventory resolver hands to the price
// calculator: the undiscounted amount and, in seat mode, the places
// being sold.
type allocation struct {
	originalCents int64
	places        []model.Place
	ticketTypeID  *uint64
}

// mutations stages every write to contested rows.  Nothing is written
// while checks are still running; apply runs once, right before the
// ticket insert, inside the same transaction.
type mutations struct {
	bookPlaces     []uint64
	ticketTypeSold *uint64
	promoUsage     *uint64
}

func (m *mutations) apply(ctx context.Context, tx Tx) error {
	if len(m.bookPlaces) > 0 {
		if err := tx.MarkPlacesBooked(ctx, m.bookPlaces); err != nil {
			return fmt.Errorf("mark places booked: %w", err)
		}
	}
	if m.ticketTypeSold != nil {
		if err := tx.IncrementTicketTypeSold(ctx, *m.ticketTypeSold); err != nil {
			return fmt.Errorf("increment ticket type sold: %w", err)
		}
	}
	if m.promoUsage != nil {
		if err := tx.IncrementPromoUsage(ctx, *m.promoUsage); err != nil {
			return fmt.Errorf("increment promo usage: %w", err)
		}
	}
	return nil
}

// allocate validates that the inventory requested by mode is available
// and stages the mutations that claim it.
func allocate(ctx context.Context, tx Tx, eventID uint64, mode Mode, m *mutations) (*allocation, error) {
	switch md := mode.(type) {
	case SeatBased:
		return allocateSeats(ctx, tx, md, m)
	case CategoryBased:
		return allocateCategory(ctx, tx, eventID, md, m)
	case CapacityBased:
		return allocateCapacity(ctx, tx, eventID, md)
	}
	return nil, ErrUnresolvableEventPricing
}

func allocateSeats(ctx context.Context, tx Tx, md SeatBased, m *mutations) (*allocation, error) {
	// Lock in ascending id order so that two overlapping requests
	// always contend on the same first row instead of deadlocking.
	ids := uniquePlaceIDs(md.PlaceIDs)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var places []model.Place
	if len(ids) > 0 {
		var err error
		places, err = tx.LockPlaces(ctx, md.HallID, ids)
		if err != nil {
			return nil, err
		}
	}
	// Every requested id must name its own place: zero, repeated and
	// foreign ids all make the counts differ.
	if len(places) != len(md.PlaceIDs) {
		return nil, withMessage(ErrPlaceNotFound, "%d of %d requested places not found in the event hall", len(md.PlaceIDs)-len(places), len(md.PlaceIDs))
	}
	var booked []string
	for _, p := range places {
		if p.IsBooked {
			booked = append(booked, p.Label())
		}
	}
	if len(booked) > 0 {
		e := newError(ErrPlaceAlreadyBooked, nil)
		e.Places = booked
		return nil, e
	}

	var total int64
	for _, p := range places {
		total += p.PriceCents
	}
	m.bookPlaces = ids
	return &allocation{originalCents: total, places: places}, nil
}

func allocateCategory(ctx context.Context, tx Tx, eventID uint64, md CategoryBased, m *mutations) (*allocation, error) {
	tt, err := tx.LockTicketType(ctx, eventID, md.TicketTypeID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrTicketTypeNotFound
	}
	if err != nil {
		return nil, err
	}
	if tt.SoldOut() {
		return nil, withMessage(ErrTicketTypeSoldOut, "tickets of type %q are sold out", tt.Name)
	}
	id := tt.ID
	m.ticketTypeSold = &id
	return &allocation{originalCents: tt.PriceCents, ticketTypeID: &id}, nil
}

func allocateCapacity(ctx context.Context, tx Tx, eventID uint64, md CapacityBased) (*allocation, error) {
	if md.MaxTickets != nil {
		// The event row lock serialises capacity purchases so the
		// count below cannot go stale before the insert.
		if _, err := tx.LockEvent(ctx, eventID); err != nil {
			return nil, err
		}
		sold, err := tx.CountTickets(ctx, eventID)
		if err != nil {
			return nil, err
		}
		if sold >= uint64(*md.MaxTickets) {
			return nil, ErrEventSoldOut
		}
	}
	return &allocation{originalCents: md.BasePriceCents}, nil
}
