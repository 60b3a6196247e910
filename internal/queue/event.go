// Package queue defines message payloads exchanged over the message
// broker and the consumer that records them.
package queue

import (
	"time"

	"github.com/iliyamo/event-ticket-booking/internal/model"
)

// TicketQueue is the default queue name for purchase notifications.
const TicketQueue = "ticket.purchased"

// TicketPurchasedEvent is published after a ticket purchase commits.  It
// contains enough information for downstream consumers to log, notify,
// or trigger analytics without querying the primary database.
type TicketPurchasedEvent struct {
	TicketID            uint64   `json:"ticket_id"`
	Reference           string   `json:"reference"`
	AccountID           uint64   `json:"account_id"`
	EventID             uint64   `json:"event_id"`
	TicketTypeID        *uint64  `json:"ticket_type_id,omitempty"`
	PromoCodeID         *uint64  `json:"promo_code_id,omitempty"`
	Places              []string `json:"places"`
	OriginalAmountCents int64    `json:"original_amount_cents"`
	OrderAmountCents    int64    `json:"order_amount_cents"`
	DiscountAmountCents int64    `json:"discount_amount_cents"`
	PurchasedAt         string   `json:"purchased_at"`
}

// NewTicketPurchasedEvent builds the payload for a committed ticket.
func NewTicketPurchasedEvent(t *model.Ticket) TicketPurchasedEvent {
	places := make([]string, 0, len(t.Places))
	for _, p := range t.Places {
		places = append(places, model.Place{RowLabel: p.RowLabel, SeatNumber: p.SeatNumber}.Label())
	}
	return TicketPurchasedEvent{
		TicketID:            t.ID,
		Reference:           t.Reference,
		AccountID:           t.AccountID,
		EventID:             t.EventID,
		TicketTypeID:        t.TicketTypeID,
		PromoCodeID:         t.PromoCodeID,
		Places:              places,
		OriginalAmountCents: t.OriginalAmountCents,
		OrderAmountCents:    t.OrderAmountCents,
		DiscountAmountCents: t.DiscountAmountCents,
		PurchasedAt:         t.PurchasedAt.UTC().Format(time.RFC3339),
	}
}
