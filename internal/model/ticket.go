package model

import "time"

// Ticket is the immutable record of a completed purchase.  It is
// created exclusively by the booking engine together with its
// TicketPlace rows and is never updated afterwards.
//
// Fields:
//  ID                  – primary key identifier.
//  Reference           – public UUID printed on the ticket.
//  AccountID           – buyer.
//  EventID             – event the ticket admits to.
//  TicketTypeID        – tier for category based events.
//  PromoCodeID         – applied promo code, if any.
//  PaymentMethodID     – payment method charged.
//  OriginalAmountCents – price before discount.
//  OrderAmountCents    – price after discount.
//  DiscountAmountCents – OriginalAmountCents − OrderAmountCents.
//  PurchasedAt         – purchase timestamp (UTC).
//  Places              – seats held by the ticket (seat based events).
type Ticket struct {
	ID                  uint64        `json:"id"`                       // tickets.id
	Reference           string        `json:"reference"`                // tickets.reference
	AccountID           uint64        `json:"account_id"`               // tickets.account_id
	EventID             uint64        `json:"event_id"`                 // tickets.event_id
	TicketTypeID        *uint64       `json:"ticket_type_id,omitempty"` // tickets.ticket_type_id (nullable)
	PromoCodeID         *uint64       `json:"promo_code_id,omitempty"`  // tickets.promo_code_id (nullable)
	PaymentMethodID     uint64        `json:"payment_method_id"`        // tickets.payment_method_id
	OriginalAmountCents int64         `json:"original_amount_cents"`    // tickets.original_amount_cents
	OrderAmountCents    int64         `json:"order_amount_cents"`       // tickets.order_amount_cents
	DiscountAmountCents int64         `json:"discount_amount_cents"`    // tickets.discount_amount_cents
	PurchasedAt         time.Time     `json:"purchased_at"`             // tickets.purchased_at
	Places              []TicketPlace `json:"places"`
}

// TicketPlace links a ticket to one booked place and records the price
// actually paid for that seat after the discount was distributed.
type TicketPlace struct {
	TicketID         uint64 `json:"ticket_id"`          // ticket_places.ticket_id
	PlaceID          uint64 `json:"place_id"`           // ticket_places.place_id
	RowLabel         string `json:"row_label"`          // places.row_label (joined)
	SeatNumber       uint32 `json:"seat_number"`        // places.seat_number (joined)
	ActualPriceCents int64  `json:"actual_price_cents"` // ticket_places.actual_price_cents
}
