package model

import "fmt"

// Place describes a single seat in a hall.  A place is identified
// for humans by its row label and seat number.  IsBooked is a one-way
// latch: it only ever flips from false to true.
//
// Fields:
//  ID         – primary key identifier.
//  HallID     – hall to which this place belongs.
//  RowLabel   – row designation, e.g. "A" or "Parterre-left".
//  SeatNumber – number of the seat within the row.
//  PriceCents – nominal price in cents.
//  IsBooked   – whether a ticket already holds this place.
type Place struct {
	ID         uint64 `json:"id"`          // places.id
	HallID     uint64 `json:"hall_id"`     // places.hall_id
	RowLabel   string `json:"row_label"`   // places.row_label
	SeatNumber uint32 `json:"seat_number"` // places.seat_number
	PriceCents int64  `json:"price_cents"` // places.price_cents
	IsBooked   bool   `json:"is_booked"`   // places.is_booked
}

// Label returns the row-seat identifier shown to customers.
func (p Place) Label() string {
	return fmt.Sprintf("%s-%d", p.RowLabel, p.SeatNumber)
}
