package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/event-ticket-booking/internal/model"
)

const ticketColumns = `id, reference, account_id, event_id, ticket_type_id, promo_code_id, payment_method_id,
       original_amount_cents, order_amount_cents, discount_amount_cents, purchased_at`

const (
	qTicketInsert = `INSERT INTO tickets (reference, account_id, event_id, ticket_type_id, promo_code_id, payment_method_id,
                     original_amount_cents, order_amount_cents, discount_amount_cents, purchased_at)
                     VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	qTicketByID      = `SELECT ` + ticketColumns + ` FROM tickets WHERE id = ?`
	qTicketByAccount = `SELECT ` + ticketColumns + ` FROM tickets WHERE account_id = ? ORDER BY purchased_at DESC, id DESC`
)

// TicketRepo persists tickets and the places they hold.  Tickets are
// append-only: there is no update or delete.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo constructs a TicketRepo.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// CreateTx inserts the ticket and its ticket_places rows within tx.  It
// populates t.ID and the TicketID of each place.  A place that another
// ticket already holds fails the UNIQUE(place_id) constraint.
func (r *TicketRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.Ticket) error {
	res, err := tx.ExecContext(ctx, qTicketInsert,
		t.Reference, t.AccountID, t.EventID, t.TicketTypeID, t.PromoCodeID, t.PaymentMethodID,
		t.OriginalAmountCents, t.OrderAmountCents, t.DiscountAmountCents, t.PurchasedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	if len(t.Places) == 0 {
		return nil
	}
	query := `INSERT INTO ticket_places (ticket_id, place_id, actual_price_cents) VALUES `
	args := make([]any, 0, len(t.Places)*3)
	for i := range t.Places {
		if i > 0 {
			query += ", "
		}
		query += "(?, ?, ?)"
		t.Places[i].TicketID = t.ID
		args = append(args, t.ID, t.Places[i].PlaceID, t.Places[i].ActualPriceCents)
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

// GetForAccount returns a ticket with its places.  It returns
// ErrNotFound when the ticket does not exist and ErrForbidden when it
// belongs to a different account.
func (r *TicketRepo) GetForAccount(ctx context.Context, id, accountID uint64) (*model.Ticket, error) {
	t, err := scanTicket(r.db.QueryRowContext(ctx, qTicketByID, id))
	if err != nil {
		return nil, notFound(err)
	}
	if t.AccountID != accountID {
		return nil, ErrForbidden
	}
	places, err := r.placesFor(ctx, []uint64{t.ID})
	if err != nil {
		return nil, err
	}
	t.Places = places[t.ID]
	return t, nil
}

// ListByAccount returns the account's tickets, newest first, each with
// its places.
func (r *TicketRepo) ListByAccount(ctx context.Context, accountID uint64) ([]model.Ticket, error) {
	rows, err := r.db.QueryContext(ctx, qTicketByAccount, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Ticket{}
	var ids []uint64
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
		ids = append(ids, t.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}
	places, err := r.placesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Places = places[out[i].ID]
	}
	return out, nil
}

// placesFor loads the places of the given tickets keyed by ticket id.
// Tickets without places get an empty, non-nil slice.
func (r *TicketRepo) placesFor(ctx context.Context, ticketIDs []uint64) (map[uint64][]model.TicketPlace, error) {
	q := `SELECT tp.ticket_id, tp.place_id, p.row_label, p.seat_number, tp.actual_price_cents
          FROM ticket_places tp
          JOIN places p ON p.id = tp.place_id
          WHERE tp.ticket_id IN (` + placeholders(len(ticketIDs)) + `)
          ORDER BY tp.ticket_id, p.row_label, p.seat_number`
	rows, err := r.db.QueryContext(ctx, q, idArgs(ticketIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uint64][]model.TicketPlace, len(ticketIDs))
	for _, id := range ticketIDs {
		out[id] = []model.TicketPlace{}
	}
	for rows.Next() {
		var tp model.TicketPlace
		if err := rows.Scan(&tp.TicketID, &tp.PlaceID, &tp.RowLabel, &tp.SeatNumber, &tp.ActualPriceCents); err != nil {
			return nil, err
		}
		out[tp.TicketID] = append(out[tp.TicketID], tp)
	}
	return out, rows.Err()
}

func scanTicket(s scanner) (*model.Ticket, error) {
	var t model.Ticket
	err := s.Scan(&t.ID, &t.Reference, &t.AccountID, &t.EventID, &t.TicketTypeID, &t.PromoCodeID, &t.PaymentMethodID,
		&t.OriginalAmountCents, &t.OrderAmountCents, &t.DiscountAmountCents, &t.PurchasedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
