package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/event-ticket-booking/internal/model"
)

const ticketTypeColumns = `id, event_id, name, price_cents, max_available, sold_count`

const (
	qTicketTypesByEvent = `SELECT ` + ticketTypeColumns + ` FROM ticket_types WHERE event_id = ? ORDER BY price_cents, id`
	qTicketTypeLock     = `SELECT ` + ticketTypeColumns + ` FROM ticket_types WHERE id = ? AND event_id = ? FOR UPDATE`
	qTicketTypeSold     = `UPDATE ticket_types SET sold_count = sold_count + 1 WHERE id = ?`
)

// TicketTypeRepo accesses ticket categories.  sold_count is the only
// column this service mutates; a CHECK constraint keeps it within
// max_available.
type TicketTypeRepo struct {
	db *sql.DB
}

// NewTicketTypeRepo constructs a TicketTypeRepo.
func NewTicketTypeRepo(db *sql.DB) *TicketTypeRepo { return &TicketTypeRepo{db: db} }

// ListByEvent returns the event's ticket types, cheapest first.
func (r *TicketTypeRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.TicketType, error) {
	return listTicketTypes(ctx, r.db, eventID)
}

// ListByEventTx is ListByEvent inside tx.
func (r *TicketTypeRepo) ListByEventTx(ctx context.Context, tx *sql.Tx, eventID uint64) ([]model.TicketType, error) {
	return listTicketTypes(ctx, tx, eventID)
}

// LockTx row-locks the ticket type if it belongs to eventID, otherwise
// it returns ErrNotFound.
func (r *TicketTypeRepo) LockTx(ctx context.Context, tx *sql.Tx, eventID, id uint64) (*model.TicketType, error) {
	var tt model.TicketType
	err := tx.QueryRowContext(ctx, qTicketTypeLock, id, eventID).
		Scan(&tt.ID, &tt.EventID, &tt.Name, &tt.PriceCents, &tt.MaxAvailable, &tt.SoldCount)
	if err != nil {
		return nil, notFound(err)
	}
	return &tt, nil
}

// IncrementSoldTx adds one to sold_count.
func (r *TicketTypeRepo) IncrementSoldTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx, qTicketTypeSold, id)
	return err
}

func listTicketTypes(ctx context.Context, q querier, eventID uint64) ([]model.TicketType, error) {
	rows, err := q.QueryContext(ctx, qTicketTypesByEvent, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.TicketType
	for rows.Next() {
		var tt model.TicketType
		if err := rows.Scan(&tt.ID, &tt.EventID, &tt.Name, &tt.PriceCents, &tt.MaxAvailable, &tt.SoldCount); err != nil {
			return nil, err
		}
		out = append(out, tt)
	}
	return out, rows.Err()
}
