package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/event-ticket-booking/internal/model"
)

const eventColumns = `id, title, hall_id, base_price_cents, max_tickets, starts_at, created_at, updated_at`

const (
	qEventByID      = `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
	qEventLock      = `SELECT ` + eventColumns + ` FROM events WHERE id = ? FOR UPDATE`
	qEventTicketCnt = `SELECT COUNT(*) FROM tickets WHERE event_id = ?`
)

// EventRepo reads events.  Events are maintained by the catalog
// service; the booking engine only reads them and, in capacity mode,
// row-locks them to serialise purchases.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo constructs an EventRepo.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// GetByID returns the event or ErrNotFound.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	return getEvent(ctx, r.db, qEventByID, id)
}

// GetByIDTx is GetByID inside tx, without a lock.
func (r *EventRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Event, error) {
	return getEvent(ctx, tx, qEventByID, id)
}

// LockByIDTx reads the event with SELECT ... FOR UPDATE.  The lock is
// held until tx ends.
func (r *EventRepo) LockByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Event, error) {
	return getEvent(ctx, tx, qEventLock, id)
}

// CountTicketsTx returns how many tickets were sold for the event.
func (r *EventRepo) CountTicketsTx(ctx context.Context, tx *sql.Tx, id uint64) (uint64, error) {
	var n uint64
	if err := tx.QueryRowContext(ctx, qEventTicketCnt, id).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func getEvent(ctx context.Context, q querier, query string, id uint64) (*model.Event, error) {
	ev, err := scanEvent(q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return ev, nil
}

func scanEvent(s scanner) (*model.Event, error) {
	var ev model.Event
	if err := s.Scan(&ev.ID, &ev.Title, &ev.HallID, &ev.BasePriceCents, &ev.MaxTickets, &ev.StartsAt, &ev.CreatedAt, &ev.UpdatedAt); err != nil {
		return nil, err
	}
	return &ev, nil
}
