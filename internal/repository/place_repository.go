package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/event-ticket-booking/internal/model"
)

const placeColumns = `id, hall_id, row_label, seat_number, price_cents, is_booked`

const qPlacesByHall = `SELECT ` + placeColumns + ` FROM places WHERE hall_id = ? ORDER BY row_label, seat_number`

// PlaceRepo accesses the places of a hall.  is_booked is a one-way
// latch: once a ticket claims a place it is never released here.
type PlaceRepo struct {
	db *sql.DB
}

// NewPlaceRepo constructs a PlaceRepo.
func NewPlaceRepo(db *sql.DB) *PlaceRepo { return &PlaceRepo{db: db} }

// ListByHall returns every place of the hall ordered by row and seat.
// It is the availability view shown to customers.
func (r *PlaceRepo) ListByHall(ctx context.Context, hallID uint64) ([]model.Place, error) {
	rows, err := r.db.QueryContext(ctx, qPlacesByHall, hallID)
	if err != nil {
		return nil, err
	}
	return scanPlaces(rows)
}

// LockByIDsTx row-locks the requested places that belong to hallID, in
// ascending id order, and returns them.  Ids belonging to other halls
// are silently left out so the caller can detect them by count.
func (r *PlaceRepo) LockByIDsTx(ctx context.Context, tx *sql.Tx, hallID uint64, ids []uint64) ([]model.Place, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := `SELECT ` + placeColumns + ` FROM places WHERE hall_id = ? AND id IN (` + placeholders(len(ids)) + `) ORDER BY id FOR UPDATE`
	args := append([]any{hallID}, idArgs(ids)...)
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return scanPlaces(rows)
}

// MarkBookedTx flips is_booked for the places.  The AND is_booked = 0
// guard makes a lost race visible as a short update count.
func (r *PlaceRepo) MarkBookedTx(ctx context.Context, tx *sql.Tx, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q := `UPDATE places SET is_booked = 1 WHERE is_booked = 0 AND id IN (` + placeholders(len(ids)) + `)`
	res, err := tx.ExecContext(ctx, q, idArgs(ids)...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanPlaces(rows *sql.Rows) ([]model.Place, error) {
	defer rows.Close()
	var out []model.Place
	for rows.Next() {
		var p model.Place
		if err := rows.Scan(&p.ID, &p.HallID, &p.RowLabel, &p.SeatNumber, &p.PriceCents, &p.IsBooked); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
