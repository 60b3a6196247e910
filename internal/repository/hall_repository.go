package repository // repository holds data access logic for domain entities

import (
	"context"      // context is used to manage deadlines and cancellation
	"database/sql" // sql provides DB primitives

	"github.com/iliyamo/event-ticket-booking/internal/model"
)

// HallRepo retrieves halls.  Halls and their places are created by the
// venue administration tools; this service never writes them.
type HallRepo struct {
	db *sql.DB // db is the underlying database connection
}

// NewHallRepo constructs a HallRepo with the given DB handle.
func NewHallRepo(db *sql.DB) *HallRepo {
	return &HallRepo{db: db}
}

// GetByID retrieves a hall by its ID.  It returns ErrNotFound when no
// row is found.
func (r *HallRepo) GetByID(ctx context.Context, id uint64) (*model.Hall, error) {
	const q = `SELECT id, name FROM halls WHERE id = ?`
	var h model.Hall
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&h.ID, &h.Name); err != nil {
		return nil, notFound(err)
	}
	return &h, nil
}
