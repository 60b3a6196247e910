package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/event-ticket-booking/internal/model"
)

const promoColumns = `id, event_id, title, discount_type, discount_value, max_usages, usages_count, valid_until, is_active`

const (
	qPromoByTitle = `SELECT ` + promoColumns + ` FROM promo_codes WHERE event_id = ? AND title = ?`
	qPromoLock    = `SELECT ` + promoColumns + ` FROM promo_codes WHERE id = ? FOR UPDATE`
	qPromoUsage   = `UPDATE promo_codes SET usages_count = usages_count + 1 WHERE id = ?`
)

// PromoCodeRepo accesses promo codes.
type PromoCodeRepo struct {
	db *sql.DB
}

// NewPromoCodeRepo constructs a PromoCodeRepo.
func NewPromoCodeRepo(db *sql.DB) *PromoCodeRepo { return &PromoCodeRepo{db: db} }

// GetByEventAndTitle looks up the code a customer typed in.  Titles are
// unique per event.
func (r *PromoCodeRepo) GetByEventAndTitle(ctx context.Context, eventID uint64, title string) (*model.PromoCode, error) {
	return scanPromo(r.db.QueryRowContext(ctx, qPromoByTitle, eventID, title))
}

// LockByIDTx row-locks the promo code for the rest of tx.
func (r *PromoCodeRepo) LockByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.PromoCode, error) {
	return scanPromo(tx.QueryRowContext(ctx, qPromoLock, id))
}

// IncrementUsageTx records one more use of the code.
func (r *PromoCodeRepo) IncrementUsageTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx, qPromoUsage, id)
	return err
}

func scanPromo(s scanner) (*model.PromoCode, error) {
	var p model.PromoCode
	err := s.Scan(&p.ID, &p.EventID, &p.Title, &p.DiscountType, &p.DiscountValue, &p.MaxUsages, &p.UsagesCount, &p.ValidUntil, &p.IsActive)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}
