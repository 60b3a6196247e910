package booking

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/event-ticket-booking/internal/model"
)

// CheckPromoCode applies the promo validity rules to an already loaded
// code: it must be active, unexpired at now and scoped to eventID, and
// its usage cap must not be reached.
func CheckPromoCode(code *model.PromoCode, eventID uint64, now time.Time) error {
	if code == nil || !code.IsActive || code.EventID != eventID {
		return ErrPromoCodeInvalid
	}
	if !code.ValidUntil.After(now) {
		return withMessage(ErrPromoCodeInvalid, "promo code %q expired", code.Title)
	}
	if code.Exhausted() {
		return ErrPromoCodeExhausted
	}
	return nil
}

// validatePromo locks and checks the requested promo code, staging its
// usage increment.  A nil id means no discount.
func validatePromo(ctx context.Context, tx Tx, promoCodeID *uint64, eventID uint64, now time.Time, m *mutations) (*model.PromoCode, error) {
	if promoCodeID == nil {
		return nil, nil
	}
	code, err := tx.LockPromoCode(ctx, *promoCodeID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrPromoCodeInvalid
	}
	if err != nil {
		return nil, err
	}
	if err := CheckPromoCode(code, eventID, now); err != nil {
		return nil, err
	}
	id := code.ID
	m.promoUsage = &id
	return code, nil
}
