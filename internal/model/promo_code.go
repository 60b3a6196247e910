package model

import (
	"strings"
	"time"
)

// Discount types stored in promo_codes.discount_type.
const (
	DiscountPercentage = "PERCENTAGE"
	DiscountFixed      = "FIXED"
)

// PromoCode is a discount token scoped to one event.  DiscountValue is
// a percentage (0–100) for PERCENTAGE codes and an amount in currency
// units for FIXED codes.
//
// Fields:
//  ID            – primary key identifier.
//  EventID       – event the code applies to.
//  Title         – code customers type in.
//  DiscountType  – PERCENTAGE or FIXED.
//  DiscountValue – percent or currency amount, see above.
//  MaxUsages     – usage cap (nil for unlimited).
//  UsagesCount   – number of tickets that used the code.
//  ValidUntil    – expiry; the code is invalid at or after this instant.
//  IsActive      – manual on/off switch.
type PromoCode struct {
	ID            uint64    `json:"id"`                   // promo_codes.id
	EventID       uint64    `json:"event_id"`             // promo_codes.event_id
	Title         string    `json:"title"`                // promo_codes.title
	DiscountType  string    `json:"discount_type"`        // promo_codes.discount_type
	DiscountValue float64   `json:"discount_value"`       // promo_codes.discount_value
	MaxUsages     *uint32   `json:"max_usages,omitempty"` // promo_codes.max_usages (nullable)
	UsagesCount   uint32    `json:"usages_count"`         // promo_codes.usages_count
	ValidUntil    time.Time `json:"valid_until"`          // promo_codes.valid_until
	IsActive      bool      `json:"is_active"`            // promo_codes.is_active
}

// Exhausted reports whether the usage cap, if any, has been reached.
func (p PromoCode) Exhausted() bool {
	return p.MaxUsages != nil && p.UsagesCount >= *p.MaxUsages
}

// IsPercentage reports whether the code discounts by percent.
func (p PromoCode) IsPercentage() bool {
	return strings.EqualFold(p.DiscountType, DiscountPercentage)
}

// IsFixed reports whether the code discounts by a fixed amount.
func (p PromoCode) IsFixed() bool {
	return strings.EqualFold(p.DiscountType, DiscountFixed)
}
