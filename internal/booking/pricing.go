package booking

import (
	"math"

	"github.com/iliyamo/event-ticket-booking/internal/model"
)

// Quote is the outcome of pricing one purchase.  All amounts are cents.
type Quote struct {
	OriginalCents int64
	OrderCents    int64
	DiscountCents int64
	// UnknownDiscountType is set when a promo code carried a discount
	// type the calculator does not understand and was ignored.
	UnknownDiscountType bool
}

// Ratio is the factor applied to each seat's nominal price.
func (q Quote) Ratio() float64 {
	if q.OriginalCents == 0 {
		return 1
	}
	return float64(q.OrderCents) / float64(q.OriginalCents)
}

// CalculatePrice applies code, if any, to originalCents.  The order
// amount never drops below zero nor rises above the original amount.
func CalculatePrice(originalCents int64, code *model.PromoCode) Quote {
	q := Quote{OriginalCents: originalCents, OrderCents: originalCents}
	if code != nil {
		switch {
		case code.IsPercentage():
			q.OrderCents = int64(math.Round(float64(originalCents) * (1 - code.DiscountValue/100)))
		case code.IsFixed():
			q.OrderCents = originalCents - int64(math.Round(code.DiscountValue*100))
		default:
			q.UnknownDiscountType = true
		}
	}
	if q.OrderCents < 0 {
		q.OrderCents = 0
	}
	if q.OrderCents > originalCents {
		q.OrderCents = originalCents
	}
	q.DiscountCents = q.OriginalCents - q.OrderCents
	return q
}

// DistributeDiscount returns the actual price of each place after
// scaling its nominal price by the quote ratio.
func DistributeDiscount(places []model.Place, q Quote) []model.TicketPlace {
	ratio := q.Ratio()
	out := make([]model.TicketPlace, 0, len(places))
	for _, p := range places {
		out = append(out, model.TicketPlace{
			PlaceID:          p.ID,
			RowLabel:         p.RowLabel,
			SeatNumber:       p.SeatNumber,
			ActualPriceCents: int64(math.Round(float64(p.PriceCents) * ratio)),
		})
	}
	return out
}
