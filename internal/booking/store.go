package booking

import (
	"context"
	"errors"

	"github.com/iliyamo/event-ticket-booking/internal/model"
)

// ErrNotFound is returned by Tx reads when the requested row does not
// exist.
var ErrNotFound = errors.New("record not found")

// Store opens booking transactions.
type Store interface {
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx is one atomic, isolated unit of work against the collaborator
// store.  Methods named Lock* must take a row lock that is held until
// Commit or Rollback, so that a check made on the returned value stays
// true until the mutation is applied.  Rollback after Commit must be a
// no-op.
type Tx interface {
	GetEvent(ctx context.Context, eventID uint64) (*model.Event, error)
	ListTicketTypes(ctx context.Context, eventID uint64) ([]model.TicketType, error)
	GetAccount(ctx context.Context, accountID uint64) (*model.Account, error)
	ListPaymentMethods(ctx context.Context, accountID uint64) ([]model.PaymentMethod, error)

	LockPromoCode(ctx context.Context, promoCodeID uint64) (*model.PromoCode, error)
	// LockPlaces returns the subset of placeIDs that belong to hallID.
	LockPlaces(ctx context.Context, hallID uint64, placeIDs []uint64) ([]model.Place, error)
	LockTicketType(ctx context.Context, eventID, ticketTypeID uint64) (*model.TicketType, error)
	LockEvent(ctx context.Context, eventID uint64) (*model.Event, error)
	CountTickets(ctx context.Context, eventID uint64) (uint64, error)

	MarkPlacesBooked(ctx context.Context, placeIDs []uint64) error
	IncrementTicketTypeSold(ctx context.Context, ticketTypeID uint64) error
	IncrementPromoUsage(ctx context.Context, promoCodeID uint64) error
	// CreateTicket inserts the ticket and its places, filling in IDs.
	CreateTicket(ctx context.Context, t *model.Ticket) error

	Commit() error
	Rollback() error
}
