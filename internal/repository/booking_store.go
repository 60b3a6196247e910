package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/event-ticket-booking/internal/booking"
	"github.com/iliyamo/event-ticket-booking/internal/model"
)

// MySQL server error numbers the booking store reacts to.
const (
	mysqlDuplicateEntry   = 1062
	mysqlLockWaitTimeout  = 1205
	mysqlDeadlock         = 1213
	mysqlQueryInterrupted = 3024 // max_execution_time exceeded
	mysqlCheckViolated    = 3819
)

// BookingStore implements booking.Store on top of the MySQL
// repositories.  Each purchase runs in one READ COMMITTED transaction;
// the Lock* reads use SELECT ... FOR UPDATE so isolation comes from row
// locks rather than the isolation level.
type BookingStore struct {
	db          *sql.DB
	events      *EventRepo
	places      *PlaceRepo
	ticketTypes *TicketTypeRepo
	promos      *PromoCodeRepo
	accounts    *AccountRepo
	tickets     *TicketRepo
}

// NewBookingStore wires the repositories used by the booking engine.
func NewBookingStore(db *sql.DB) *BookingStore {
	return &BookingStore{
		db:          db,
		events:      NewEventRepo(db),
		places:      NewPlaceRepo(db),
		ticketTypes: NewTicketTypeRepo(db),
		promos:      NewPromoCodeRepo(db),
		accounts:    NewAccountRepo(db),
		tickets:     NewTicketRepo(db),
	}
}

// BeginTx starts a booking transaction.
func (s *BookingStore) BeginTx(ctx context.Context) (booking.Tx, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, classify(err)
	}
	return &bookingTx{s: s, tx: tx}, nil
}

type bookingTx struct {
	s  *BookingStore
	tx *sql.Tx
}

func (t *bookingTx) GetEvent(ctx context.Context, eventID uint64) (*model.Event, error) {
	ev, err := t.s.events.GetByIDTx(ctx, t.tx, eventID)
	return ev, classify(err)
}

func (t *bookingTx) ListTicketTypes(ctx context.Context, eventID uint64) ([]model.TicketType, error) {
	tts, err := t.s.ticketTypes.ListByEventTx(ctx, t.tx, eventID)
	return tts, classify(err)
}

func (t *bookingTx) GetAccount(ctx context.Context, accountID uint64) (*model.Account, error) {
	a, err := t.s.accounts.GetByIDTx(ctx, t.tx, accountID)
	return a, classify(err)
}

func (t *bookingTx) ListPaymentMethods(ctx context.Context, accountID uint64) ([]model.PaymentMethod, error) {
	pms, err := t.s.accounts.ListPaymentMethodsTx(ctx, t.tx, accountID)
	return pms, classify(err)
}

func (t *bookingTx) LockPromoCode(ctx context.Context, promoCodeID uint64) (*model.PromoCode, error) {
	p, err := t.s.promos.LockByIDTx(ctx, t.tx, promoCodeID)
	return p, classify(err)
}

func (t *bookingTx) LockPlaces(ctx context.Context, hallID uint64, placeIDs []uint64) ([]model.Place, error) {
	ps, err := t.s.places.LockByIDsTx(ctx, t.tx, hallID, placeIDs)
	return ps, classify(err)
}

func (t *bookingTx) LockTicketType(ctx context.Context, eventID, ticketTypeID uint64) (*model.TicketType, error) {
	tt, err := t.s.ticketTypes.LockTx(ctx, t.tx, eventID, ticketTypeID)
	return tt, classify(err)
}

func (t *bookingTx) LockEvent(ctx context.Context, eventID uint64) (*model.Event, error) {
	ev, err := t.s.events.LockByIDTx(ctx, t.tx, eventID)
	return ev, classify(err)
}

func (t *bookingTx) CountTickets(ctx context.Context, eventID uint64) (uint64, error) {
	n, err := t.s.events.CountTicketsTx(ctx, t.tx, eventID)
	return n, classify(err)
}

func (t *bookingTx) MarkPlacesBooked(ctx context.Context, placeIDs []uint64) error {
	n, err := t.s.places.MarkBookedTx(ctx, t.tx, placeIDs)
	if err != nil {
		return classify(err)
	}
	if n != int64(len(placeIDs)) {
		return booking.Wrap(booking.ErrConcurrentBookingConflict,
			fmt.Errorf("booked %d of %d places", n, len(placeIDs)))
	}
	return nil
}

func (t *bookingTx) IncrementTicketTypeSold(ctx context.Context, ticketTypeID uint64) error {
	return classify(t.s.ticketTypes.IncrementSoldTx(ctx, t.tx, ticketTypeID))
}

func (t *bookingTx) IncrementPromoUsage(ctx context.Context, promoCodeID uint64) error {
	return classify(t.s.promos.IncrementUsageTx(ctx, t.tx, promoCodeID))
}

func (t *bookingTx) CreateTicket(ctx context.Context, tk *model.Ticket) error {
	return classify(t.s.tickets.CreateTx(ctx, t.tx, tk))
}

func (t *bookingTx) Commit() error {
	return classify(t.tx.Commit())
}

func (t *bookingTx) Rollback() error {
	err := t.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

// classify translates repository and driver errors into the booking
// vocabulary.  Unrecognised errors pass through and become
// PERSISTENCE_FAULT in the booking service.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return booking.ErrNotFound
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlDuplicateEntry, mysqlDeadlock, mysqlCheckViolated:
			return booking.Wrap(booking.ErrConcurrentBookingConflict, err)
		case mysqlLockWaitTimeout, mysqlQueryInterrupted:
			return booking.Wrap(booking.ErrBookingTimeout, err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return booking.Wrap(booking.ErrBookingTimeout, err)
	}
	return err
}
