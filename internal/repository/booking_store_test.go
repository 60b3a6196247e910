package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticket-booking/internal/booking"
)

func newBookingService(t *testing.T, store booking.Store) *booking.Service {
	t.Helper()
	logger, _ := logtest.NewNullLogger()
	return booking.NewService(booking.Options{
		Store:  store,
		Logger: logger,
		Now:    func() time.Time { return stamp },
	})
}

func expectBuyer(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(regexp.QuoteMeta(qAccountByID)).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow(1, "buyer@example.com"))
	mock.ExpectQuery(regexp.QuoteMeta(qPaymentMethodsBy)).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "account_id", "type", "details"}).AddRow(10, 1, "card", "**** 4242"))
}

func TestBookingStoreCapacityPurchaseWithPromo(t *testing.T) {
	db, mock := newMock(t)
	svc := newBookingService(t, NewBookingStore(db))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(qEventByID)).WithArgs(2).
		WillReturnRows(sqlmock.NewRows(eventCols).AddRow(2, "Gala", nil, 100000, 50, stamp, stamp, stamp))
	mock.ExpectQuery(regexp.QuoteMeta(qTicketTypesByEvent)).WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "name", "price_cents", "max_available", "sold_count"}))
	expectBuyer(mock)
	mock.ExpectQuery(regexp.QuoteMeta(qPromoLock)).WithArgs(500).
		WillReturnRows(sqlmock.NewRows(promoCols).AddRow(500, 2, "GALA20", "PERCENTAGE", 20.0, 10, 3, stamp.Add(time.Hour), true))
	mock.ExpectQuery(regexp.QuoteMeta(qEventLock)).WithArgs(2).
		WillReturnRows(sqlmock.NewRows(eventCols).AddRow(2, "Gala", nil, 100000, 50, stamp, stamp, stamp))
	mock.ExpectQuery(regexp.QuoteMeta(qEventTicketCnt)).WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(49))
	mock.ExpectExec(regexp.QuoteMeta(qPromoUsage)).WithArgs(500).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(qTicketInsert)).
		WithArgs(sqlmock.AnyArg(), 1, 2, nil, 500, 10, 100000, 80000, 20000, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(77, 1))
	mock.ExpectCommit()

	promo := uint64(500)
	ticket, err := svc.Purchase(context.Background(), booking.PurchaseRequest{
		EventID: 2, PromoCodeID: &promo, AccountID: 1, PaymentMethodID: 10,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(77), ticket.ID)
	require.Equal(t, int64(80000), ticket.OrderAmountCents)
	require.Len(t, ticket.Reference, 36)
}

func TestBookingStoreSeatConflictRollsBack(t *testing.T) {
	db, mock := newMock(t)
	svc := newBookingService(t, NewBookingStore(db))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(qEventByID)).WithArgs(3).
		WillReturnRows(sqlmock.NewRows(eventCols).AddRow(3, "Opera", 7, nil, nil, nil, stamp, stamp))
	mock.ExpectQuery(regexp.QuoteMeta(qTicketTypesByEvent)).WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "name", "price_cents", "max_available", "sold_count"}))
	expectBuyer(mock)
	mock.ExpectQuery(regexp.QuoteMeta("FROM places WHERE hall_id = ? AND id IN (?, ?) ORDER BY id FOR UPDATE")).
		WithArgs(7, 101, 102).
		WillReturnRows(sqlmock.NewRows(placeCols).
			AddRow(101, 7, "A", 1, 30000, false).
			AddRow(102, 7, "A", 2, 70000, false))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE places SET is_booked = 1")).WithArgs(101, 102).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(qTicketInsert)).WillReturnResult(sqlmock.NewResult(78, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ticket_places")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '101' for key 'ticket_places.uq_ticket_places_place'"})
	mock.ExpectRollback()

	_, err := svc.Purchase(context.Background(), booking.PurchaseRequest{
		EventID: 3, PlaceIDs: []uint64{102, 101}, AccountID: 1, PaymentMethodID: 10,
	})
	require.ErrorIs(t, err, booking.ErrConcurrentBookingConflict)
	be, ok := booking.AsError(err)
	require.True(t, ok)
	require.True(t, be.Retryable())
}

func TestBookingStoreAlreadyBookedSeat(t *testing.T) {
	db, mock := newMock(t)
	svc := newBookingService(t, NewBookingStore(db))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(qEventByID)).WithArgs(3).
		WillReturnRows(sqlmock.NewRows(eventCols).AddRow(3, "Opera", 7, nil, nil, nil, stamp, stamp))
	mock.ExpectQuery(regexp.QuoteMeta(qTicketTypesByEvent)).WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "name", "price_cents", "max_available", "sold_count"}))
	expectBuyer(mock)
	mock.ExpectQuery(regexp.QuoteMeta("FROM places WHERE hall_id = ?")).WithArgs(7, 101).
		WillReturnRows(sqlmock.NewRows(placeCols).AddRow(101, 7, "A", 1, 30000, true))
	mock.ExpectRollback()

	_, err := svc.Purchase(context.Background(), booking.PurchaseRequest{
		EventID: 3, PlaceIDs: []uint64{101}, AccountID: 1, PaymentMethodID: 10,
	})
	be, ok := booking.AsError(err)
	require.True(t, ok)
	require.Equal(t, booking.CodePlaceAlreadyBooked, be.Code)
	require.Equal(t, []string{"A-1"}, be.Places)
}

func TestBookingStoreMissingEvent(t *testing.T) {
	db, mock := newMock(t)
	svc := newBookingService(t, NewBookingStore(db))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(qEventByID)).WithArgs(9).WillReturnRows(sqlmock.NewRows(eventCols))
	mock.ExpectRollback()

	_, err := svc.Purchase(context.Background(), booking.PurchaseRequest{EventID: 9, AccountID: 1, PaymentMethodID: 10})
	require.ErrorIs(t, err, booking.ErrEventNotFound)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"duplicate", &mysql.MySQLError{Number: 1062}, booking.ErrConcurrentBookingConflict},
		{"deadlock", &mysql.MySQLError{Number: 1213}, booking.ErrConcurrentBookingConflict},
		{"check constraint", &mysql.MySQLError{Number: 3819}, booking.ErrConcurrentBookingConflict},
		{"lock wait", &mysql.MySQLError{Number: 1205}, booking.ErrBookingTimeout},
		{"deadline", context.DeadlineExceeded, booking.ErrBookingTimeout},
		{"not found", ErrNotFound, booking.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, classify(tt.err), tt.want)
		})
	}

	other := errors.New("bad connection")
	require.Equal(t, other, classify(other))
	require.NoError(t, classify(nil))
}

func TestBookingTxMarkPlacesBookedShortCount(t *testing.T) {
	db, mock := newMock(t)
	store := NewBookingStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE places SET is_booked = 1")).WithArgs(1, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	tx, err := store.BeginTx(context.Background())
	require.NoError(t, err)
	err = tx.MarkPlacesBooked(context.Background(), []uint64{1, 2})
	require.ErrorIs(t, err, booking.ErrConcurrentBookingConflict)
	require.NoError(t, tx.Rollback())
	require.NoError(t, tx.Rollback(), "second rollback is a no-op")
}
