package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticket-booking/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

var (
	eventCols  = []string{"id", "title", "hall_id", "base_price_cents", "max_tickets", "starts_at", "created_at", "updated_at"}
	placeCols  = []string{"id", "hall_id", "row_label", "seat_number", "price_cents", "is_booked"}
	promoCols  = []string{"id", "event_id", "title", "discount_type", "discount_value", "max_usages", "usages_count", "valid_until", "is_active"}
	ticketCols = []string{"id", "reference", "account_id", "event_id", "ticket_type_id", "promo_code_id", "payment_method_id",
		"original_amount_cents", "order_amount_cents", "discount_amount_cents", "purchased_at"}
	stamp = time.Date(2026, 4, 2, 18, 30, 0, 0, time.UTC)
)

func TestEventRepoGetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewEventRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(qEventByID)).WithArgs(5).
		WillReturnRows(sqlmock.NewRows(eventCols).AddRow(5, "Jazz Night", nil, 2500, 100, stamp, stamp, stamp))
	ev, err := repo.GetByID(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, "Jazz Night", ev.Title)
	require.Nil(t, ev.HallID)
	require.Equal(t, int64(2500), *ev.BasePriceCents)
	require.Equal(t, uint32(100), *ev.MaxTickets)
	require.Equal(t, stamp, *ev.StartsAt)

	mock.ExpectQuery(regexp.QuoteMeta(qEventByID)).WithArgs(6).WillReturnRows(sqlmock.NewRows(eventCols))
	_, err = repo.GetByID(context.Background(), 6)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPlaceRepoLockByIDsTx(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPlaceRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM places WHERE hall_id = ? AND id IN (?, ?) ORDER BY id FOR UPDATE")).
		WithArgs(3, 11, 12).
		WillReturnRows(sqlmock.NewRows(placeCols).
			AddRow(11, 3, "B", 4, 1500, false).
			AddRow(12, 3, "B", 5, 1500, true))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE places SET is_booked = 1 WHERE is_booked = 0 AND id IN (?, ?)")).
		WithArgs(11, 12).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	places, err := repo.LockByIDsTx(context.Background(), tx, 3, []uint64{11, 12})
	require.NoError(t, err)
	require.Len(t, places, 2)
	require.Equal(t, "B-5", places[1].Label())
	require.True(t, places[1].IsBooked)

	n, err := repo.MarkBookedTx(context.Background(), tx, []uint64{11, 12})
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
	require.NoError(t, tx.Rollback())
}

func TestPromoCodeRepoGetByEventAndTitle(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPromoCodeRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(qPromoByTitle)).WithArgs(2, "SPRING").
		WillReturnRows(sqlmock.NewRows(promoCols).AddRow(9, 2, "SPRING", "PERCENTAGE", 12.5, nil, 4, stamp, true))
	p, err := repo.GetByEventAndTitle(context.Background(), 2, "SPRING")
	require.NoError(t, err)
	require.True(t, p.IsPercentage())
	require.Equal(t, 12.5, p.DiscountValue)
	require.Nil(t, p.MaxUsages)
	require.Equal(t, uint32(4), p.UsagesCount)

	mock.ExpectQuery(regexp.QuoteMeta(qPromoByTitle)).WithArgs(2, "NOPE").WillReturnRows(sqlmock.NewRows(promoCols))
	_, err = repo.GetByEventAndTitle(context.Background(), 2, "NOPE")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTicketRepoCreateTx(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTicketRepo(db)
	ticket := &model.Ticket{
		Reference: "3f1c", AccountID: 1, EventID: 2, PaymentMethodID: 3,
		OriginalAmountCents: 100000, OrderAmountCents: 90000, DiscountAmountCents: 10000, PurchasedAt: stamp,
		Places: []model.TicketPlace{{PlaceID: 11, ActualPriceCents: 27000}, {PlaceID: 12, ActualPriceCents: 63000}},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(qTicketInsert)).
		WithArgs("3f1c", 1, 2, nil, nil, 3, 100000, 90000, 10000, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(41, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ticket_places (ticket_id, place_id, actual_price_cents) VALUES (?, ?, ?), (?, ?, ?)")).
		WithArgs(41, 11, 27000, 41, 12, 63000).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, repo.CreateTx(context.Background(), tx, ticket))
	require.NoError(t, tx.Commit())
	require.Equal(t, uint64(41), ticket.ID)
	require.Equal(t, uint64(41), ticket.Places[1].TicketID)
}

func TestTicketRepoGetForAccount(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTicketRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(qTicketByID)).WithArgs(41).
		WillReturnRows(sqlmock.NewRows(ticketCols).AddRow(41, "3f1c", 1, 2, nil, 9, 3, 1000, 900, 100, stamp))
	mock.ExpectQuery(regexp.QuoteMeta("FROM ticket_places tp")).WithArgs(41).
		WillReturnRows(sqlmock.NewRows([]string{"ticket_id", "place_id", "row_label", "seat_number", "actual_price_cents"}).
			AddRow(41, 11, "B", 4, 900))
	ticket, err := repo.GetForAccount(context.Background(), 41, 1)
	require.NoError(t, err)
	require.Equal(t, uint64(9), *ticket.PromoCodeID)
	require.Equal(t, []model.TicketPlace{{TicketID: 41, PlaceID: 11, RowLabel: "B", SeatNumber: 4, ActualPriceCents: 900}}, ticket.Places)

	mock.ExpectQuery(regexp.QuoteMeta(qTicketByID)).WithArgs(41).
		WillReturnRows(sqlmock.NewRows(ticketCols).AddRow(41, "3f1c", 1, 2, nil, nil, 3, 1000, 1000, 0, stamp))
	_, err = repo.GetForAccount(context.Background(), 41, 2)
	require.ErrorIs(t, err, ErrForbidden)

	mock.ExpectQuery(regexp.QuoteMeta(qTicketByID)).WithArgs(42).WillReturnRows(sqlmock.NewRows(ticketCols))
	_, err = repo.GetForAccount(context.Background(), 42, 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTicketRepoListByAccount(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTicketRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(qTicketByAccount)).WithArgs(1).
		WillReturnRows(sqlmock.NewRows(ticketCols).
			AddRow(43, "b", 1, 2, 7, nil, 3, 1200, 1200, 0, stamp).
			AddRow(41, "a", 1, 2, nil, nil, 3, 1000, 1000, 0, stamp))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE tp.ticket_id IN (?, ?)")).WithArgs(43, 41).
		WillReturnRows(sqlmock.NewRows([]string{"ticket_id", "place_id", "row_label", "seat_number", "actual_price_cents"}).
			AddRow(41, 11, "B", 4, 1000))

	tickets, err := repo.ListByAccount(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	require.Equal(t, uint64(7), *tickets[0].TicketTypeID)
	require.Empty(t, tickets[0].Places)
	require.NotNil(t, tickets[0].Places)
	require.Len(t, tickets[1].Places, 1)
}

func TestTicketRepoListByAccountEmpty(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTicketRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(qTicketByAccount)).WithArgs(8).WillReturnRows(sqlmock.NewRows(ticketCols))
	tickets, err := repo.ListByAccount(context.Background(), 8)
	require.NoError(t, err)
	require.NotNil(t, tickets)
	require.Empty(t, tickets)
}

func TestHallRepoGetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewHallRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM halls WHERE id = ?")).WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(7, "Main"))
	h, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, &model.Hall{ID: 7, Name: "Main"}, h)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM halls WHERE id = ?")).WithArgs(8).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))
	_, err = repo.GetByID(context.Background(), 8)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPlaceRepoListByHall(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPlaceRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(qPlacesByHall)).WithArgs(7).
		WillReturnRows(sqlmock.NewRows(placeCols).
			AddRow(101, 7, "A", 1, 1500, true).
			AddRow(102, 7, "A", 2, 1500, false))
	places, err := repo.ListByHall(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, places, 2)
	require.True(t, places[0].IsBooked)
	require.Equal(t, "A-2", places[1].Label())
}
