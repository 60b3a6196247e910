package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iliyamo/event-ticket-booking/internal/model"
)

// memStore is an in-memory Store.  By default an open transaction
// holds txMu until it commits or rolls back.  With rowLocks set,
// transactions run concurrently and only the Lock* reads take a
// per-row mutex, held until the transaction ends like FOR UPDATE.
// Writes are buffered in the transaction and only applied on Commit.
type memStore struct {
	txMu     sync.Mutex
	rowLocks bool
	rows     map[string]*sync.Mutex

	mu           sync.Mutex
	events       map[uint64]model.Event
	ticketTypes  map[uint64]model.TicketType
	places       map[uint64]model.Place
	promos       map[uint64]model.PromoCode
	accounts     map[uint64]model.Account
	methods      map[uint64][]model.PaymentMethod
	tickets      []model.Ticket
	nextTicketID uint64

	beginErr  error
	commitErr error
	// blockPlaces makes LockPlaces wait for the context to expire.
	blockPlaces bool
	// commitDelay stalls Commit, ignoring the context.
	commitDelay time.Duration
}

func newMemStore() *memStore {
	return &memStore{
		events:      map[uint64]model.Event{},
		ticketTypes: map[uint64]model.TicketType{},
		places:      map[uint64]model.Place{},
		promos:      map[uint64]model.PromoCode{},
		accounts:    map[uint64]model.Account{},
		methods:     map[uint64][]model.PaymentMethod{},
		rows:        map[string]*sync.Mutex{},
	}
}

func (s *memStore) BeginTx(ctx context.Context) (Tx, error) {
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	if !s.rowLocks {
		s.txMu.Lock()
	}
	return &memTx{s: s, held: map[string]*sync.Mutex{}}, nil
}

func (s *memStore) row(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.rows[key]
	if !ok {
		m = &sync.Mutex{}
		s.rows[key] = m
	}
	return m
}

func (s *memStore) place(id uint64) model.Place {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.places[id]
}

func (s *memStore) ticketType(id uint64) model.TicketType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticketTypes[id]
}

func (s *memStore) promo(id uint64) model.PromoCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.promos[id]
}

func (s *memStore) ticketCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tickets)
}

type memTx struct {
	s    *memStore
	done bool
	held map[string]*sync.Mutex

	booked   []uint64
	ttSold   []uint64
	promoUse []uint64
	created  []model.Ticket
}

func (tx *memTx) GetEvent(ctx context.Context, eventID uint64) (*model.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	ev, ok := tx.s.events[eventID]
	if !ok {
		return nil, ErrNotFound
	}
	return &ev, nil
}

func (tx *memTx) ListTicketTypes(ctx context.Context, eventID uint64) ([]model.TicketType, error) {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	var out []model.TicketType
	for _, tt := range tx.s.ticketTypes {
		if tt.EventID == eventID {
			out = append(out, tt)
		}
	}
	return out, nil
}

func (tx *memTx) GetAccount(ctx context.Context, accountID uint64) (*model.Account, error) {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	a, ok := tx.s.accounts[accountID]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (tx *memTx) ListPaymentMethods(ctx context.Context, accountID uint64) ([]model.PaymentMethod, error) {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	return append([]model.PaymentMethod(nil), tx.s.methods[accountID]...), nil
}

// lock takes the row mutex for key unless tx already holds it.
func (tx *memTx) lock(kind string, id uint64) {
	if !tx.s.rowLocks {
		return
	}
	key := fmt.Sprintf("%s:%d", kind, id)
	if _, ok := tx.held[key]; ok {
		return
	}
	m := tx.s.row(key)
	m.Lock()
	tx.held[key] = m
}

func (tx *memTx) LockPromoCode(ctx context.Context, promoCodeID uint64) (*model.PromoCode, error) {
	tx.lock("promo", promoCodeID)
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	p, ok := tx.s.promos[promoCodeID]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (tx *memTx) LockPlaces(ctx context.Context, hallID uint64, placeIDs []uint64) ([]model.Place, error) {
	if tx.s.blockPlaces {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	for _, id := range placeIDs {
		tx.lock("place", id)
	}
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	var out []model.Place
	for _, id := range placeIDs {
		if p, ok := tx.s.places[id]; ok && p.HallID == hallID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (tx *memTx) LockTicketType(ctx context.Context, eventID, ticketTypeID uint64) (*model.TicketType, error) {
	tx.lock("ticket_type", ticketTypeID)
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	tt, ok := tx.s.ticketTypes[ticketTypeID]
	if !ok || tt.EventID != eventID {
		return nil, ErrNotFound
	}
	return &tt, nil
}

func (tx *memTx) LockEvent(ctx context.Context, eventID uint64) (*model.Event, error) {
	tx.lock("event", eventID)
	return tx.GetEvent(ctx, eventID)
}

func (tx *memTx) CountTickets(ctx context.Context, eventID uint64) (uint64, error) {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	var n uint64
	for _, t := range tx.s.tickets {
		if t.EventID == eventID {
			n++
		}
	}
	return n, nil
}

func (tx *memTx) MarkPlacesBooked(ctx context.Context, placeIDs []uint64) error {
	tx.booked = append(tx.booked, placeIDs...)
	return nil
}

func (tx *memTx) IncrementTicketTypeSold(ctx context.Context, ticketTypeID uint64) error {
	tx.ttSold = append(tx.ttSold, ticketTypeID)
	return nil
}

func (tx *memTx) IncrementPromoUsage(ctx context.Context, promoCodeID uint64) error {
	tx.promoUse = append(tx.promoUse, promoCodeID)
	return nil
}

func (tx *memTx) CreateTicket(ctx context.Context, t *model.Ticket) error {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	tx.s.nextTicketID++
	t.ID = tx.s.nextTicketID
	for i := range t.Places {
		t.Places[i].TicketID = t.ID
	}
	tx.created = append(tx.created, *t)
	return nil
}

func (tx *memTx) Commit() error {
	if tx.done {
		return nil
	}
	defer tx.finish()
	if tx.s.commitDelay > 0 {
		time.Sleep(tx.s.commitDelay)
	}
	if tx.s.commitErr != nil {
		return tx.s.commitErr
	}
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	for _, id := range tx.booked {
		p := tx.s.places[id]
		p.IsBooked = true
		tx.s.places[id] = p
	}
	for _, id := range tx.ttSold {
		tt := tx.s.ticketTypes[id]
		tt.SoldCount++
		tx.s.ticketTypes[id] = tt
	}
	for _, id := range tx.promoUse {
		p := tx.s.promos[id]
		p.UsagesCount++
		tx.s.promos[id] = p
	}
	tx.s.tickets = append(tx.s.tickets, tx.created...)
	return nil
}

func (tx *memTx) Rollback() error {
	if tx.done {
		return nil
	}
	tx.finish()
	return nil
}

func (tx *memTx) finish() {
	tx.done = true
	if !tx.s.rowLocks {
		tx.s.txMu.Unlock()
		return
	}
	for key, m := range tx.held {
		m.Unlock()
		delete(tx.held, key)
	}
}
