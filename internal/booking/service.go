// Package booking implements the ticket purchase transaction: pricing
// mode resolution, promo code validation, price calculation and the
// atomic persist of the resulting ticket.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/event-ticket-booking/internal/model"
)

// DefaultTimeout bounds a purchase when Options.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// NotifyTimeout bounds the post-commit notification.  It runs on its
// own deadline so a slow purchase still gets announced.
const NotifyTimeout = 5 * time.Second

// PurchaseRequest describes one ticket purchase.  Which of TicketTypeID
// and PlaceIDs are honoured depends on how the event is configured.
type PurchaseRequest struct {
	EventID         uint64
	TicketTypeID    *uint64
	PlaceIDs        []uint64
	PromoCodeID     *uint64
	AccountID       uint64
	PaymentMethodID uint64
}

// Notifier is told about every committed ticket.
type Notifier interface {
	TicketPurchased(ctx context.Context, t *model.Ticket) error
}

// Observer records purchase outcomes.  mode is empty when the request
// failed before a pricing mode was resolved.
type Observer interface {
	ObservePurchase(mode string, q Quote, elapsed time.Duration)
	ObserveRejection(mode string, code Code, elapsed time.Duration)
}

// Options configures a Service.  Only Store is required.
type Options struct {
	Store    Store
	Timeout  time.Duration
	Logger   logrus.FieldLogger
	Notifier Notifier
	Observer Observer
	// Now returns the current time; defaults to time.Now.
	Now func() time.Time
}

// Service runs purchase transactions.
type Service struct {
	store    Store
	timeout  time.Duration
	log      logrus.FieldLogger
	notifier Notifier
	observer Observer
	now      func() time.Time
}

// NewService builds a Service from opts.
func NewService(opts Options) *Service {
	if opts.Store == nil {
		panic("booking: nil store passed to NewService")
	}
	s := &Service{
		store:    opts.Store,
		timeout:  opts.Timeout,
		log:      opts.Logger,
		notifier: opts.Notifier,
		observer: opts.Observer,
		now:      opts.Now,
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// attempt carries the progress of one purchase for logging and metrics.
type attempt struct {
	req   PurchaseRequest
	state State
	mode  Mode
	quote Quote
}

func (a *attempt) modeKind() string {
	if a.mode == nil {
		return ""
	}
	return a.mode.Kind()
}

// Purchase books a ticket.  It either returns the committed ticket or
// a *Error, in which case no booking state has changed.  Once started
// the purchase is not cancelled by ctx; it is bounded by the service
// timeout instead.
func (s *Service) Purchase(ctx context.Context, req PurchaseRequest) (*model.Ticket, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	a := &attempt{req: req, state: StateStarted}
	log := s.log.WithFields(logrus.Fields{
		"event_id":   req.EventID,
		"account_id": req.AccountID,
	})

	t, err := s.run(ctx, a)
	elapsed := time.Since(start)
	if err != nil {
		be := classify(ctx, err)
		fields := logrus.Fields{
			"code":         be.Code,
			"failed_after": a.state,
			"mode":         a.modeKind(),
		}
		if be.Retryable() || be.Code == CodeBookingTimeout {
			log.WithFields(fields).WithError(err).Error("booking: purchase failed")
		} else {
			log.WithFields(fields).Info("booking: purchase rejected")
		}
		a.state = StateRolledBack
		if s.observer != nil {
			s.observer.ObserveRejection(a.modeKind(), be.Code, elapsed)
		}
		return nil, be
	}

	if a.quote.UnknownDiscountType {
		log.WithField("promo_code_id", *req.PromoCodeID).Warn("booking: unknown discount type, promo ignored")
	}
	log.WithFields(logrus.Fields{
		"ticket_id":      t.ID,
		"reference":      t.Reference,
		"mode":           a.modeKind(),
		"original_cents": t.OriginalAmountCents,
		"order_cents":    t.OrderAmountCents,
		"elapsed":        elapsed,
	}).Info("booking: ticket purchased")
	if s.observer != nil {
		s.observer.ObservePurchase(a.modeKind(), a.quote, elapsed)
	}
	if s.notifier != nil {
		nctx, ncancel := context.WithTimeout(context.WithoutCancel(ctx), NotifyTimeout)
		err := s.notifier.TicketPurchased(nctx, t)
		ncancel()
		if err != nil {
			log.WithError(err).WithField("ticket_id", t.ID).Warn("booking: purchase notification failed")
		}
	}
	return t, nil
}

func (s *Service) run(ctx context.Context, a *attempt) (*model.Ticket, error) {
	req := a.req
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	ev, err := tx.GetEvent(ctx, req.EventID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load event: %w", err)
	}
	ticketTypes, err := tx.ListTicketTypes(ctx, ev.ID)
	if err != nil {
		return nil, fmt.Errorf("load ticket types: %w", err)
	}
	a.state = StateEventLoaded

	account, err := tx.GetAccount(ctx, req.AccountID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	methods, err := tx.ListPaymentMethods(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("load payment methods: %w", err)
	}
	a.state = StateAccountValidated

	if !ownsPaymentMethod(methods, req.PaymentMethodID) {
		return nil, ErrPaymentMethodNotFound
	}
	a.state = StatePaymentMethodValidated

	var staged mutations
	code, err := validatePromo(ctx, tx, req.PromoCodeID, ev.ID, s.now(), &staged)
	if err != nil {
		return nil, err
	}
	a.state = StatePromoValidated

	mode, err := ResolveMode(ev, len(ticketTypes), req)
	if err != nil {
		return nil, err
	}
	a.mode = mode
	alloc, err := allocate(ctx, tx, ev.ID, mode, &staged)
	if err != nil {
		return nil, err
	}
	a.state = StateInventoryAllocated

	a.quote = CalculatePrice(alloc.originalCents, code)
	a.state = StatePriceComputed

	t := &model.Ticket{
		Reference:           uuid.NewString(),
		AccountID:           account.ID,
		EventID:             ev.ID,
		TicketTypeID:        alloc.ticketTypeID,
		PaymentMethodID:     req.PaymentMethodID,
		OriginalAmountCents: a.quote.OriginalCents,
		OrderAmountCents:    a.quote.OrderCents,
		DiscountAmountCents: a.quote.DiscountCents,
		PurchasedAt:         s.now().UTC(),
		Places:              DistributeDiscount(alloc.places, a.quote),
	}
	if code != nil {
		id := code.ID
		t.PromoCodeID = &id
	}

	if err := staged.apply(ctx, tx); err != nil {
		return nil, err
	}
	if err := tx.CreateTicket(ctx, t); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}
	a.state = StatePersisted

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	committed = true
	a.state = StateCommitted
	return t, nil
}

func ownsPaymentMethod(methods []model.PaymentMethod, id uint64) bool {
	for _, m := range methods {
		if m.ID == id {
			return true
		}
	}
	return false
}

// classify turns any failure into a *Error.  Store implementations may
// already have tagged driver errors; anything else is either a timeout
// or a persistence fault.
func classify(ctx context.Context, err error) *Error {
	if be, ok := AsError(err); ok {
		if be.Code == CodePersistenceFault && ctx.Err() != nil {
			return newError(ErrBookingTimeout, err)
		}
		return be
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return newError(ErrBookingTimeout, err)
	}
	return newError(ErrPersistenceFault, err)
}
