package booking

import (
	"errors"
	"fmt"
	"strings"
)

// Code identifies which booking constraint rejected a purchase.  Codes
// are stable strings so that clients can branch on them.
type Code string

const (
	CodeEventNotFound             Code = "EVENT_NOT_FOUND"
	CodeAccountNotFound           Code = "ACCOUNT_NOT_FOUND"
	CodePaymentMethodNotFound     Code = "PAYMENT_METHOD_NOT_FOUND"
	CodeUnresolvableEventPricing  Code = "UNRESOLVABLE_EVENT_PRICING"
	CodePlaceNotFound             Code = "PLACE_NOT_FOUND"
	CodePlaceAlreadyBooked        Code = "PLACE_ALREADY_BOOKED"
	CodeTicketTypeNotFound        Code = "TICKET_TYPE_NOT_FOUND"
	CodeTicketTypeSoldOut         Code = "TICKET_TYPE_SOLD_OUT"
	CodeEventSoldOut              Code = "EVENT_SOLD_OUT"
	CodePromoCodeInvalid          Code = "PROMO_CODE_INVALID"
	CodePromoCodeExhausted        Code = "PROMO_CODE_EXHAUSTED"
	CodeConcurrentBookingConflict Code = "CONCURRENT_BOOKING_CONFLICT"
	CodeBookingTimeout            Code = "BOOKING_TIMEOUT"
	CodePersistenceFault          Code = "PERSISTENCE_FAULT"
)

// Error is the structured failure returned by Service.Purchase.  Every
// rejection carries a Code; PLACE_ALREADY_BOOKED also lists the seats
// that were taken so the client can re-render availability.
type Error struct {
	Code    Code
	Message string
	Places  []string // row-seat labels of already booked places
	Err     error    // underlying cause, if any
}

func (e *Error) Error() string {
	msg := e.Message
	if len(e.Places) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, strings.Join(e.Places, ", "))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Code so that errors.Is(err, ErrEventSoldOut) works for
// any *Error with the same code, regardless of message or cause.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Retryable reports whether retrying the whole request from scratch
// could succeed.  Business-rule rejections are final.
func (e *Error) Retryable() bool {
	return e.Code == CodeConcurrentBookingConflict || e.Code == CodePersistenceFault
}

// Sentinels for errors.Is comparisons.
var (
	ErrEventNotFound             = &Error{Code: CodeEventNotFound, Message: "event not found"}
	ErrAccountNotFound           = &Error{Code: CodeAccountNotFound, Message: "account not found"}
	ErrPaymentMethodNotFound     = &Error{Code: CodePaymentMethodNotFound, Message: "payment method not found"}
	ErrUnresolvableEventPricing  = &Error{Code: CodeUnresolvableEventPricing, Message: "cannot determine event pricing for this request"}
	ErrPlaceNotFound             = &Error{Code: CodePlaceNotFound, Message: "one or more places not found"}
	ErrPlaceAlreadyBooked        = &Error{Code: CodePlaceAlreadyBooked, Message: "places already booked"}
	ErrTicketTypeNotFound        = &Error{Code: CodeTicketTypeNotFound, Message: "ticket type not found"}
	ErrTicketTypeSoldOut         = &Error{Code: CodeTicketTypeSoldOut, Message: "ticket type sold out"}
	ErrEventSoldOut              = &Error{Code: CodeEventSoldOut, Message: "event sold out"}
	ErrPromoCodeInvalid          = &Error{Code: CodePromoCodeInvalid, Message: "promo code is invalid or not applicable to this event"}
	ErrPromoCodeExhausted        = &Error{Code: CodePromoCodeExhausted, Message: "promo code reached its maximum number of usages"}
	ErrConcurrentBookingConflict = &Error{Code: CodeConcurrentBookingConflict, Message: "booking conflicted with a concurrent purchase"}
	ErrBookingTimeout            = &Error{Code: CodeBookingTimeout, Message: "booking did not complete in time"}
	ErrPersistenceFault          = &Error{Code: CodePersistenceFault, Message: "storage failure"}
)

// newError copies a sentinel and attaches a cause.
func newError(sentinel *Error, cause error) *Error {
	return &Error{Code: sentinel.Code, Message: sentinel.Message, Err: cause}
}

// withMessage copies a sentinel with a more specific message.
func withMessage(sentinel *Error, format string, args ...any) *Error {
	return &Error{Code: sentinel.Code, Message: fmt.Sprintf(format, args...)}
}

// Wrap tags a store error with a booking code.  Store implementations
// use it to classify driver errors (unique violations, lock waits)
// without the booking package knowing about the driver.
func Wrap(sentinel *Error, cause error) error {
	return newError(sentinel, cause)
}

// AsError extracts the *Error from err, if there is one.
func AsError(err error) (*Error, bool) {
	var be *Error
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}
