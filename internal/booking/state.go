package booking

// State is a step of the purchase transaction.  Steps advance linearly;
// any failure after Started ends in RolledBack.
type State string

const (
	StateStarted                State = "started"
	StateEventLoaded            State = "event_loaded"
	StateAccountValidated       State = "account_validated"
	StatePaymentMethodValidated State = "payment_method_validated"
	StatePromoValidated         State = "promo_validated"
	StateInventoryAllocated     State = "inventory_allocated"
	StatePriceComputed          State = "price_computed"
	StatePersisted              State = "persisted"
	StateCommitted              State = "committed"
	StateRolledBack             State = "rolled_back"
)
