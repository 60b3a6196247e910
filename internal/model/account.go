package model

// Account is the purchasing party.  Accounts are owned by the identity
// subsystem; the booking service only reads them.
type Account struct {
	ID    uint64 `json:"id"`    // accounts.id
	Email string `json:"email"` // accounts.email
}

// PaymentMethod is a stored way of paying that belongs to one account.
// Details holds masked data only (e.g. "**** 4242").
type PaymentMethod struct {
	ID        uint64 `json:"id"`         // account_payment_methods.id
	AccountID uint64 `json:"account_id"` // account_payment_methods.account_id
	Type      string `json:"type"`       // account_payment_methods.type
	Details   string `json:"details"`    // account_payment_methods.details
}
