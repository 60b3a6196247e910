package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/event-ticket-booking/internal/model"
)

const (
	qAccountByID      = `SELECT id, email FROM accounts WHERE id = ?`
	qPaymentMethodsBy = `SELECT id, account_id, type, details FROM account_payment_methods WHERE account_id = ? ORDER BY id`
)

// AccountRepo reads customer accounts and their stored payment
// methods.  Accounts are managed by the identity service.
type AccountRepo struct {
	db *sql.DB
}

// NewAccountRepo constructs an AccountRepo.
func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{db: db} }

// GetByIDTx returns the account or ErrNotFound.
func (r *AccountRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Account, error) {
	var a model.Account
	if err := tx.QueryRowContext(ctx, qAccountByID, id).Scan(&a.ID, &a.Email); err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// ListPaymentMethodsTx returns the payment methods registered to the
// account.  details is stored already masked.
func (r *AccountRepo) ListPaymentMethodsTx(ctx context.Context, tx *sql.Tx, accountID uint64) ([]model.PaymentMethod, error) {
	rows, err := tx.QueryContext(ctx, qPaymentMethodsBy, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.PaymentMethod
	for rows.Next() {
		var m model.PaymentMethod
		var details sql.NullString
		if err := rows.Scan(&m.ID, &m.AccountID, &m.Type, &details); err != nil {
			return nil, err
		}
		m.Details = details.String
		out = append(out, m)
	}
	return out, rows.Err()
}
