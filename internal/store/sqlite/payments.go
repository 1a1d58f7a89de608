package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bookcourier/bookcourier-server/internal/domain"
	"github.com/bookcourier/bookcourier-server/internal/store"
)

const paymentColumns = `id, transaction_id, session_id, order_id, book_id,
	customer_email, amount, currency, paid_at`

func scanPayment(scanner interface{ Scan(dest ...any) error }) (*domain.Payment, error) {
	var (
		p      domain.Payment
		amount string
		paidAt string
	)

	err := scanner.Scan(
		&p.ID,
		&p.TransactionID,
		&p.SessionID,
		&p.OrderID,
		&p.BookID,
		&p.CustomerEmail,
		&amount,
		&p.Currency,
		&paidAt,
	)
	if err != nil {
		return nil, err
	}

	if p.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	if p.PaidAt, err = parseTime(paidAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// insertPayment appends a payment. A repeated transaction id is
// store.ErrAlreadyExists.
func insertPayment(ctx context.Context, q querier, p *domain.Payment) error {
	_, err := q.ExecContext(ctx, `INSERT INTO payments (
		id, transaction_id, session_id, order_id, book_id,
		customer_email, customer_lower, amount, currency, paid_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.TransactionID,
		p.SessionID,
		p.OrderID,
		p.BookID,
		p.CustomerEmail,
		domain.NormalizeEmail(p.CustomerEmail),
		p.Amount.StringFixed(2),
		p.Currency,
		formatTime(p.PaidAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithCause(err).WithMessage("transaction already recorded")
		}
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetPaymentByTransaction looks up the payment for a provider transaction id.
// Returns store.ErrNotFound if none was recorded.
func (s *Store) GetPaymentByTransaction(ctx context.Context, transactionID string) (*domain.Payment, error) {
	p, err := scanPayment(s.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE transaction_id = ?`, transactionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("payment not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

// ListPayments returns payments newest first, optionally for one customer.
func (s *Store) ListPayments(ctx context.Context, customerEmail string) ([]*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments`
	var args []any
	if customerEmail != "" {
		query += ` WHERE customer_lower = ?`
		args = append(args, domain.NormalizeEmail(customerEmail))
	}
	query += ` ORDER BY paid_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	payments := []*domain.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
