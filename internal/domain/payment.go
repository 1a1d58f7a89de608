package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is an append-only record of a settled charge. TransactionID is
// the provider's payment intent id and is unique across all payments.
type Payment struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transaction_id"`
	SessionID     string          `json:"session_id"`
	OrderID       string          `json:"order_id"`
	BookID        string          `json:"book_id"`
	CustomerEmail string          `json:"customer_email"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PaidAt        time.Time       `json:"paid_at"`
}
