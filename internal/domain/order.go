package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

// Order statuses.
const (
	OrderPending OrderStatus = "pending"
	OrderPaid    OrderStatus = "paid"
)

// PaymentStatus is the payment state of an order.
type PaymentStatus string

// Payment statuses.
const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

// Customer holds the buyer's contact fields captured at order time.
type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// BookSnapshot freezes the listing fields an order was placed against.
type BookSnapshot struct {
	Title    string          `json:"title"`
	Author   string          `json:"author"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"image,omitempty"`
	Category string          `json:"category"`
	Seller   Party           `json:"seller"`
}

// SnapshotOf captures the order-relevant fields of b.
func SnapshotOf(b *Book) BookSnapshot {
	return BookSnapshot{
		Title:    b.Title,
		Author:   b.Author,
		Price:    b.Price,
		ImageURL: b.ImageURL,
		Category: b.Category,
		Seller:   b.Owner,
	}
}

// Order is a purchase of one copy of a book.
type Order struct {
	Record
	BookID        string        `json:"book_id"`
	Book          BookSnapshot  `json:"book"`
	Customer      Customer      `json:"customer"`
	Quantity      int           `json:"quantity"`
	Status        OrderStatus   `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	TransactionID string        `json:"transaction_id,omitempty"`
	SessionID     string        `json:"session_id,omitempty"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`
}

// IsPaid reports whether the order has been settled.
func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentPaid
}

// MarkPaid settles the order with the provider's transaction id.
func (o *Order) MarkPaid(transactionID string, at time.Time) {
	o.Status = OrderPaid
	o.PaymentStatus = PaymentPaid
	o.TransactionID = transactionID
	o.PaidAt = &at
	o.UpdatedAt = at
}

// OrderMatch locates the order a checkout confirmation settles.
// The first non-empty criterion wins: OrderID, then SessionID, then the
// oldest unpaid order for BookID placed by CustomerEmail.
type OrderMatch struct {
	OrderID       string
	SessionID     string
	BookID        string
	CustomerEmail string
}
