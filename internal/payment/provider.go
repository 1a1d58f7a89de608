// Package payment wraps the hosted checkout provider.
package payment

import (
	"context"
	"errors"
)

// Session payment states reported by the provider.
const (
	StatusPaid   = "paid"
	StatusUnpaid = "unpaid"
)

// Metadata keys attached to every checkout session.
const (
	MetaBookID   = "bookId"
	MetaCustomer = "customer"
	MetaSeller   = "seller"
	MetaOrderID  = "orderId"
)

// ErrNotConfigured is returned by Unconfigured for every call.
var ErrNotConfigured = errors.New("payment provider not configured")

// CheckoutRequest describes a single-item hosted checkout.
type CheckoutRequest struct {
	ProductName   string
	UnitAmount    int64 // minor units
	Currency      string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
	// IdempotencyKey makes retried creates return the same session.
	IdempotencyKey string
}

// CheckoutSession is the provider's view of a checkout.
type CheckoutSession struct {
	ID              string
	URL             string
	PaymentStatus   string
	PaymentIntentID string
	AmountTotal     int64 // minor units
	Currency        string
	CustomerEmail   string
	Metadata        map[string]string
}

// Paid reports whether the provider has settled the session.
func (s *CheckoutSession) Paid() bool {
	return s.PaymentStatus == StatusPaid
}

// Provider creates and retrieves hosted checkout sessions.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error)
}

// Unconfigured is the provider used when no secret key is set.
type Unconfigured struct{}

// CreateCheckoutSession implements Provider.
func (Unconfigured) CreateCheckoutSession(context.Context, CheckoutRequest) (*CheckoutSession, error) {
	return nil, ErrNotConfigured
}

// GetCheckoutSession implements Provider.
func (Unconfigured) GetCheckoutSession(context.Context, string) (*CheckoutSession, error) {
	return nil, ErrNotConfigured
}
