package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bookcourier/bookcourier-server/internal/domain"
	"github.com/bookcourier/bookcourier-server/internal/store"
)

// InvoiceService exposes the payment ledger.
type InvoiceService struct {
	store  store.Store
	logger *slog.Logger
}

// NewInvoiceService creates a new invoice service.
func NewInvoiceService(st store.Store, logger *slog.Logger) *InvoiceService {
	return &InvoiceService{store: st, logger: logger}
}

// List returns payment records, newest first. Admins see every record,
// optionally narrowed by filterEmail; everyone else sees only their own.
func (s *InvoiceService) List(ctx context.Context, caller Caller, filterEmail string) ([]*domain.Payment, error) {
	admin, err := isAdmin(ctx, s.store, caller.Email)
	if err != nil {
		return nil, err
	}

	email := caller.Email
	if admin {
		email = filterEmail
	}

	payments, err := s.store.ListPayments(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}
