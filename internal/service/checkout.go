package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bookcourier/bookcourier-server/internal/domain"
	domainerrors "github.com/bookcourier/bookcourier-server/internal/errors"
	"github.com/bookcourier/bookcourier-server/internal/events"
	"github.com/bookcourier/bookcourier-server/internal/id"
	"github.com/bookcourier/bookcourier-server/internal/payment"
	"github.com/bookcourier/bookcourier-server/internal/store"
	"github.com/bookcourier/bookcourier-server/internal/validation"
)

// ConfirmStatus is the outcome of a payment confirmation.
type ConfirmStatus string

// Confirmation outcomes. Only Confirmed changes state.
const (
	StatusConfirmed        ConfirmStatus = "confirmed"
	StatusAlreadyConfirmed ConfirmStatus = "already_confirmed"
	StatusNotPaid          ConfirmStatus = "not_paid"
)

// CheckoutConfig holds the redirect base and charge currency.
type CheckoutConfig struct {
	ClientDomain string
	Currency     string
}

// CheckoutService creates hosted checkout sessions and settles orders when
// the provider reports them paid.
type CheckoutService struct {
	store     store.Store
	provider  payment.Provider
	publisher events.Publisher
	validator *validation.Validator
	config    CheckoutConfig
	logger    *slog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(st store.Store, provider payment.Provider, publisher events.Publisher, validator *validation.Validator, cfg CheckoutConfig, logger *slog.Logger) *CheckoutService {
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	return &CheckoutService{
		store:     st,
		provider:  provider,
		publisher: publisher,
		validator: validator,
		config:    cfg,
		logger:    logger,
	}
}

// CreateSessionRequest starts checkout for one book.
type CreateSessionRequest struct {
	BookID  string           `json:"bookId" validate:"required"`
	Price   *decimal.Decimal `json:"price" validate:"omitempty,gte=0"`
	OrderID string           `json:"orderId"`
}

// SessionResult is what the client needs to redirect to the provider.
type SessionResult struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id"`
}

// CreateSession opens a hosted checkout for the caller. The stored listing
// price is charged; a differing client price is rejected.
func (s *CheckoutService) CreateSession(ctx context.Context, caller Caller, req CreateSessionRequest) (*SessionResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	book, err := getBook(ctx, s.store, req.BookID)
	if err != nil {
		return nil, err
	}
	if err := checkPrice(book, req.Price); err != nil {
		return nil, err
	}

	if req.OrderID != "" {
		if err := s.checkOrderForCheckout(ctx, caller, book, req.OrderID); err != nil {
			return nil, err
		}
	}

	checkout := payment.CheckoutRequest{
		ProductName:   book.Title,
		UnitAmount:    domain.MinorUnits(book.Price),
		Currency:      s.config.Currency,
		CustomerEmail: caller.Email,
		SuccessURL:    s.config.ClientDomain + "/payment-success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     s.config.ClientDomain + "/book/" + url.PathEscape(book.ID),
		Metadata: map[string]string{
			payment.MetaBookID:   book.ID,
			payment.MetaCustomer: caller.Email,
			payment.MetaSeller:   book.Owner.Email,
			payment.MetaOrderID:  req.OrderID,
		},
		IdempotencyKey: uuid.NewString(),
	}

	session, err := s.provider.CreateCheckoutSession(ctx, checkout)
	if err != nil {
		logFor(ctx, s.logger).Error("Checkout session creation failed",
			"book_id", book.ID,
			"customer_email", caller.Email,
			"error", err,
		)
		return nil, providerError(err, "failed to create checkout session")
	}

	if req.OrderID != "" {
		if err := s.store.SetOrderSession(ctx, req.OrderID, session.ID); err != nil {
			return nil, fmt.Errorf("record checkout session: %w", err)
		}
	}

	logFor(ctx, s.logger).Info("Checkout session created",
		"session_id", session.ID,
		"book_id", book.ID,
		"order_id", req.OrderID,
		"amount_minor", checkout.UnitAmount,
	)

	return &SessionResult{URL: session.URL, SessionID: session.ID}, nil
}

func (s *CheckoutService) checkOrderForCheckout(ctx context.Context, caller Caller, book *domain.Book, orderID string) error {
	if !id.Valid(id.PrefixOrder, orderID) {
		return domainerrors.InvalidInputf("invalid order id: %q", orderID)
	}

	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("order not found").WithCause(err)
		}
		return fmt.Errorf("get order: %w", err)
	}

	switch {
	case !domain.SameEmail(order.Customer.Email, caller.Email):
		return domainerrors.Forbidden("order belongs to another user")
	case order.BookID != book.ID:
		return domainerrors.InvalidInput("order is for a different book")
	case order.IsPaid():
		return domainerrors.Conflict("order is already paid")
	}
	return nil
}

// ConfirmResult reports the outcome of ConfirmPayment.
type ConfirmResult struct {
	Status        ConfirmStatus `json:"status"`
	TransactionID string        `json:"transaction_id,omitempty"`
	OrderID       string        `json:"order_id,omitempty"`
	PaymentID     string        `json:"payment_id,omitempty"`
}

// ConfirmPayment settles the order behind a checkout session. It is safe
// to call any number of times: the provider's transaction id is recorded
// once and later calls report AlreadyConfirmed.
func (s *CheckoutService) ConfirmPayment(ctx context.Context, sessionID string) (*ConfirmResult, error) {
	if sessionID == "" {
		return nil, domainerrors.InvalidInput("session_id is required")
	}

	session, err := s.provider.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		logFor(ctx, s.logger).Error("Checkout session lookup failed", "session_id", sessionID, "error", err)
		return nil, providerError(err, "failed to retrieve checkout session")
	}

	txID := session.PaymentIntentID

	if txID != "" {
		existing, err := s.store.GetPaymentByTransaction(ctx, txID)
		switch {
		case err == nil:
			return confirmedResult(existing), nil
		case !errors.Is(err, store.ErrNotFound):
			return nil, fmt.Errorf("check existing payment: %w", err)
		}
	}

	if !session.Paid() {
		return &ConfirmResult{Status: StatusNotPaid}, nil
	}
	if txID == "" {
		return nil, domainerrors.Provider("paid session has no payment intent", nil)
	}

	customer := session.Metadata[payment.MetaCustomer]
	if customer == "" {
		customer = session.CustomerEmail
	}

	paymentID, err := id.Generate(id.PrefixPayment)
	if err != nil {
		return nil, fmt.Errorf("generate payment id: %w", err)
	}

	record := &domain.Payment{
		ID:            paymentID,
		TransactionID: txID,
		SessionID:     session.ID,
		CustomerEmail: customer,
		Amount:        domain.FromMinorUnits(session.AmountTotal),
		Currency:      session.Currency,
		PaidAt:        time.Now().UTC(),
	}

	order, err := s.store.ConfirmOrderPayment(ctx, domain.OrderMatch{
		OrderID:       session.Metadata[payment.MetaOrderID],
		SessionID:     session.ID,
		BookID:        session.Metadata[payment.MetaBookID],
		CustomerEmail: customer,
	}, record)
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// A concurrent confirmation recorded this transaction first.
			return s.alreadyConfirmed(ctx, txID)
		}
		// The winner of a race may have settled the order this lookup
		// would have matched, leaving nothing unpaid to find.
		if existing, getErr := s.store.GetPaymentByTransaction(ctx, txID); getErr == nil {
			return confirmedResult(existing), nil
		}
		switch {
		case errors.Is(err, store.ErrAlreadyPaid):
			return nil, domainerrors.Conflict("order is already paid").WithCause(err)
		case errors.Is(err, store.ErrNotFound):
			return nil, domainerrors.NotFound("no unpaid order matches this checkout session").WithCause(err)
		}
		return nil, fmt.Errorf("confirm order payment: %w", err)
	}

	logFor(ctx, s.logger).Info("Payment confirmed",
		"order_id", order.ID,
		"payment_id", record.ID,
		"transaction_id", txID,
		"amount", record.Amount.StringFixed(2),
	)

	publish(ctx, s.publisher, s.logger, events.New(events.TypePaymentConfirmed, events.PaymentConfirmed{
		PaymentID:     record.ID,
		OrderID:       order.ID,
		BookID:        order.BookID,
		TransactionID: txID,
		CustomerEmail: record.CustomerEmail,
		Amount:        record.Amount.StringFixed(2),
		Currency:      record.Currency,
	}))

	return &ConfirmResult{
		Status:        StatusConfirmed,
		TransactionID: txID,
		OrderID:       order.ID,
		PaymentID:     record.ID,
	}, nil
}

func (s *CheckoutService) alreadyConfirmed(ctx context.Context, txID string) (*ConfirmResult, error) {
	existing, err := s.store.GetPaymentByTransaction(ctx, txID)
	if err != nil {
		return nil, fmt.Errorf("get payment after conflict: %w", err)
	}
	return confirmedResult(existing), nil
}

func confirmedResult(p *domain.Payment) *ConfirmResult {
	return &ConfirmResult{
		Status:        StatusAlreadyConfirmed,
		TransactionID: p.TransactionID,
		OrderID:       p.OrderID,
		PaymentID:     p.ID,
	}
}

func providerError(err error, msg string) error {
	if errors.Is(err, payment.ErrNotConfigured) {
		return domainerrors.Provider("payment provider not configured", err)
	}
	return domainerrors.Provider(msg, err)
}
