package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bookcourier/bookcourier-server/internal/domain"
	domainerrors "github.com/bookcourier/bookcourier-server/internal/errors"
	"github.com/bookcourier/bookcourier-server/internal/events"
	"github.com/bookcourier/bookcourier-server/internal/id"
	"github.com/bookcourier/bookcourier-server/internal/store"
	"github.com/bookcourier/bookcourier-server/internal/validation"
)

// OrderService places orders and lists them for buyers and sellers.
type OrderService struct {
	store     store.Store
	publisher events.Publisher
	validator *validation.Validator
	logger    *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(st store.Store, publisher events.Publisher, validator *validation.Validator, logger *slog.Logger) *OrderService {
	return &OrderService{
		store:     st,
		publisher: publisher,
		validator: validator,
		logger:    logger,
	}
}

// PlaceOrderRequest buys one copy of a book. Price, when set, is the
// price the client displayed and must match the listing.
type PlaceOrderRequest struct {
	BookID  string           `json:"bookId" validate:"required"`
	Price   *decimal.Decimal `json:"price" validate:"omitempty,gte=0"`
	Name    string           `json:"name" validate:"max=200"`
	Phone   string           `json:"phone" validate:"max=40"`
	Address string           `json:"address" validate:"max=500"`
}

// PlaceOrder reserves a copy and records a pending, unpaid order for the
// caller.
func (s *OrderService) PlaceOrder(ctx context.Context, caller Caller, req PlaceOrderRequest) (*domain.Order, error) {
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
	if !book.InStock() {
		return nil, domainerrors.Conflict("book is out of stock")
	}

	orderID, err := id.Generate(id.PrefixOrder)
	if err != nil {
		return nil, fmt.Errorf("generate order id: %w", err)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = caller.Name
	}

	order := &domain.Order{
		Record: domain.Record{ID: orderID},
		BookID: book.ID,
		Customer: domain.Customer{
			Name:    name,
			Email:   caller.Email,
			Phone:   strings.TrimSpace(req.Phone),
			Address: strings.TrimSpace(req.Address),
		},
		Quantity:      1,
		Status:        domain.OrderPending,
		PaymentStatus: domain.PaymentUnpaid,
	}
	order.InitTimestamps()

	// The store re-reads the book inside the transaction; a concurrent
	// buyer can still take the last copy between the check above and here.
	updated, err := s.store.PlaceOrder(ctx, order)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrOutOfStock):
			return nil, domainerrors.Conflict("book is out of stock").WithCause(err)
		case errors.Is(err, store.ErrNotFound):
			return nil, domainerrors.NotFound("book not found").WithCause(err)
		}
		return nil, fmt.Errorf("place order: %w", err)
	}

	logFor(ctx, s.logger).Info("Order placed",
		"order_id", order.ID,
		"book_id", order.BookID,
		"customer_email", order.Customer.Email,
		"remaining", updated.Quantity,
	)

	publish(ctx, s.publisher, s.logger, events.New(events.TypeOrderPlaced, events.OrderPlaced{
		OrderID:       order.ID,
		BookID:        order.BookID,
		CustomerEmail: order.Customer.Email,
		SellerEmail:   order.Book.Seller.Email,
		Price:         order.Book.Price.StringFixed(2),
		Remaining:     updated.Quantity,
	}))

	return order, nil
}

// GetOrder returns an order visible to the caller: its customer, its
// seller, or an admin.
func (s *OrderService) GetOrder(ctx context.Context, caller Caller, orderID string) (*domain.Order, error) {
	if !id.Valid(id.PrefixOrder, orderID) {
		return nil, domainerrors.InvalidInputf("invalid order id: %q", orderID)
	}

	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("order not found").WithCause(err)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	if domain.SameEmail(order.Customer.Email, caller.Email) || domain.SameEmail(order.Book.Seller.Email, caller.Email) {
		return order, nil
	}
	admin, err := isAdmin(ctx, s.store, caller.Email)
	if err != nil {
		return nil, err
	}
	if !admin {
		return nil, domainerrors.Forbidden("order belongs to another user")
	}
	return order, nil
}

// ListCustomerOrders returns orders placed by email.
func (s *OrderService) ListCustomerOrders(ctx context.Context, email string) ([]*domain.Order, error) {
	orders, err := s.store.ListOrdersByCustomer(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list customer orders: %w", err)
	}
	return orders, nil
}

// ListSellerOrders returns orders for books sold by email.
func (s *OrderService) ListSellerOrders(ctx context.Context, email string) ([]*domain.Order, error) {
	orders, err := s.store.ListOrdersBySeller(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list seller orders: %w", err)
	}
	return orders, nil
}
