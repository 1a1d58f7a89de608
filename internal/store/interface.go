// Package store defines the persistence interfaces for the BookCourier server.
package store

import (
	"context"

	"github.com/bookcourier/bookcourier-server/internal/domain"
)

// BookRepository persists catalog listings.
type BookRepository interface {
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	GetBooksByIDs(ctx context.Context, ids []string) ([]*domain.Book, error)
	UpdateBook(ctx context.Context, id string, mutate func(*domain.Book) error) (*domain.Book, error)
	ListBooks(ctx context.Context, filter domain.BookFilter) ([]*domain.Book, error)
	ListAllBooks(ctx context.Context) ([]*domain.Book, error)
	CountBooks(ctx context.Context) (int, error)
}

// UserRepository persists marketplace accounts. Emails are matched
// case-insensitively.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	// UpdateUserRole changes a role. Demoting an admin fails with
	// ErrLastAdmin when no other admin would remain.
	UpdateUserRole(ctx context.Context, email string, role domain.Role) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
}

// OrderRepository persists orders. PlaceOrder and ConfirmOrderPayment are
// the two multi-write operations and each runs in a single transaction.
type OrderRepository interface {
	// PlaceOrder decrements the book's quantity (failing with ErrOutOfStock
	// at zero) and inserts order. order.Book is refreshed from the row that
	// was decremented.
	PlaceOrder(ctx context.Context, order *domain.Order) (*domain.Book, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	SetOrderSession(ctx context.Context, orderID, sessionID string) error
	ListOrdersByCustomer(ctx context.Context, email string) ([]*domain.Order, error)
	ListOrdersBySeller(ctx context.Context, email string) ([]*domain.Order, error)
	// ConfirmOrderPayment finds the order described by match, marks it paid
	// and appends payment. ErrNotFound when nothing matches, ErrAlreadyPaid
	// when the order is settled, ErrAlreadyExists when the transaction id is
	// already recorded.
	ConfirmOrderPayment(ctx context.Context, match domain.OrderMatch, payment *domain.Payment) (*domain.Order, error)
}

// PaymentRepository reads the append-only payment ledger.
type PaymentRepository interface {
	GetPaymentByTransaction(ctx context.Context, transactionID string) (*domain.Payment, error)
	// ListPayments returns payments newest first; an empty email lists all.
	ListPayments(ctx context.Context, customerEmail string) ([]*domain.Payment, error)
}

// WishlistRepository persists saved books.
type WishlistRepository interface {
	// AddWishlistEntry fails with ErrAlreadyExists when the user already
	// saved the book.
	AddWishlistEntry(ctx context.Context, entry *domain.WishlistEntry) error
	ListWishlist(ctx context.Context, email string) ([]*domain.WishlistEntry, error)
}

// Store defines the interface for all persistence operations.
type Store interface {
	BookRepository
	UserRepository
	OrderRepository
	PaymentRepository
	WishlistRepository

	// Lifecycle
	Ping(ctx context.Context) error
	Close() error
	SetSearchIndexer(indexer SearchIndexer)
}
