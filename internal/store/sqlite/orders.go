package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bookcourier/bookcourier-server/internal/domain"
	"github.com/bookcourier/bookcourier-server/internal/store"
)

// orderColumns is the ordered list of columns selected in order queries.
// Must match the scan order in scanOrder.
const orderColumns = `id, created_at, updated_at, book_id,
	title, author, price, image_url, category, seller_name, seller_email,
	customer_name, customer_email, customer_phone, customer_addr,
	quantity, status, payment_status, transaction_id, session_id, paid_at`

// scanOrder scans a sql.Row (or sql.Rows via its Scan method) into a domain.Order.
func scanOrder(scanner interface{ Scan(dest ...any) error }) (*domain.Order, error) {
	var (
		o             domain.Order
		createdAt     string
		updatedAt     string
		price         string
		imageURL      sql.NullString
		phone         sql.NullString
		address       sql.NullString
		status        string
		paymentStatus string
		transactionID sql.NullString
		sessionID     sql.NullString
		paidAt        sql.NullString
	)

	err := scanner.Scan(
		&o.ID,
		&createdAt,
		&updatedAt,
		&o.BookID,
		&o.Book.Title,
		&o.Book.Author,
		&price,
		&imageURL,
		&o.Book.Category,
		&o.Book.Seller.Name,
		&o.Book.Seller.Email,
		&o.Customer.Name,
		&o.Customer.Email,
		&phone,
		&address,
		&o.Quantity,
		&status,
		&paymentStatus,
		&transactionID,
		&sessionID,
		&paidAt,
	)
	if err != nil {
		return nil, err
	}

	if o.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if o.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if o.PaidAt, err = parseNullableTime(paidAt); err != nil {
		return nil, err
	}
	if o.Book.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("parse price %q: %w", price, err)
	}

	o.Book.ImageURL = imageURL.String
	o.Customer.Phone = phone.String
	o.Customer.Address = address.String
	o.Status = domain.OrderStatus(status)
	o.PaymentStatus = domain.PaymentStatus(paymentStatus)
	o.TransactionID = transactionID.String
	o.SessionID = sessionID.String

	return &o, nil
}

// PlaceOrder takes one copy of the book off the shelf and records the order
// in a single transaction. The snapshot on order is refreshed from the
// decremented row. Returns store.ErrNotFound for an unknown book and
// store.ErrOutOfStock when no copies remain.
func (s *Store) PlaceOrder(ctx context.Context, order *domain.Order) (*domain.Book, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE books SET quantity = quantity - 1, updated_at = ? WHERE id = ? AND quantity > 0`,
		formatTime(time.Now()), order.BookID)
	if err != nil {
		return nil, fmt.Errorf("decrement quantity: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}

	book, err := scanBook(tx.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ?`, order.BookID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("book not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	if n == 0 {
		return nil, store.ErrOutOfStock
	}

	order.Book = domain.SnapshotOf(book)
	if err := insertOrder(ctx, tx, order); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.reindex(ctx, book)
	return book, nil
}

func insertOrder(ctx context.Context, q querier, o *domain.Order) error {
	_, err := q.ExecContext(ctx, `INSERT INTO orders (
		id, created_at, updated_at, book_id,
		title, author, price, image_url, category,
		seller_name, seller_email, seller_lower,
		customer_name, customer_email, customer_lower, customer_phone, customer_addr,
		quantity, status, payment_status, transaction_id, session_id, paid_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID,
		formatTime(o.CreatedAt),
		formatTime(o.UpdatedAt),
		o.BookID,
		o.Book.Title,
		o.Book.Author,
		o.Book.Price.String(),
		nullString(o.Book.ImageURL),
		o.Book.Category,
		o.Book.Seller.Name,
		o.Book.Seller.Email,
		domain.NormalizeEmail(o.Book.Seller.Email),
		o.Customer.Name,
		o.Customer.Email,
		domain.NormalizeEmail(o.Customer.Email),
		nullString(o.Customer.Phone),
		nullString(o.Customer.Address),
		o.Quantity,
		string(o.Status),
		string(o.PaymentStatus),
		nullString(o.TransactionID),
		nullString(o.SessionID),
		nullTimeString(o.PaidAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithCause(err)
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetOrder retrieves an order by ID.
// Returns store.ErrNotFound if the order does not exist.
func (s *Store) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	o, err := scanOrder(s.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// SetOrderSession records the checkout session created for an order.
func (s *Store) SetOrderSession(ctx context.Context, orderID, sessionID string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE orders SET session_id = ?, updated_at = ? WHERE id = ?`,
		sessionID, formatTime(time.Now()), orderID)
	if err != nil {
		return fmt.Errorf("set order session: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound.WithMessage("order not found")
	}
	return nil
}

// ListOrdersByCustomer returns the orders placed by email, newest first.
func (s *Store) ListOrdersByCustomer(ctx context.Context, email string) ([]*domain.Order, error) {
	return s.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE customer_lower = ? ORDER BY created_at DESC, id`,
		domain.NormalizeEmail(email))
}

// ListOrdersBySeller returns the orders for books sold by email, newest first.
func (s *Store) ListOrdersBySeller(ctx context.Context, email string) ([]*domain.Order, error) {
	return s.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE seller_lower = ? ORDER BY created_at DESC, id`,
		domain.NormalizeEmail(email))
}

func (s *Store) queryOrders(ctx context.Context, query string, args ...any) ([]*domain.Order, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// ConfirmOrderPayment settles the order described by match and appends
// payment, both in one transaction. payment.OrderID, BookID and
// CustomerEmail are filled from the order when empty.
func (s *Store) ConfirmOrderPayment(ctx context.Context, match domain.OrderMatch, payment *domain.Payment) (*domain.Order, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	order, err := findOrder(ctx, tx, match)
	if err != nil {
		return nil, err
	}
	if order.IsPaid() {
		if order.TransactionID == payment.TransactionID {
			return nil, store.ErrAlreadyExists.WithMessage("transaction already recorded")
		}
		return nil, store.ErrAlreadyPaid
	}

	order.MarkPaid(payment.TransactionID, payment.PaidAt)
	if order.SessionID == "" {
		order.SessionID = payment.SessionID
	}

	if _, err := tx.ExecContext(ctx, `UPDATE orders SET
		status = ?, payment_status = ?, transaction_id = ?, session_id = ?,
		paid_at = ?, updated_at = ?
	WHERE id = ? AND payment_status = ?`,
		string(order.Status),
		string(order.PaymentStatus),
		order.TransactionID,
		nullString(order.SessionID),
		nullTimeString(order.PaidAt),
		formatTime(order.UpdatedAt),
		order.ID,
		string(domain.PaymentUnpaid),
	); err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrAlreadyExists.WithCause(err)
		}
		return nil, fmt.Errorf("mark order paid: %w", err)
	}

	payment.OrderID = order.ID
	if payment.BookID == "" {
		payment.BookID = order.BookID
	}
	if payment.CustomerEmail == "" {
		payment.CustomerEmail = order.Customer.Email
	}
	if err := insertPayment(ctx, tx, payment); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return order, nil
}

// findOrder resolves match against the orders table. An explicit order id
// is authoritative; a session id falls back to the book and customer match
// when no order recorded it.
func findOrder(ctx context.Context, q querier, match domain.OrderMatch) (*domain.Order, error) {
	var (
		o   *domain.Order
		err error
	)

	switch {
	case match.OrderID != "":
		o, err = scanOrder(q.QueryRowContext(ctx,
			`SELECT `+orderColumns+` FROM orders WHERE id = ?`, match.OrderID))
	case match.SessionID != "":
		o, err = scanOrder(q.QueryRowContext(ctx,
			`SELECT `+orderColumns+` FROM orders WHERE session_id = ? ORDER BY created_at, id LIMIT 1`,
			match.SessionID))
		if errors.Is(err, sql.ErrNoRows) && match.BookID != "" && match.CustomerEmail != "" {
			o, err = oldestUnpaidOrder(ctx, q, match)
		}
	case match.BookID != "" && match.CustomerEmail != "":
		o, err = oldestUnpaidOrder(ctx, q, match)
	default:
		return nil, store.ErrNotFound.WithMessage("no order criteria")
	}

	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	return o, nil
}

func oldestUnpaidOrder(ctx context.Context, q querier, match domain.OrderMatch) (*domain.Order, error) {
	return scanOrder(q.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders
		WHERE book_id = ? AND customer_lower = ? AND payment_status = ?
		ORDER BY created_at, id LIMIT 1`,
		match.BookID, domain.NormalizeEmail(match.CustomerEmail), string(domain.PaymentUnpaid)))
}
