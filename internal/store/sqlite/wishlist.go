package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bookcourier/bookcourier-server/internal/domain"
	"github.com/bookcourier/bookcourier-server/internal/store"
)

const wishlistColumns = `id, created_at, book_id, user_email, title, author, price, image_url, category`

// AddWishlistEntry saves a book for a user.
// Returns store.ErrAlreadyExists if the user already saved this book,
// regardless of email case.
func (s *Store) AddWishlistEntry(ctx context.Context, e *domain.WishlistEntry) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO wishlist (
		id, created_at, book_id, user_email, user_lower, title, author, price, image_url, category
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		formatTime(e.CreatedAt),
		e.BookID,
		e.UserEmail,
		domain.NormalizeEmail(e.UserEmail),
		e.Title,
		e.Author,
		e.Price.String(),
		nullString(e.ImageURL),
		e.Category,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithCause(err).WithMessage("book already in wishlist")
		}
		return fmt.Errorf("insert wishlist entry: %w", err)
	}
	return nil
}

// ListWishlist returns the entries saved by email, newest first.
func (s *Store) ListWishlist(ctx context.Context, email string) ([]*domain.WishlistEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+wishlistColumns+` FROM wishlist WHERE user_lower = ? ORDER BY created_at DESC, id`,
		domain.NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	defer rows.Close()

	entries := []*domain.WishlistEntry{}
	for rows.Next() {
		var (
			e         domain.WishlistEntry
			createdAt string
			price     string
			imageURL  sql.NullString
		)
		if err := rows.Scan(&e.ID, &createdAt, &e.BookID, &e.UserEmail,
			&e.Title, &e.Author, &price, &imageURL, &e.Category); err != nil {
			return nil, fmt.Errorf("scan wishlist entry: %w", err)
		}
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if e.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse price %q: %w", price, err)
		}
		e.ImageURL = imageURL.String
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
