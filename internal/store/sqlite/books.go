package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bookcourier/bookcourier-server/internal/domain"
	"github.com/bookcourier/bookcourier-server/internal/store"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
const bookColumns = `id, created_at, updated_at, title, author, description,
	price, quantity, category, category_slug, image_url, owner_name, owner_email`

// scanBook scans a sql.Row (or sql.Rows via its Scan method) into a domain.Book.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var (
		b           domain.Book
		createdAt   string
		updatedAt   string
		description sql.NullString
		price       string
		imageURL    sql.NullString
	)

	err := scanner.Scan(
		&b.ID,
		&createdAt,
		&updatedAt,
		&b.Title,
		&b.Author,
		&description,
		&price,
		&b.Quantity,
		&b.Category,
		&b.CategorySlug,
		&imageURL,
		&b.Owner.Name,
		&b.Owner.Email,
	)
	if err != nil {
		return nil, err
	}

	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if b.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("parse price %q: %w", price, err)
	}
	b.Description = description.String
	b.ImageURL = imageURL.String

	return &b, nil
}

// CreateBook inserts a new listing.
// Returns store.ErrAlreadyExists if the ID is taken.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO books (
		id, created_at, updated_at, title, title_folded, author, description,
		price, price_minor, quantity, category, category_slug, image_url,
		owner_name, owner_email, owner_lower
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		book.ID,
		formatTime(book.CreatedAt),
		formatTime(book.UpdatedAt),
		book.Title,
		domain.FoldTitle(book.Title),
		book.Author,
		nullString(book.Description),
		book.Price.String(),
		domain.MinorUnits(book.Price),
		book.Quantity,
		book.Category,
		book.CategorySlug,
		nullString(book.ImageURL),
		book.Owner.Name,
		book.Owner.Email,
		domain.NormalizeEmail(book.Owner.Email),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithCause(err)
		}
		return fmt.Errorf("insert book: %w", err)
	}

	s.reindex(ctx, book)
	return nil
}

// GetBook retrieves a listing by ID.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	book, err := scanBook(s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("book not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// GetBooksByIDs returns the listings with the given IDs in the order given.
// Unknown IDs are skipped.
func (s *Store) GetBooksByIDs(ctx context.Context, ids []string) ([]*domain.Book, error) {
	if len(ids) == 0 {
		return []*domain.Book{}, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("get books by ids: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*domain.Book, len(ids))
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		byID[b.ID] = b
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	books := make([]*domain.Book, 0, len(byID))
	for _, id := range ids {
		if b, ok := byID[id]; ok {
			books = append(books, b)
		}
	}
	return books, nil
}

// UpdateBook reads the listing, applies mutate, and writes the editable
// fields back in one transaction, so a concurrent quantity decrement is
// never overwritten with a stale count.
// Returns store.ErrNotFound if the book does not exist; an error from
// mutate aborts the update and is returned unchanged.
func (s *Store) UpdateBook(ctx context.Context, id string, mutate func(*domain.Book) error) (*domain.Book, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	book, err := scanBook(tx.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("book not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}

	if err := mutate(book); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE books SET
		updated_at = ?, title = ?, title_folded = ?, author = ?, description = ?,
		price = ?, price_minor = ?, quantity = ?, category = ?, category_slug = ?,
		image_url = ?
	WHERE id = ?`,
		formatTime(book.UpdatedAt),
		book.Title,
		domain.FoldTitle(book.Title),
		book.Author,
		nullString(book.Description),
		book.Price.String(),
		domain.MinorUnits(book.Price),
		book.Quantity,
		book.Category,
		book.CategorySlug,
		nullString(book.ImageURL),
		book.ID,
	); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.reindex(ctx, book)
	return book, nil
}

// ListBooks returns listings matching filter.
// TitleContains is a case-folded substring match against title_folded with
// LIKE wildcards escaped.
func (s *Store) ListBooks(ctx context.Context, filter domain.BookFilter) ([]*domain.Book, error) {
	var (
		where []string
		args  []any
	)

	if filter.TitleContains != "" {
		where = append(where, `title_folded LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(domain.FoldTitle(filter.TitleContains))+"%")
	}
	if filter.CategorySlug != "" {
		where = append(where, "category_slug = ?")
		args = append(args, filter.CategorySlug)
	}
	if filter.OwnerEmail != "" {
		where = append(where, "owner_lower = ?")
		args = append(args, domain.NormalizeEmail(filter.OwnerEmail))
	}

	query := `SELECT ` + bookColumns + ` FROM books`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY " + bookOrder(filter.Sort)

	return s.queryBooks(ctx, query, args...)
}

// ListAllBooks returns every listing, newest first.
func (s *Store) ListAllBooks(ctx context.Context) ([]*domain.Book, error) {
	return s.queryBooks(ctx, `SELECT `+bookColumns+` FROM books ORDER BY `+bookOrder(domain.SortNewest))
}

// CountBooks returns the number of listings.
func (s *Store) CountBooks(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return n, nil
}

func (s *Store) queryBooks(ctx context.Context, query string, args ...any) ([]*domain.Book, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	books := []*domain.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func bookOrder(sort domain.BookSort) string {
	switch sort {
	case domain.SortPriceAsc:
		return "price_minor ASC, created_at DESC, id"
	case domain.SortPriceDesc:
		return "price_minor DESC, created_at DESC, id"
	default:
		return "created_at DESC, id"
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
