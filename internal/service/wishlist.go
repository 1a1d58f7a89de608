package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bookcourier/bookcourier-server/internal/domain"
	domainerrors "github.com/bookcourier/bookcourier-server/internal/errors"
	"github.com/bookcourier/bookcourier-server/internal/id"
	"github.com/bookcourier/bookcourier-server/internal/store"
)

// WishlistService manages saved books.
type WishlistService struct {
	store  store.Store
	logger *slog.Logger
}

// NewWishlistService creates a new wishlist service.
func NewWishlistService(st store.Store, logger *slog.Logger) *WishlistService {
	return &WishlistService{store: st, logger: logger}
}

// Add saves bookID for the caller. Saving the same book twice is a conflict.
func (s *WishlistService) Add(ctx context.Context, caller Caller, bookID string) (*domain.WishlistEntry, error) {
	book, err := getBook(ctx, s.store, bookID)
	if err != nil {
		return nil, err
	}

	entryID, err := id.Generate(id.PrefixWishlist)
	if err != nil {
		return nil, fmt.Errorf("generate wishlist id: %w", err)
	}

	entry := &domain.WishlistEntry{
		ID:        entryID,
		BookID:    book.ID,
		UserEmail: caller.Email,
		Title:     book.Title,
		Author:    book.Author,
		Price:     book.Price,
		ImageURL:  book.ImageURL,
		Category:  book.Category,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.AddWishlistEntry(ctx, entry); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflict("book already in wishlist").WithCause(err)
		}
		return nil, fmt.Errorf("add wishlist entry: %w", err)
	}

	logFor(ctx, s.logger).Debug("Wishlist entry added", "book_id", book.ID, "email", caller.Email)
	return entry, nil
}

// List returns the books saved by email, newest first.
func (s *WishlistService) List(ctx context.Context, email string) ([]*domain.WishlistEntry, error) {
	entries, err := s.store.ListWishlist(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	return entries, nil
}
