package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bookcourier/bookcourier-server/internal/domain"
	"github.com/bookcourier/bookcourier-server/internal/store"
)

func makeTestEntry(id, bookID, email string) *domain.WishlistEntry {
	b := makeTestBook(bookID, "Dune", "12.00", 1)
	return &domain.WishlistEntry{
		ID:        id,
		BookID:    bookID,
		UserEmail: email,
		Title:     b.Title,
		Author:    b.Author,
		Price:     b.Price,
		Category:  b.Category,
		CreatedAt: time.Now().UTC(),
	}
}

func TestWishlist_AddAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreateBook(t, s, makeTestBook("book-1", "Dune", "12.00", 1))
	mustCreateBook(t, s, makeTestBook("book-2", "Emma", "4.00", 1))

	if err := s.AddWishlistEntry(ctx, makeTestEntry("wish-1", "book-1", "reader@example.com")); err != nil {
		t.Fatalf("AddWishlistEntry: %v", err)
	}
	if err := s.AddWishlistEntry(ctx, makeTestEntry("wish-2", "book-2", "reader@example.com")); err != nil {
		t.Fatalf("AddWishlistEntry: %v", err)
	}

	entries, err := s.ListWishlist(ctx, "Reader@Example.com")
	if err != nil {
		t.Fatalf("ListWishlist: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	others, err := s.ListWishlist(ctx, "other@example.com")
	if err != nil {
		t.Fatalf("ListWishlist(other): %v", err)
	}
	if len(others) != 0 {
		t.Errorf("expected no entries for other user, got %d", len(others))
	}
}

func TestWishlist_DuplicateAnyCase(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreateBook(t, s, makeTestBook("book-1", "Dune", "12.00", 1))

	if err := s.AddWishlistEntry(ctx, makeTestEntry("wish-1", "book-1", "reader@example.com")); err != nil {
		t.Fatalf("AddWishlistEntry: %v", err)
	}

	err := s.AddWishlistEntry(ctx, makeTestEntry("wish-2", "book-1", "READER@example.com"))
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestWishlist_UnknownBookRejected(t *testing.T) {
	s := newTestStore(t)

	err := s.AddWishlistEntry(context.Background(), makeTestEntry("wish-1", "book-missing", "r@example.com"))
	if err == nil {
		t.Fatal("expected foreign key failure")
	}
}
