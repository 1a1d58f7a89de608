package sqlite

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bookcourier/bookcourier-server/internal/domain"
	"github.com/bookcourier/bookcourier-server/internal/store"
)

func titles(books []*domain.Book) []string {
	out := make([]string, len(books))
	for i, b := range books {
		out[i] = b.Title
	}
	return out
}

func TestCreateAndGetBook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := makeTestBook("book-1", "Dune", "12.50", 3)
	b.Description = "Spice"
	b.ImageURL = "https://img.example/dune.jpg"
	mustCreateBook(t, s, b)

	got, err := s.GetBook(ctx, "book-1")
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.Title != "Dune" || got.Author != b.Author {
		t.Errorf("title/author: got %q/%q", got.Title, got.Author)
	}
	if !got.Price.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("Price: got %s", got.Price)
	}
	if got.Quantity != 3 {
		t.Errorf("Quantity: got %d, want 3", got.Quantity)
	}
	if got.Description != "Spice" || got.ImageURL != b.ImageURL {
		t.Errorf("optional fields not round-tripped: %+v", got)
	}
	if got.Owner != b.Owner {
		t.Errorf("Owner: got %+v, want %+v", got.Owner, b.Owner)
	}
	if !got.CreatedAt.Equal(b.CreatedAt) {
		t.Errorf("CreatedAt: got %v, want %v", got.CreatedAt, b.CreatedAt)
	}
}

func TestCreateBook_Duplicate(t *testing.T) {
	s := newTestStore(t)
	mustCreateBook(t, s, makeTestBook("book-1", "Dune", "1", 1))

	err := s.CreateBook(context.Background(), makeTestBook("book-1", "Other", "1", 1))
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestCreateBook_NegativeQuantityRejected(t *testing.T) {
	s := newTestStore(t)

	err := s.CreateBook(context.Background(), makeTestBook("book-1", "Dune", "1", -1))
	if err == nil {
		t.Fatal("expected CHECK constraint failure")
	}
}

func TestGetBook_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetBook(context.Background(), "book-missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetBooksByIDs_PreservesOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreateBook(t, s, makeTestBook("book-a", "A", "1", 1))
	mustCreateBook(t, s, makeTestBook("book-b", "B", "1", 1))
	mustCreateBook(t, s, makeTestBook("book-c", "C", "1", 1))

	got, err := s.GetBooksByIDs(ctx, []string{"book-c", "book-missing", "book-a"})
	if err != nil {
		t.Fatalf("GetBooksByIDs: %v", err)
	}
	if ts := titles(got); len(ts) != 2 || ts[0] != "C" || ts[1] != "A" {
		t.Errorf("got %v, want [C A]", ts)
	}

	empty, err := s.GetBooksByIDs(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("empty ids: got %v, %v", empty, err)
	}
}

func TestUpdateBook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreateBook(t, s, makeTestBook("book-1", "Dune", "12.00", 3))

	price := decimal.RequireFromString("9.99")
	updated, err := s.UpdateBook(ctx, "book-1", func(b *domain.Book) error {
		b.Title = "Dune Messiah"
		b.Price = price
		b.Quantity = 7
		b.Touch()
		return nil
	})
	if err != nil {
		t.Fatalf("UpdateBook: %v", err)
	}
	if updated.Title != "Dune Messiah" {
		t.Errorf("returned title %q", updated.Title)
	}

	got, err := s.GetBook(ctx, "book-1")
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if !got.Price.Equal(price) || got.Quantity != 7 {
		t.Errorf("got price %s quantity %d", got.Price, got.Quantity)
	}

	// The folded title follows the edit.
	found, err := s.ListBooks(ctx, domain.BookFilter{TitleContains: "MESSIAH"})
	if err != nil || len(found) != 1 {
		t.Errorf("search after rename: got %v, %v", titles(found), err)
	}

	if _, err := s.UpdateBook(ctx, "book-missing", func(*domain.Book) error { return nil }); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateBook_MutateErrorAborts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreateBook(t, s, makeTestBook("book-1", "Dune", "12.00", 3))

	refused := errors.New("refused")
	_, err := s.UpdateBook(ctx, "book-1", func(b *domain.Book) error {
		b.Title = "Changed"
		return refused
	})
	if !errors.Is(err, refused) {
		t.Fatalf("expected mutate error, got %v", err)
	}

	got, err := s.GetBook(ctx, "book-1")
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.Title != "Dune" {
		t.Errorf("title changed to %q", got.Title)
	}
}

// Price edits racing with orders must not restore sold copies.
func TestUpdateBook_ConcurrentWithOrders(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreateBook(t, s, makeTestBook("book-1", "Dune", "12.00", 10))

	const rounds = 5
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	record := func(err error) {
		if err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}
	}
	for i := range rounds {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := s.PlaceOrder(ctx, makeTestOrder("order-"+string(rune('a'+i)), "book-1", "r@example.com"))
			record(err)
		}()
		go func() {
			defer wg.Done()
			_, err := s.UpdateBook(ctx, "book-1", func(b *domain.Book) error {
				b.Price = decimal.NewFromInt(int64(10 + i))
				b.Touch()
				return nil
			})
			record(err)
		}()
	}
	wg.Wait()

	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	got, err := s.GetBook(ctx, "book-1")
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.Quantity != 10-rounds {
		t.Errorf("quantity: got %d, want %d", got.Quantity, 10-rounds)
	}
}

func TestListBooks_Filters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	books := []*domain.Book{
		makeTestBook("book-1", "The Hobbit", "15.00", 1),
		makeTestBook("book-2", "hobbit companion", "5.00", 1),
		makeTestBook("book-3", "Dune", "25.00", 1),
		makeTestBook("book-4", "100% Cotton_Guide", "8.00", 1),
		makeTestBook("book-5", "Émile ou de l'éducation", "30.00", 1),
	}
	for i, b := range books {
		b.CreatedAt = base.Add(time.Duration(i) * time.Second)
		b.UpdatedAt = b.CreatedAt
	}
	books[2].Category = "Classics"
	books[2].CategorySlug = "classics"
	books[3].Owner = domain.Party{Name: "Other", Email: "Other@Example.com"}
	for _, b := range books {
		mustCreateBook(t, s, b)
	}

	tests := []struct {
		name   string
		filter domain.BookFilter
		want   []string
	}{
		{"all newest first", domain.BookFilter{}, []string{"Émile ou de l'éducation", "100% Cotton_Guide", "Dune", "hobbit companion", "The Hobbit"}},
		{"price ascending", domain.BookFilter{Sort: domain.SortPriceAsc}, []string{"hobbit companion", "100% Cotton_Guide", "The Hobbit", "Dune", "Émile ou de l'éducation"}},
		{"price descending", domain.BookFilter{Sort: domain.SortPriceDesc}, []string{"Émile ou de l'éducation", "Dune", "The Hobbit", "100% Cotton_Guide", "hobbit companion"}},
		{"title case-insensitive", domain.BookFilter{TitleContains: "HOBBIT", Sort: domain.SortPriceAsc}, []string{"hobbit companion", "The Hobbit"}},
		{"accented lowercase query", domain.BookFilter{TitleContains: "émile"}, []string{"Émile ou de l'éducation"}},
		{"accented uppercase query", domain.BookFilter{TitleContains: "ÉDUCATION"}, []string{"Émile ou de l'éducation"}},
		{"decomposed query", domain.BookFilter{TitleContains: "E\u0301MILE"}, []string{"Émile ou de l'éducation"}},
		{"percent is literal", domain.BookFilter{TitleContains: "%"}, []string{"100% Cotton_Guide"}},
		{"underscore is literal", domain.BookFilter{TitleContains: "n_G"}, []string{"100% Cotton_Guide"}},
		{"category", domain.BookFilter{CategorySlug: "classics"}, []string{"Dune"}},
		{"owner case-insensitive", domain.BookFilter{OwnerEmail: "other@example.COM"}, []string{"100% Cotton_Guide"}},
		{"no match", domain.BookFilter{TitleContains: "zzz"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListBooks(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListBooks: %v", err)
			}
			gotTitles := titles(got)
			if len(gotTitles) != len(tt.want) {
				t.Fatalf("got %v, want %v", gotTitles, tt.want)
			}
			for i := range tt.want {
				if gotTitles[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", gotTitles, tt.want)
				}
			}
		})
	}

	n, err := s.CountBooks(ctx)
	if err != nil || n != 5 {
		t.Errorf("CountBooks: got %d, %v", n, err)
	}
}
